package service

import "errors"

// User-facing rule violations. Handlers translate these into 4xx responses;
// anything else coming out of a service is a backend failure.
var (
	ErrCompanyGone       = errors.New("the selected company no longer exists")
	ErrEmployeeGone      = errors.New("the employee no longer exists")
	ErrDuplicateCompany  = errors.New("a company with this name already exists")
	ErrDuplicateEmployee = errors.New("the company already has an employee with this name")
	ErrExpiryRequired    = errors.New("a temporary badge requires an authorization expiry date")
	ErrCompanyHasStaff   = errors.New("the company still has employees and cannot be deleted")
	ErrInvalidLogin      = errors.New("wrong username or password")
	ErrAccountDisabled   = errors.New("the account has been disabled")
)
