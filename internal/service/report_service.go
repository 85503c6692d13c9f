package service

import (
	"context"
	"time"

	"badgereg/internal/repository"
)

// WeeklyRow is one printable line of the authorized-personnel report
type WeeklyRow struct {
	CompanyName string
	FirstName   string
	LastName    string
	BadgeIssued bool
	Note        string
}

// WeeklyReportData carries the filtered rows plus the summary counters
// printed at the bottom of the sheet.
type WeeklyReportData struct {
	Rows          []WeeklyRow
	CompanyCount  int
	EmployeeCount int
	GeneratedAt   time.Time
}

// ExpiredBadge is one line of the expired-authorizations report
type ExpiredBadge struct {
	FirstName   string
	LastName    string
	CompanyName string
	ExpiredOn   time.Time
	Temporary   bool
	BadgeNumber string
}

type ReportService interface {
	WeeklyReport(ctx context.Context) (*WeeklyReportData, error)
	ExpiredBadges(ctx context.Context, asOf time.Time) ([]ExpiredBadge, error)
}

type reportService struct {
	employees repository.EmployeeRepository
}

func NewReportService(employees repository.EmployeeRepository) ReportService {
	return &reportService{employees: employees}
}

// WeeklyReport streams the employee/company join and keeps every employee
// whose badge is not cancelled. No other flag filters apply: suspended or
// access-blocked personnel still appear, only a cancelled badge removes
// someone from the printed list.
func (s *reportService) WeeklyReport(ctx context.Context) (*WeeklyReportData, error) {
	data := &WeeklyReportData{GeneratedAt: time.Now()}
	seen := make(map[string]struct{})

	err := s.employees.ForEachAuthorized(ctx, func(row repository.AuthorizedRow) error {
		data.Rows = append(data.Rows, WeeklyRow{
			CompanyName: row.CompanyName,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			BadgeIssued: row.BadgeIssued,
			Note:        row.Note,
		})
		if _, ok := seen[row.CompanyName]; !ok {
			seen[row.CompanyName] = struct{}{}
			data.CompanyCount++
		}
		data.EmployeeCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *reportService) ExpiredBadges(ctx context.Context, asOf time.Time) ([]ExpiredBadge, error) {
	var badges []ExpiredBadge
	err := s.employees.ForEachExpired(ctx, asOf, func(row repository.ExpiredRow) error {
		badges = append(badges, ExpiredBadge{
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			CompanyName: row.CompanyName,
			ExpiredOn:   row.AuthorizationExpiry,
			Temporary:   row.BadgeTemporary,
			BadgeNumber: row.BadgeNumber,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return badges, nil
}
