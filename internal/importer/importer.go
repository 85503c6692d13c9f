// Package importer loads the semicolon-delimited personnel extracts handed
// over by the badge office into the registry. The pipeline runs in three
// passes: normalize the raw file into a staging file, reconcile the
// distinct company names into company rows, then insert the employees
// referencing them.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"badgereg/internal/model"
	"badgereg/internal/repository"

	"go.uber.org/zap"
)

// BadgeSuspendedMapping selects how the source's "badge valido" marker is
// written into the badge_suspended column. Historical batches disagree on
// the polarity and nothing in the file says which applies, so the caller
// must choose.
type BadgeSuspendedMapping int

const (
	// MappingDirect writes the marker as-is (valido=X -> suspended=true),
	// matching the most recent extract format.
	MappingDirect BadgeSuspendedMapping = iota
	// MappingInverted writes the negated marker (valido=X -> suspended=false).
	MappingInverted
)

// Options configures one import run
type Options struct {
	// HeaderLines is the number of leading lines to discard (1 or 2
	// depending on the extract variant).
	HeaderLines int
	// Mapping resolves the badge-valido polarity, see BadgeSuspendedMapping.
	Mapping BadgeSuspendedMapping
	// DefaultAccessBlocked is the value written when the extract carries no
	// access column; pre-badged batches default it to true.
	DefaultAccessBlocked bool
}

// Summary reports what one run did
type Summary struct {
	RowsRead          int
	RowsSkipped       int
	CompaniesCreated  int
	CompaniesExisting int
	EmployeesInserted int
	RowsFailed        int
	DateFallbacks     int
}

// Importer wires the pipeline to the registry's storage
type Importer struct {
	companies repository.CompanyRepository
	employees repository.EmployeeRepository
	txManager repository.TransactionManager
	logger    *zap.Logger
}

func New(companies repository.CompanyRepository, employees repository.EmployeeRepository,
	txManager repository.TransactionManager, logger *zap.Logger) *Importer {
	return &Importer{
		companies: companies,
		employees: employees,
		txManager: txManager,
		logger:    logger.Named("importer"),
	}
}

// source date formats, tried in order
var expiryFormats = []string{"02/01/2006", "02-01-2006"}

// stagingDateFormat is the canonical form rows carry after normalization
const stagingDateFormat = "2006-01-02"

// cleanCompanyName strips the *...* flagging the source system puts around
// certain company names, mirroring its trim order exactly.
func cleanCompanyName(field string) string {
	s := strings.Trim(field, "*")
	s = strings.TrimSpace(s)
	return strings.Trim(s, "*")
}

// normalizeExpiry parses the two accepted date formats; anything else is
// treated as absent rather than failing the row.
func normalizeExpiry(field string) (string, bool) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", true
	}
	for _, format := range expiryFormats {
		if d, err := time.Parse(format, field); err == nil {
			return d.Format(stagingDateFormat), true
		}
	}
	return "", false
}

func marker(field string) string {
	if strings.TrimSpace(field) == "X" {
		return "X"
	}
	return ""
}

func fieldAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// Normalize reads the raw extract and writes the staging file: header
// lines dropped, blank rows dropped, company names cleaned, dates
// canonicalized, markers reduced to X/empty. Column order out is fixed:
// company;first;last;note;expiry;badge_issued;badge_valid.
func (imp *Importer) Normalize(in io.Reader, out io.Writer, opts Options, summary *Summary) error {
	reader := csv.NewReader(in)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	writer := csv.NewWriter(out)
	writer.Comma = ';'

	for skipped := 0; skipped < opts.HeaderLines; skipped++ {
		if _, err := reader.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				writer.Flush()
				return writer.Error()
			}
			return fmt.Errorf("failed to skip header line %d: %w", skipped+1, err)
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read source row: %w", err)
		}

		summary.RowsRead++
		if blankRow(row) {
			summary.RowsSkipped++
			continue
		}

		expiry, parsed := normalizeExpiry(fieldAt(row, 4))
		if !parsed {
			summary.DateFallbacks++
			imp.logger.Warn("unparseable expiry date, importing row without it",
				zap.String("value", fieldAt(row, 4)))
		}

		record := []string{
			cleanCompanyName(fieldAt(row, 0)),
			fieldAt(row, 1),
			fieldAt(row, 2),
			fieldAt(row, 3),
			expiry,
			marker(fieldAt(row, 5)),
			marker(fieldAt(row, 6)),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write staging row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReconcileCompanies reads the staging file once and find-or-creates every
// distinct company. Distinctness uses the same normalization as the
// interactive add flow, so re-running an import cannot duplicate a company
// under a spelling variant.
func (imp *Importer) ReconcileCompanies(ctx context.Context, staging io.Reader, summary *Summary) error {
	reader := csv.NewReader(staging)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	names := make(map[string]string) // normalized -> first raw spelling
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read staging row: %w", err)
		}
		name := fieldAt(row, 0)
		if name == "" {
			continue
		}
		key := model.NormalizeCompanyName(name)
		if _, ok := names[key]; !ok {
			names[key] = name
		}
	}

	for _, name := range names {
		_, err := imp.companies.FindByNormalizedName(ctx, name)
		if err == nil {
			summary.CompaniesExisting++
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		company := &model.Company{Name: name}
		err = imp.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			return imp.companies.Create(txCtx, company)
		})
		if err != nil {
			return fmt.Errorf("failed to create company %q: %w", name, err)
		}
		summary.CompaniesCreated++
	}
	return nil
}

// LoadEmployees reads the staging file a second time and inserts one
// employee per row, resolving the company reference created (or found) by
// ReconcileCompanies. A row whose company cannot be resolved is counted as
// failed and skipped; it is never inserted with a dangling reference.
func (imp *Importer) LoadEmployees(ctx context.Context, staging io.Reader, opts Options, summary *Summary) error {
	reader := csv.NewReader(staging)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read staging row: %w", err)
		}

		companyName := fieldAt(row, 0)
		company, err := imp.companies.FindByNormalizedName(ctx, companyName)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				summary.RowsFailed++
				imp.logger.Warn("company did not resolve, skipping row",
					zap.String("company", companyName))
				continue
			}
			return err
		}

		var expiry *time.Time
		if raw := fieldAt(row, 4); raw != "" {
			if d, err := time.Parse(stagingDateFormat, raw); err == nil {
				expiry = &d
			}
		}

		suspended := fieldAt(row, 6) == "X"
		if opts.Mapping == MappingInverted {
			suspended = !suspended
		}

		employee := &model.Employee{
			FirstName:           fieldAt(row, 1),
			LastName:            fieldAt(row, 2),
			CompanyID:           company.ID,
			BadgeIssued:         fieldAt(row, 5) == "X",
			AccessBlocked:       opts.DefaultAccessBlocked,
			BadgeSuspended:      suspended,
			AuthorizationExpiry: expiry,
			Note:                fieldAt(row, 3),
		}

		err = imp.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			return imp.employees.Create(txCtx, employee)
		})
		if err != nil {
			// dirty rows degrade, they never abort the batch
			summary.RowsFailed++
			imp.logger.Warn("failed to insert employee row",
				zap.String("company", companyName),
				zap.String("last_name", fieldAt(row, 2)),
				zap.Error(err))
			continue
		}
		summary.EmployeesInserted++
	}
	return nil
}

// Run executes the whole pipeline against inputPath, writing the
// intermediate normalized rows to stagingPath.
func (imp *Importer) Run(ctx context.Context, inputPath, stagingPath string, opts Options) (*Summary, error) {
	summary := &Summary{}

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	staging, err := os.Create(stagingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	if err := imp.Normalize(in, staging, opts, summary); err != nil {
		staging.Close()
		return nil, err
	}
	if err := staging.Close(); err != nil {
		return nil, err
	}

	pass2, err := os.Open(stagingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen staging file: %w", err)
	}
	err = imp.ReconcileCompanies(ctx, pass2, summary)
	pass2.Close()
	if err != nil {
		return nil, err
	}

	pass3, err := os.Open(stagingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen staging file: %w", err)
	}
	err = imp.LoadEmployees(ctx, pass3, opts, summary)
	pass3.Close()
	if err != nil {
		return nil, err
	}

	imp.logger.Info("import finished",
		zap.Int("rows_read", summary.RowsRead),
		zap.Int("rows_skipped", summary.RowsSkipped),
		zap.Int("companies_created", summary.CompaniesCreated),
		zap.Int("employees_inserted", summary.EmployeesInserted),
		zap.Int("rows_failed", summary.RowsFailed),
	)
	return summary, nil
}
