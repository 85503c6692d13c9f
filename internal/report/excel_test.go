package report

import (
	"testing"
	"time"

	"badgereg/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWeeklySheetLayout verifies title, headers, rows and footer counters
// land in the expected cells.
func TestWeeklySheetLayout(t *testing.T) {
	data := &service.WeeklyReportData{
		Rows: []service.WeeklyRow{
			{CompanyName: "Acme Srl", FirstName: "Mario", LastName: "Rossi", BadgeIssued: true, Note: "nota"},
			{CompanyName: "Zeta Spa", FirstName: "Anna", LastName: "Verdi"},
		},
		CompanyCount:  2,
		EmployeeCount: 2,
		GeneratedAt:   time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
	}

	f, err := Weekly(data)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "LISTA PERSONALE AUTORIZZATO ALL'INGRESSO - 24/08/2026", title)

	for cell, want := range map[string]string{
		"A3": "DITTA", "B3": "NOME E COGNOME", "C3": "BADGE EMESSO", "D3": "NOTE",
		"A4": "Acme Srl", "B4": "Rossi Mario", "C4": "SI", "D4": "nota",
		"A5": "Zeta Spa", "B5": "Verdi Anna", "C5": "",
		"A7": "Ditte: 2", "A8": "Dipendenti: 2",
	} {
		got, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cell %s", cell)
	}
}

// TestExpiredSheetSections verifies temporary badges come first under their
// own section header.
func TestExpiredSheetSections(t *testing.T) {
	asOf := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	badges := []service.ExpiredBadge{
		{FirstName: "Mario", LastName: "Rossi", CompanyName: "Acme Srl",
			ExpiredOn: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), Temporary: true, BadgeNumber: "T-01"},
		{FirstName: "Anna", LastName: "Verdi", CompanyName: "Zeta Spa",
			ExpiredOn: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	f, err := Expired(badges, asOf)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	for cell, want := range map[string]string{
		"A1": "AUTORIZZAZIONI SCADUTE AL 24/08/2026",
		"A3": "COGNOME", "E3": "N. BADGE",
		"A4": "BADGE TEMPORANEI",
		"A5": "Rossi", "D5": "15/06/2026", "E5": "T-01",
		"A6": "BADGE PERMANENTI",
		"A7": "Verdi", "D7": "01/05/2026",
	} {
		got, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cell %s", cell)
	}
}

// TestExpiredSheetSkipsEmptySections verifies a section header is not
// written when it has no rows.
func TestExpiredSheetSkipsEmptySections(t *testing.T) {
	asOf := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	badges := []service.ExpiredBadge{
		{FirstName: "Anna", LastName: "Verdi", CompanyName: "Zeta Spa",
			ExpiredOn: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	f, err := Expired(badges, asOf)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	got, err := f.GetCellValue(sheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "BADGE PERMANENTI", got, "temporary section should be absent")
}
