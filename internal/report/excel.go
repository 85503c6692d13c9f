// Package report renders the registry's printable XLSX sheets. The layout
// and colors reproduce the sheets the gatehouse has been printing for
// years, so column order and styling are part of the contract.
package report

import (
	"fmt"
	"time"

	"badgereg/internal/service"

	"github.com/xuri/excelize/v2"
)

const weeklyTitle = "LISTA PERSONALE AUTORIZZATO ALL'INGRESSO"

// header fill colors, one per column
const (
	colorCompany = "FFFF00" // yellow
	colorPerson  = "00B0F0" // light blue
	colorBadge   = "F7A4D0" // pink
	colorNote    = "92D050" // green
	colorSection = "D9D9D9" // grey
)

func yesNo(v bool) string {
	if v {
		return "SI"
	}
	return ""
}

func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}

// autoFit sizes each column to its widest cell plus padding
func autoFit(f *excelize.File, sheet string, columns []string, widths []int) error {
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, float64(widths[i]+4)); err != nil {
			return err
		}
	}
	return nil
}

func trackWidth(widths []int, col int, value string) {
	if len(value) > widths[col] {
		widths[col] = len(value)
	}
}

// Weekly renders the authorized-personnel sheet
func Weekly(data *service.WeeklyReportData) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s - %s", weeklyTitle, data.GeneratedAt.Format("02/01/2006"))
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", titleStyle); err != nil {
		return nil, err
	}

	headers := []struct {
		cell  string
		text  string
		color string
	}{
		{"A3", "DITTA", colorCompany},
		{"B3", "NOME E COGNOME", colorPerson},
		{"C3", "BADGE EMESSO", colorBadge},
		{"D3", "NOTE", colorNote},
	}
	for _, h := range headers {
		style, err := headerStyle(f, h.color)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, h.cell, h.text); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, h.cell, h.cell, style); err != nil {
			return nil, err
		}
	}

	companyStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	noteStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	if err != nil {
		return nil, err
	}

	widths := []int{len("DITTA"), len("NOME E COGNOME"), len("BADGE EMESSO"), len("NOTE")}
	rowNum := 4
	for _, row := range data.Rows {
		person := row.LastName + " " + row.FirstName
		cells := []interface{}{row.CompanyName, person, yesNo(row.BadgeIssued), row.Note}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &cells); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), companyStyle); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("D%d", rowNum), fmt.Sprintf("D%d", rowNum), noteStyle); err != nil {
			return nil, err
		}
		trackWidth(widths, 0, row.CompanyName)
		trackWidth(widths, 1, person)
		trackWidth(widths, 3, row.Note)
		rowNum++
	}

	// summary footer
	rowNum++
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("Ditte: %d", data.CompanyCount)); err != nil {
		return nil, err
	}
	rowNum++
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("Dipendenti: %d", data.EmployeeCount)); err != nil {
		return nil, err
	}

	if err := autoFit(f, sheet, []string{"A", "B", "C", "D"}, widths); err != nil {
		return nil, err
	}
	return f, nil
}

// Expired renders the expired-authorizations sheet. Temporary badges come
// first under their own grey section header, then permanent ones.
func Expired(badges []service.ExpiredBadge, asOf time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.MergeCell(sheet, "A1", "E1"); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("AUTORIZZAZIONI SCADUTE AL %s", asOf.Format("02/01/2006"))
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", titleStyle); err != nil {
		return nil, err
	}

	hdr, err := headerStyle(f, colorNote)
	if err != nil {
		return nil, err
	}
	headers := []interface{}{"COGNOME", "NOME", "DITTA", "SCADENZA", "N. BADGE"}
	if err := f.SetSheetRow(sheet, "A3", &headers); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A3", "E3", hdr); err != nil {
		return nil, err
	}

	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorSection}},
	})
	if err != nil {
		return nil, err
	}

	widths := []int{len("COGNOME"), len("NOME"), len("DITTA"), len("SCADENZA"), len("N. BADGE")}
	writeSection := func(rowNum int, label string, temporary bool) (int, error) {
		wrote := false
		for _, b := range badges {
			if b.Temporary != temporary {
				continue
			}
			if !wrote {
				if err := f.MergeCell(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("E%d", rowNum)); err != nil {
					return rowNum, err
				}
				if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), label); err != nil {
					return rowNum, err
				}
				if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("E%d", rowNum), sectionStyle); err != nil {
					return rowNum, err
				}
				rowNum++
				wrote = true
			}
			cells := []interface{}{b.LastName, b.FirstName, b.CompanyName, b.ExpiredOn.Format("02/01/2006"), b.BadgeNumber}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &cells); err != nil {
				return rowNum, err
			}
			trackWidth(widths, 0, b.LastName)
			trackWidth(widths, 1, b.FirstName)
			trackWidth(widths, 2, b.CompanyName)
			trackWidth(widths, 4, b.BadgeNumber)
			rowNum++
		}
		return rowNum, nil
	}

	rowNum := 4
	rowNum, err = writeSection(rowNum, "BADGE TEMPORANEI", true)
	if err != nil {
		return nil, err
	}
	_, err = writeSection(rowNum, "BADGE PERMANENTI", false)
	if err != nil {
		return nil, err
	}

	if err := autoFit(f, sheet, []string{"A", "B", "C", "D", "E"}, widths); err != nil {
		return nil, err
	}
	return f, nil
}
