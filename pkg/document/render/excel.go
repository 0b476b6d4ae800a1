package render

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/document"
)

var excelHeaders = []string{"Part", "Description", "Material", "Qty", "m²", "kg"}

var excelWidths = []float64{24, 42, 20, 8, 10, 10}

// writeExcel produces the editable companion workbook: a label/value
// header block, then the item table. Recipients fill in prices next to
// the existing columns, so the layout stays plain.
func writeExcel(doc *document.Document, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := doc.Type.Label()
	f.SetSheetName("Sheet1", sheet)

	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Errorf("creating label style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return errors.Errorf("creating header style: %w", err)
	}

	row := 1
	put := func(label, value string) {
		if value == "" {
			return
		}
		cell := fmt.Sprintf("A%d", row)
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), value)
		row++
	}

	put(doc.Type.Label()+" no.", doc.Number)
	put("Date", doc.Date)
	put("Production", doc.Production)
	put(doc.Type.PartyRole(), doc.Party.Name)
	put("VAT", doc.Party.VATNumber)
	put("Address", joinNonEmpty(doc.Party.AddressLine1, doc.Party.AddressLine2))
	put("Phone", doc.Party.Phone)
	put("Email", doc.Party.Email)
	put("Project no.", doc.ProjectNumber)
	put("Project", doc.ProjectName)
	put("Delivery", doc.Delivery)
	put("Reply by", doc.Deadline)

	row++ // blank spacer before the table
	for i, h := range excelHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s%d", col, row)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	row++

	for _, line := range doc.Lines {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), line.PartNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), lineDescription(line))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), line.Material)
		qty, _ := line.Quantity.Float64()
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), qty)
		if !line.Surface.IsZero() {
			surface, _ := line.Surface.Float64()
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), surface)
		}
		if !line.Weight.IsZero() {
			weight, _ := line.Weight.Float64()
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), weight)
		}
		row++
	}

	if len(doc.Notes) > 0 || doc.Compliance != "" || doc.FooterNote != "" {
		row++
		for _, note := range doc.Notes {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), note)
			row++
		}
		if doc.FooterNote != "" {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), doc.FooterNote)
			row++
		}
		if doc.Compliance != "" {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), doc.Compliance)
		}
	}

	for i, w := range excelWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Errorf("writing workbook: %w", err)
	}
	return nil
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
