package render

import (
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/document"
)

const (
	pageMargin = 18.0
	rowHeight  = 5.0
	leftWidth  = 100.0 // company and party blocks; the rest is meta
)

// Column widths sum to the printable width of an A4 page with 18mm
// margins.
var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{title: "Part", width: 38, align: "L"},
	{title: "Description", width: 56, align: "L"},
	{title: "Material", width: 28, align: "L"},
	{title: "Qty", width: 14, align: "R"},
	{title: "m²", width: 18, align: "R"},
	{title: "kg", width: 20, align: "R"},
}

func writePDF(doc *document.Document, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Type.Label()+" "+doc.Number, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Company block left, document title and number right.
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.MultiCell(leftWidth, 6, tr(doc.Company.Name), "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	for _, s := range companyLines(doc.Company) {
		pdf.MultiCell(leftWidth, 4.5, tr(s), "", "L", false)
	}
	leftEnd := pdf.GetY()

	pdf.SetXY(pageMargin+leftWidth, top)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, tr(doc.Type.Label()), "", 2, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(doc.Number), "", 2, "R", false, 0, "")
	pdf.CellFormat(0, 5, doc.Date, "", 2, "R", false, 0, "")
	pdf.SetY(maxY(leftEnd, pdf.GetY()))
	pdf.Ln(8)

	// Party block left, project metadata right.
	top = pdf.GetY()
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(leftWidth, rowHeight, tr(doc.Type.PartyRole()), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, s := range partyLines(doc.Party) {
		pdf.MultiCell(leftWidth, 4.5, tr(s), "", "L", false)
	}
	leftEnd = pdf.GetY()

	pdf.SetXY(pageMargin+leftWidth, top)
	meta := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetX(pageMargin + leftWidth)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(28, 4.5, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 4.5, tr(value), "", 1, "L", false, 0, "")
	}
	meta("Production", doc.Production)
	meta("Project no.", doc.ProjectNumber)
	meta("Project", doc.ProjectName)
	meta("Delivery", doc.Delivery)
	meta("Reply by", doc.Deadline)
	pdf.SetY(maxY(leftEnd, pdf.GetY()))
	pdf.Ln(8)

	// Items table.
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 6, tr(col.title), "1", 0, col.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range doc.Lines {
		cells := []string{
			line.PartNumber,
			lineDescription(line),
			line.Material,
			line.Quantity.String(),
			optionalDecimal(line.Surface),
			optionalDecimal(line.Weight),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 5.5, fitCell(pdf, tr(cells[i]), col.width), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(doc.Notes) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, rowHeight, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, note := range doc.Notes {
			pdf.MultiCell(0, 4.5, tr("- "+note), "", "L", false)
		}
	}

	if doc.FooterNote != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.MultiCell(0, 4, tr(doc.FooterNote), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	if doc.Compliance != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 4.5, tr(doc.Compliance), "", "L", false)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return errors.Errorf("writing pdf: %w", err)
	}
	return nil
}

func optionalDecimal(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// fitCell trims a value to its column, with an ellipsis, so long
// descriptions never bleed into the next cell.
func fitCell(pdf *fpdf.Fpdf, s string, width float64) string {
	avail := width - 2 // cell padding
	if pdf.GetStringWidth(s) <= avail {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > avail {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func maxY(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
