// Package pdf renders billing documents to PDF with go-pdf/fpdf.
package pdf

import (
	"bytes"

	"github.com/go-faster/errors"
	"github.com/go-pdf/fpdf"

	"github.com/agentur-schein/propshop/internal/domain/document"
)

var _ document.Renderer = (*Renderer)(nil)

// Renderer produces A4 portrait documents with a title, header block, an
// item table and a right-aligned totals block. Safe for concurrent use; each
// Render call builds its own fpdf instance.
type Renderer struct{}

// NewRenderer creates a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

const (
	marginMM     = 15
	nameColMM    = 80
	amountColMM  = 30
	rowHeightMM  = 8
	totalsGapMM  = 4
	footerGapMM  = 10
	headerGrey   = 230
	borderGrey   = 180
	contentWidth = 180
)

// Render lays out the document and returns the PDF bytes.
func (r *Renderer) Render(doc document.Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWidth, 12, doc.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range doc.HeaderLines {
		pdf.CellFormat(contentWidth, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	r.table(pdf, doc.Rows)
	pdf.Ln(totalsGapMM)

	pdf.SetFont("Helvetica", "B", 11)
	for _, t := range doc.Totals {
		pdf.CellFormat(contentWidth-amountColMM, 7, t.Label, "", 0, "R", false, 0, "")
		pdf.CellFormat(amountColMM, 7, t.Amount, "", 1, "R", false, 0, "")
	}

	if len(doc.FooterLines) > 0 {
		pdf.Ln(footerGapMM)
		pdf.SetFont("Helvetica", "I", 10)
		for _, line := range doc.FooterLines {
			pdf.CellFormat(contentWidth, 5, line, "", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf.Bytes(), nil
}

func (r *Renderer) table(pdf *fpdf.Fpdf, rows []document.Row) {
	pdf.SetFillColor(headerGrey, headerGrey, headerGrey)
	pdf.SetDrawColor(borderGrey, borderGrey, borderGrey)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(nameColMM, rowHeightMM, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountColMM, rowHeightMM, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(amountColMM, rowHeightMM, "Print Cost", "1", 0, "R", true, 0, "")
	pdf.CellFormat(amountColMM+10, rowHeightMM, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.CellFormat(nameColMM, rowHeightMM, row.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(amountColMM, rowHeightMM, row.Price, "1", 0, "R", false, 0, "")
		pdf.CellFormat(amountColMM, rowHeightMM, row.PrintCost, "1", 0, "R", false, 0, "")
		pdf.CellFormat(amountColMM+10, rowHeightMM, row.Total, "1", 1, "R", false, 0, "")
	}
}
