package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// PDF download metadata.
const (
	PDFContentType = "application/pdf"
	PDFFilename    = "relatorios.pdf"

	reportTitle = "Relatório de Movimentações"
)

// Column widths in millimetres, matching the header order.
var columnWidths = []float64{30.5, 30.5, 25.4, 20.3, 25.4, 45.7}

type rgb struct{ r, g, b int }

var (
	brandGreen = rgb{0x06, 0x4E, 0x3B}
	stripe     = rgb{0xF9, 0xF9, 0xF9}
	white      = rgb{0xFF, 0xFF, 0xFF}
)

// WritePDF renders r as an A4 table report.
func WritePDF(w io.Writer, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(reportTitle, true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetMargins(16, 16, 16)
	pdf.SetAutoPageBreak(true, 16)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(brandGreen.r, brandGreen.g, brandGreen.b)
	pdf.CellFormat(0, 14, tr(reportTitle), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	infoLine(pdf, tr, "Data de Geração:", r.GeneratedAt.Format("02/01/2006 15:04"))
	infoLine(pdf, tr, "Total de Movimentações:", fmt.Sprintf("%d", len(r.Rows)))
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(brandGreen.r, brandGreen.g, brandGreen.b)
		pdf.SetTextColor(white.r, white.g, white.b)
		for i, h := range Header {
			pdf.CellFormat(columnWidths[i], 9, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	body := make([][]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		body = append(body, row.PDFCells())
	}
	if len(body) == 0 {
		body = append(body, []string{"", "", "", "", "", EmptyPlaceholder})
	}

	for i, cells := range body {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		fill := stripe
		if i%2 == 0 {
			fill = white
		}
		pdf.SetFillColor(fill.r, fill.g, fill.b)
		for j, c := range cells {
			pdf.CellFormat(columnWidths[j], 7, tr(c), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func infoLine(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	w := pdf.GetStringWidth(tr(label)) + 2
	pdf.CellFormat(w, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}
