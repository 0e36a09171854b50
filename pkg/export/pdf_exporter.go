package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 277.0 // A4 landscape minus margins
	groupField = "Term"
)

// PDFExporter renders datasets into a landscape table. A header named "Term" starts a
// shaded group row whenever its value changes.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType implements Renderer.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	columns := make([]string, 0, len(data.Headers))
	grouped := false
	for _, h := range data.Headers {
		if h == groupField {
			grouped = true
			continue
		}
		columns = append(columns, h)
	}
	colWidth := pageWidth / float64(len(columns))
	if len(columns) == 0 {
		columns, grouped, colWidth = data.Headers, false, pageWidth
	}

	pdf.SetFont("Arial", "B", 10)
	for _, header := range columns {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetFillColor(230, 236, 245)
	current := ""
	for i, row := range data.Rows {
		if grouped && (i == 0 || row[groupField] != current) {
			current = row[groupField]
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(pageWidth, 7, tr(current), "1", 1, "L", true, 0, "")
			pdf.SetFont("Arial", "", 9)
		}
		for _, header := range columns {
			pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
