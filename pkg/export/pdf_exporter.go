package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// PDFExporter renders documents into a tabular A4 PDF.
type PDFExporter struct {
	// Widths optionally fixes relative column weights by header name.
	Widths map[string]float64
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with a title, one table per section and the summary.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(doc.Title)), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		if section.Heading != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(section.Heading), "", 1, "L", false, 0, "")
		}
		widths := e.columnWidths(section.Data.Headers)

		pdf.SetFont("Arial", "B", 9)
		for i, header := range section.Data.Headers {
			pdf.CellFormat(widths[i], 7, tr(header), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Data.Rows {
			for i, header := range section.Data.Headers {
				pdf.CellFormat(widths[i], 6, tr(row[header]), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.SetFont("Arial", "I", 9)
		for _, line := range section.Footer {
			pdf.CellFormat(0, 6, tr(line), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	if len(doc.Summary) > 0 {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, field := range doc.Summary {
			pdf.CellFormat(60, 6, tr(field.Label), "", 0, "", false, 0, "")
			pdf.CellFormat(0, 6, tr(field.Value), "", 1, "", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) columnWidths(headers []string) []float64 {
	weights := make([]float64, len(headers))
	var total float64
	for i, header := range headers {
		weight := 1.0
		if w, ok := e.Widths[header]; ok && w > 0 {
			weight = w
		}
		weights[i] = weight
		total += weight
	}
	for i := range weights {
		weights[i] = pageWidth * weights[i] / total
	}
	return weights
}
