package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

var errEmptyHeaders = errors.New("every section requires at least one header")

// CSVExporter renders documents into CSV bytes. Sections are written one after
// another, each introduced by a single-cell heading record and separated by an
// empty record; the summary closes the file as label/value pairs.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the document.
func (e *CSVExporter) Render(doc Document) ([]byte, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	write := func(record ...string) error {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
		return nil
	}

	if doc.Title != "" {
		if err := write(doc.Title); err != nil {
			return nil, err
		}
	}
	for _, section := range doc.Sections {
		if section.Heading != "" {
			if err := write(section.Heading); err != nil {
				return nil, err
			}
		}
		if err := write(section.Data.Headers...); err != nil {
			return nil, err
		}
		for _, row := range section.Data.Rows {
			record := make([]string, len(section.Data.Headers))
			for i, header := range section.Data.Headers {
				record[i] = row[header]
			}
			if err := write(record...); err != nil {
				return nil, err
			}
		}
		for _, line := range section.Footer {
			if err := write(line); err != nil {
				return nil, err
			}
		}
		if err := write(""); err != nil {
			return nil, err
		}
	}
	for _, field := range doc.Summary {
		if err := write(field.Label, field.Value); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
