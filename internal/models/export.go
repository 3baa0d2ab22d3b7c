package models

import "time"

// ExportFormat enumerates rendered transcript formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportRequest asks for a rendered transcript file.
type ExportRequest struct {
	Format    ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Policy    string       `json:"policy" validate:"omitempty,oneof=credit_weighted semester_mean"`
	CarryOver string       `json:"carry_over" validate:"omitempty,oneof=earlier later"`
}

// ExportResult points at a stored export.
type ExportResult struct {
	Format    ExportFormat `json:"format"`
	URL       string       `json:"url"`
	ExpiresAt time.Time    `json:"expires_at"`
}
