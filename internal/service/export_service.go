package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gpa-transcript-api/internal/models"
	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
	appErrors "github.com/noah-isme/gpa-transcript-api/pkg/errors"
	"github.com/noah-isme/gpa-transcript-api/pkg/export"
	"github.com/noah-isme/gpa-transcript-api/pkg/storage"
)

type transcriptComputer interface {
	Compute(ctx context.Context, userID string, query TranscriptQuery) (*transcript.Transcript, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportFile is an opened export ready for download.
type ExportFile struct {
	File        *os.File
	Name        string
	ContentType string
}

// ExportService renders transcripts to files and hands out signed download links.
type ExportService struct {
	transcripts transcriptComputer
	storage     fileStorage
	csv         csvRenderer
	pdf         pdfRenderer
	signer      *storage.SignedURLSigner
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ExportConfig
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(transcripts transcriptComputer, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = &export.PDFExporter{Widths: map[string]float64{"#": 0.5, "Title": 3, "Carried Over": 1.3}}
	}
	return &ExportService{
		transcripts: transcripts,
		storage:     store,
		csv:         csv,
		pdf:         pdf,
		signer:      signer,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Generate computes the user's transcript, renders it and stores the file.
func (s *ExportService) Generate(ctx context.Context, userID string, req models.ExportRequest) (*models.ExportResult, error) {
	req.Format = models.ExportFormat(strings.ToLower(strings.TrimSpace(string(req.Format))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describeValidation(err))
	}

	result, _, err := s.transcripts.Compute(ctx, userID, TranscriptQuery{Policy: req.Policy, CarryOver: req.CarryOver})
	if err != nil {
		return nil, err
	}

	doc := TranscriptDocument(result, s.now().UTC())
	var payload []byte
	switch req.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(doc)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(doc)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	relPath, err := s.storage.Save(s.buildFilename(userID, req.Format), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(userID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.metrics.RecordExport(string(req.Format))
	s.logger.Info("transcript exported", zap.String("user_id", userID), zap.String("format", string(req.Format)), zap.String("path", relPath))
	return &models.ExportResult{
		Format:    req.Format,
		URL:       fmt.Sprintf("%s/exports/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a download token to the stored file.
func (s *ExportService) Open(token string) (*ExportFile, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrExpiredToken) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export link invalid")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return &ExportFile{File: file, Name: path.Base(relPath), ContentType: contentTypeFor(relPath)}, nil
}

// Cleanup removes files older than ttl (defaults to the configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(userID string, format models.ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s/transcript_%s_%s.%s", userID, timestamp, uuid.NewString()[:8], format)
}

func contentTypeFor(name string) string {
	switch path.Ext(name) {
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

var transcriptHeaders = []string{"#", "Code", "Title", "CH", "Score", "Grade", "QP", "Carried Over"}

// TranscriptDocument lays a computed transcript out as an export document.
func TranscriptDocument(t *transcript.Transcript, generatedAt time.Time) export.Document {
	doc := export.Document{
		Title:    "Academic Transcript",
		Subtitle: fmt.Sprintf("Generated %s (policy %s)", generatedAt.Format(time.RFC3339), t.Policy),
		Sections: make([]export.Section, 0, len(t.Semesters)),
	}
	for _, table := range t.Semesters {
		rows := make([]map[string]string, 0, len(table.Rows))
		for _, row := range table.Rows {
			carried := ""
			if row.CarriedOver {
				carried = "yes"
			}
			rows = append(rows, map[string]string{
				"#":            strconv.Itoa(row.Index),
				"Code":         row.CourseCode,
				"Title":        row.CourseTitle,
				"CH":           row.CreditHoursDisplay,
				"Score":        strconv.Itoa(row.Score),
				"Grade":        string(row.Grade),
				"QP":           strconv.FormatFloat(row.DisplayQualityPoints, 'f', 2, 64),
				"Carried Over": carried,
			})
		}
		heading := fmt.Sprintf("%s, %s", table.Key.Semester, table.Key.Session)
		if table.Level != "" {
			heading += fmt.Sprintf(" (%s)", table.Level)
		}
		doc.Sections = append(doc.Sections, export.Section{
			Heading: heading,
			Data:    export.Dataset{Headers: transcriptHeaders, Rows: rows},
			Footer: []string{
				fmt.Sprintf("Total CH %d, Total QP %s, GPA %s", table.TotalCreditHours, strconv.FormatFloat(table.TotalQualityPoints, 'f', 2, 64), table.GPA.Display),
			},
		})
	}
	doc.Summary = []export.Field{
		{Label: "Total Courses", Value: strconv.Itoa(t.Stats.TotalCourses)},
		{Label: "Total Credit Hours", Value: strconv.Itoa(t.Stats.TotalCreditHours)},
		{Label: "Average Score", Value: strconv.FormatFloat(t.Stats.AverageScore, 'f', 2, 64)},
		{Label: "CGPA", Value: t.Stats.CGPA.Display},
	}
	return doc
}
