package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gpa-transcript-api/internal/models"
	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
	appErrors "github.com/noah-isme/gpa-transcript-api/pkg/errors"
)

type courseLister interface {
	List(ctx context.Context, userID string) ([]models.Course, bool, error)
}

// TranscriptConfig carries the server-wide render defaults.
type TranscriptConfig struct {
	Policy    transcript.Policy
	Direction transcript.Direction
}

// TranscriptQuery holds per-request overrides. Empty fields use the defaults.
type TranscriptQuery struct {
	Policy    string
	CarryOver string
}

// TranscriptService rebuilds a snapshot from the full record set on every call
// and runs one render pass over it.
type TranscriptService struct {
	courses courseLister
	metrics *MetricsService
	logger  *zap.Logger
	config  TranscriptConfig
}

// NewTranscriptService constructs the service.
func NewTranscriptService(courses courseLister, metrics *MetricsService, logger *zap.Logger, config TranscriptConfig) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Policy == "" {
		config.Policy = transcript.DefaultPolicy
	}
	if config.Direction == "" {
		config.Direction = transcript.DirectionEarlier
	}
	return &TranscriptService{courses: courses, metrics: metrics, logger: logger, config: config}
}

// Options resolves the query against the configured defaults.
func (s *TranscriptService) Options(query TranscriptQuery) (transcript.Options, error) {
	policy, err := transcript.ParsePolicy(query.Policy, s.config.Policy)
	if err != nil {
		return transcript.Options{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "policy must be credit_weighted or semester_mean")
	}
	direction, err := transcript.ParseDirection(query.CarryOver, s.config.Direction)
	if err != nil {
		return transcript.Options{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "carry_over must be earlier or later")
	}
	return transcript.Options{Policy: policy, Direction: direction}, nil
}

// Compute loads the user's record set and returns the computed transcript plus
// whether the record set was served from cache.
func (s *TranscriptService) Compute(ctx context.Context, userID string, query TranscriptQuery) (*transcript.Transcript, bool, error) {
	opts, err := s.Options(query)
	if err != nil {
		return nil, false, err
	}

	courses, cacheHit, err := s.courses.List(ctx, userID)
	if err != nil {
		return nil, false, err
	}

	start := time.Now()
	snapshot, err := transcript.Build(models.Attempts(courses))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "inconsistent record set")
	}
	result := transcript.Compute(snapshot, opts)
	elapsed := time.Since(start)

	s.metrics.RecordComputation(string(opts.Policy), string(opts.Direction), elapsed)
	s.logger.Debug("transcript computed",
		zap.String("user_id", userID),
		zap.Int("courses", result.Stats.TotalCourses),
		zap.Int("semesters", len(result.Semesters)),
		zap.String("policy", string(opts.Policy)),
		zap.String("cgpa", result.Stats.CGPA.Display),
		zap.Bool("cache_hit", cacheHit),
		zap.Duration("elapsed", elapsed),
	)
	return result, cacheHit, nil
}
