package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/gpa-transcript-api/internal/models"
	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
	appErrors "github.com/noah-isme/gpa-transcript-api/pkg/errors"
)

type courseRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, userID, id string) error
}

const courseCachePrefix = "courses:"

func courseCacheKey(userID string) string {
	return courseCachePrefix + userID
}

// CourseService validates submissions and reads or mutates a user's record set.
// Only the raw record set is cached; computed figures never are.
type CourseService struct {
	repo      courseRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewCourseService constructs the service. cache and metrics may be nil.
func NewCourseService(repo courseRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// List returns the user's complete record set and whether it came from cache.
func (s *CourseService) List(ctx context.Context, userID string) ([]models.Course, bool, error) {
	key := courseCacheKey(userID)
	var cached []models.Course
	if s.cache.Get(ctx, key, &cached) {
		return cached, true, nil
	}

	start := time.Now()
	courses, err := s.repo.ListByUser(ctx, userID)
	s.metrics.ObserveDBQuery("courses_list", time.Since(start))
	if err != nil {
		s.logger.Error("list courses failed", zap.String("user_id", userID), zap.Error(err))
		return nil, false, appErrors.StoreUnavailable(err)
	}

	s.cache.Set(ctx, key, courses, s.cacheTTL)
	return courses, false, nil
}

// Create validates and stores a new attempt. Nothing reaches the store when
// validation fails.
func (s *CourseService) Create(ctx context.Context, userID string, draft models.CourseDraft) (*models.Course, error) {
	draft.Normalize()
	if err := s.validator.Struct(draft); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, describeValidation(err))
	}

	grade := transcript.GradeFor(*draft.Score)
	course := &models.Course{
		UserID:      userID,
		CourseCode:  draft.CourseCode,
		CourseTitle: draft.CourseTitle,
		Semester:    draft.Semester,
		Session:     draft.Session,
		Level:       draft.Level,
		CreditHours: draft.CreditHours,
		Score:       *draft.Score,
		Grade:       string(grade),
		QP:          transcript.QualityPoints(grade, draft.CreditHours),
	}

	start := time.Now()
	err := s.repo.Create(ctx, course)
	s.metrics.ObserveDBQuery("courses_create", time.Since(start))
	if err != nil {
		s.logger.Error("create course failed", zap.String("user_id", userID), zap.Error(err))
		return nil, appErrors.StoreUnavailable(err)
	}

	s.cache.Invalidate(ctx, courseCacheKey(userID))
	s.logger.Info("course recorded",
		zap.String("user_id", userID),
		zap.String("course_id", course.ID),
		zap.String("course_code", course.CourseCode),
	)
	return course, nil
}

// Delete removes one attempt of the user.
func (s *CourseService) Delete(ctx context.Context, userID, id string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, userID, id)
	s.metrics.ObserveDBQuery("courses_delete", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		s.logger.Error("delete course failed", zap.String("user_id", userID), zap.Error(err))
		return appErrors.StoreUnavailable(err)
	}

	s.cache.Invalidate(ctx, courseCacheKey(userID))
	return nil
}
