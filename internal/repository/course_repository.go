package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gpa-transcript-api/internal/models"
)

const courseColumns = `id, user_id, course_code, course_title, semester, session, level, credit_hours, score, grade, qp, created_at`

// CourseRepository stores course attempts keyed by the owning user.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListByUser returns the full record set of a user.
func (r *CourseRepository) ListByUser(ctx context.Context, userID string) ([]models.Course, error) {
	query := r.db.Rebind(`SELECT ` + courseColumns + ` FROM courses WHERE user_id = ? ORDER BY created_at, id`)
	courses := make([]models.Course, 0)
	if err := r.db.SelectContext(ctx, &courses, query, userID); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Create inserts a course attempt and assigns its identity.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO courses (` + courseColumns + `) VALUES (:id, :user_id, :course_code, :course_title, :semester, :session, :level, :credit_hours, :score, :grade, :qp, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Delete removes a course attempt owned by the user. It returns sql.ErrNoRows
// when nothing matched.
func (r *CourseRepository) Delete(ctx context.Context, userID, id string) error {
	query := r.db.Rebind(`DELETE FROM courses WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
