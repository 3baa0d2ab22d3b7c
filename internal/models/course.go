package models

import (
	"strings"
	"time"

	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
)

// Course is one stored course attempt. Grade and QP are legacy columns written
// on insert for older readers; computations always derive them from Score.
type Course struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	CourseTitle string    `db:"course_title" json:"course_title"`
	Semester    string    `db:"semester" json:"semester"`
	Session     string    `db:"session" json:"session"`
	Level       string    `db:"level" json:"level"`
	CreditHours int       `db:"credit_hours" json:"credit_hours"`
	Score       int       `db:"score" json:"score"`
	Grade       string    `db:"grade" json:"grade"`
	QP          float64   `db:"qp" json:"qp"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ToAttempt converts the stored row to an engine attempt.
func (c Course) ToAttempt() transcript.Attempt {
	return transcript.Attempt{
		ID:          c.ID,
		CourseCode:  c.CourseCode,
		CourseTitle: c.CourseTitle,
		Semester:    c.Semester,
		Session:     c.Session,
		Level:       c.Level,
		CreditHours: c.CreditHours,
		Score:       c.Score,
	}
}

// Attempts converts a record set.
func Attempts(courses []Course) []transcript.Attempt {
	attempts := make([]transcript.Attempt, 0, len(courses))
	for _, c := range courses {
		attempts = append(attempts, c.ToAttempt())
	}
	return attempts
}

// CourseDraft is the submission payload for a new course attempt. Score is a
// pointer so that zero is accepted while absence is rejected.
type CourseDraft struct {
	CourseCode  string `json:"course_code" validate:"required,max=32"`
	CourseTitle string `json:"course_title" validate:"required,max=255"`
	Semester    string `json:"semester" validate:"required,max=64"`
	Session     string `json:"session" validate:"required,max=32"`
	Level       string `json:"level" validate:"required,max=32"`
	CreditHours int    `json:"credit_hours" validate:"required,gt=0"`
	Score       *int   `json:"score" validate:"required,min=0,max=100"`
}

// Normalize trims every field and upper-cases the code, semester label and level.
func (d *CourseDraft) Normalize() {
	d.CourseCode = strings.ToUpper(strings.TrimSpace(d.CourseCode))
	d.CourseTitle = strings.TrimSpace(d.CourseTitle)
	d.Semester = strings.ToUpper(strings.TrimSpace(d.Semester))
	d.Session = strings.TrimSpace(d.Session)
	d.Level = strings.ToUpper(strings.TrimSpace(d.Level))
}
