package transcript

import (
	"sort"
	"strconv"
)

// Options fixes the policy and carry-over direction for one render pass.
type Options struct {
	Policy    Policy
	Direction Direction
}

// Row is one attempt as it appears in a semester table.
type Row struct {
	Index                  int     `json:"index"`
	ID                     string  `json:"id"`
	CourseCode             string  `json:"course_code"`
	CourseTitle            string  `json:"course_title"`
	CreditHours            int     `json:"credit_hours"`
	AccumulatedCreditHours int     `json:"accumulated_credit_hours"`
	CreditHoursDisplay     string  `json:"credit_hours_display"`
	Score                  int     `json:"score"`
	Grade                  Grade   `json:"grade"`
	QualityPoints          float64 `json:"quality_points"`
	DisplayQualityPoints   float64 `json:"display_quality_points"`
	CarriedOver            bool    `json:"carried_over"`
}

// SemesterTable is the rendered form of a semester group.
type SemesterTable struct {
	Key                SemesterKey `json:"key"`
	Level              string      `json:"level"`
	Rows               []Row       `json:"rows"`
	TotalCreditHours   int         `json:"total_credit_hours"`
	TotalQualityPoints float64     `json:"total_quality_points"`
	GPA                GPAFigure   `json:"gpa"`
}

// Stats summarises the whole transcript.
type Stats struct {
	TotalCourses     int       `json:"total_courses"`
	TotalCreditHours int       `json:"total_credit_hours"`
	AverageScore     float64   `json:"average_score"`
	CGPA             GPAFigure `json:"cgpa"`
}

// LatestRow is a deduplicated course entry.
type LatestRow struct {
	CourseCode             string      `json:"course_code"`
	CourseTitle            string      `json:"course_title"`
	Semester               SemesterKey `json:"semester"`
	Grade                  Grade       `json:"grade"`
	AccumulatedCreditHours int         `json:"accumulated_credit_hours"`
	QualityPoints          float64     `json:"quality_points"`
}

// Transcript is the full computed result handed to renderers.
type Transcript struct {
	Policy    Policy          `json:"policy"`
	Direction Direction       `json:"carry_over_direction"`
	Semesters []SemesterTable `json:"semesters"`
	Latest    []LatestRow     `json:"latest_attempts"`
	Stats     Stats           `json:"stats"`
}

// Compute runs a full render pass over the snapshot. The same snapshot and
// options always produce the same transcript.
func Compute(s *Snapshot, opts Options) *Transcript {
	if opts.Policy == "" {
		opts.Policy = DefaultPolicy
	}
	if opts.Direction == "" {
		opts.Direction = DirectionEarlier
	}

	cgpa := CumulativeGPA(s, opts.Policy)
	result := &Transcript{
		Policy:    opts.Policy,
		Direction: opts.Direction,
		Semesters: make([]SemesterTable, 0, s.Len()),
		Latest:    make([]LatestRow, 0),
	}

	var totalScore int
	for _, group := range s.Groups() {
		table := SemesterTable{Key: group.Key, Level: group.Level, GPA: SemesterGPA(group)}
		attempts := make([]Attempt, len(group.Attempts))
		copy(attempts, group.Attempts)
		sort.SliceStable(attempts, func(i, j int) bool {
			return CompareNatural(attempts[i].CourseCode, attempts[j].CourseCode) < 0
		})
		for i, attempt := range attempts {
			accumulated := s.AccumulatedCreditHours(attempt.CourseCode)
			display := s.DisplayQualityPoints(attempt)
			table.Rows = append(table.Rows, Row{
				Index:                  i + 1,
				ID:                     attempt.ID,
				CourseCode:             attempt.CourseCode,
				CourseTitle:            attempt.CourseTitle,
				CreditHours:            attempt.CreditHours,
				AccumulatedCreditHours: accumulated,
				CreditHoursDisplay:     creditHoursDisplay(attempt.CreditHours, accumulated),
				Score:                  attempt.Score,
				Grade:                  attempt.Grade(),
				QualityPoints:          attempt.QualityPoints(),
				DisplayQualityPoints:   display,
				CarriedOver:            s.IsCarriedOver(attempt.CourseCode, group.Key, opts.Direction),
			})
			table.TotalCreditHours += accumulated
			table.TotalQualityPoints += display
			result.Stats.TotalCourses++
			result.Stats.TotalCreditHours += accumulated
			totalScore += attempt.Score
		}
		table.TotalQualityPoints = Round2(table.TotalQualityPoints)
		result.Semesters = append(result.Semesters, table)
	}

	for _, latest := range s.LatestAttempts() {
		result.Latest = append(result.Latest, LatestRow{
			CourseCode:             latest.CourseCode,
			CourseTitle:            latest.CourseTitle,
			Semester:               latest.Key(),
			Grade:                  latest.Grade(),
			AccumulatedCreditHours: latest.AccumulatedCreditHours,
			QualityPoints:          s.DisplayQualityPoints(latest.Attempt),
		})
	}

	if result.Stats.TotalCourses > 0 {
		result.Stats.AverageScore = Round2(float64(totalScore) / float64(result.Stats.TotalCourses))
	}
	result.Stats.CGPA = cgpa
	return result
}

func creditHoursDisplay(own, accumulated int) string {
	if accumulated > own {
		return strconv.Itoa(own) + "→" + strconv.Itoa(accumulated)
	}
	return strconv.Itoa(accumulated)
}
