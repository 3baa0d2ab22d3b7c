package transcript

import "sort"

// LatestAttempt is the most recent attempt of a course code together with the
// credit hours accumulated over all of its attempts.
type LatestAttempt struct {
	Attempt
	AccumulatedCreditHours int
}

// AccumulatedCreditHours sums credit hours over every attempt of the course
// code in every group. The result does not depend on traversal order.
func (s *Snapshot) AccumulatedCreditHours(code string) int {
	total := 0
	for _, group := range s.groups {
		for _, attempt := range group.Attempts {
			if attempt.CourseCode == code {
				total += attempt.CreditHours
			}
		}
	}
	return total
}

// LatestAttempts keeps, per course code, the attempt from the chronologically
// last group containing it. The result is sorted by course code.
func (s *Snapshot) LatestAttempts() []LatestAttempt {
	latest := make(map[string]Attempt)
	for _, key := range s.order {
		for _, attempt := range s.groups[key].Attempts {
			latest[attempt.CourseCode] = attempt
		}
	}
	result := make([]LatestAttempt, 0, len(latest))
	for code, attempt := range latest {
		result = append(result, LatestAttempt{Attempt: attempt, AccumulatedCreditHours: s.AccumulatedCreditHours(code)})
	}
	sort.Slice(result, func(i, j int) bool {
		return CompareNatural(result[i].CourseCode, result[j].CourseCode) < 0
	})
	return result
}

// DisplayQualityPoints is the figure shown on a transcript row: the row's own
// grade points times the course code's accumulated credit hours. Rows of
// earlier attempts change when a repeat is recorded later.
func (s *Snapshot) DisplayQualityPoints(attempt Attempt) float64 {
	return Round2(attempt.Grade().Points() * float64(s.AccumulatedCreditHours(attempt.CourseCode)))
}
