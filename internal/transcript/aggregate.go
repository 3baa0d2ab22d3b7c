package transcript

import (
	"fmt"
	"strconv"
	"strings"
)

// Policy names a cumulative GPA aggregation strategy.
type Policy string

const (
	// PolicyCreditWeighted divides accumulated quality points of the latest
	// attempt of every course code by their accumulated credit hours.
	PolicyCreditWeighted Policy = "credit_weighted"
	// PolicySemesterMean averages the semester GPAs without weighting and keeps
	// three significant figures.
	PolicySemesterMean Policy = "semester_mean"
)

// DefaultPolicy is the policy applied when none is configured.
const DefaultPolicy = PolicySemesterMean

// ParsePolicy validates a policy name. Empty input yields the fallback.
func ParsePolicy(raw string, fallback Policy) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return fallback, nil
	case PolicyCreditWeighted:
		return PolicyCreditWeighted, nil
	case PolicySemesterMean:
		return PolicySemesterMean, nil
	default:
		return "", fmt.Errorf("unknown cgpa policy %q", raw)
	}
}

// GPAFigure carries a GPA value alongside its display form.
type GPAFigure struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

func twoDecimals(v float64) GPAFigure {
	v = Round2(v)
	return GPAFigure{Value: v, Display: strconv.FormatFloat(v, 'f', 2, 64)}
}

// SemesterGPA divides the stored quality points of the group's attempts by
// their own credit hours, rounded to two decimals. Zero credit hours give zero.
func SemesterGPA(group *SemesterGroup) GPAFigure {
	if group == nil {
		return twoDecimals(0)
	}
	var totalQP float64
	var totalCH int
	for _, attempt := range group.Attempts {
		totalQP += attempt.QualityPoints()
		totalCH += attempt.CreditHours
	}
	if totalCH == 0 {
		return twoDecimals(0)
	}
	return twoDecimals(totalQP / float64(totalCH))
}

// CumulativeGPA aggregates the snapshot under the given policy. An empty
// snapshot yields a zero figure.
func CumulativeGPA(s *Snapshot, policy Policy) GPAFigure {
	switch policy {
	case PolicyCreditWeighted:
		return creditWeightedGPA(s)
	default:
		return semesterMeanGPA(s)
	}
}

func creditWeightedGPA(s *Snapshot) GPAFigure {
	var totalQP float64
	var totalCH int
	for _, latest := range s.LatestAttempts() {
		totalQP += latest.Grade().Points() * float64(latest.AccumulatedCreditHours)
		totalCH += latest.AccumulatedCreditHours
	}
	if totalCH == 0 {
		return twoDecimals(0)
	}
	return twoDecimals(totalQP / float64(totalCH))
}

func semesterMeanGPA(s *Snapshot) GPAFigure {
	groups := s.Groups()
	if len(groups) == 0 {
		return twoDecimals(0)
	}
	var total float64
	for _, group := range groups {
		total += SemesterGPA(group).Value
	}
	value, decimals := roundSignificant(total/float64(len(groups)), 3)
	return GPAFigure{Value: value, Display: strconv.FormatFloat(value, 'f', decimals, 64)}
}
