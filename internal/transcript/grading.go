package transcript

import "math"

// Grade is a letter grade on the five-point scale.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
	GradeF Grade = "F"
)

type gradeBand struct {
	minScore int
	grade    Grade
	points   float64
}

// bands are ordered highest-first; the first band whose lower bound is met wins.
var bands = []gradeBand{
	{minScore: 70, grade: GradeA, points: 5},
	{minScore: 60, grade: GradeB, points: 4},
	{minScore: 50, grade: GradeC, points: 3},
	{minScore: 45, grade: GradeD, points: 2},
	{minScore: 40, grade: GradeE, points: 1},
	{minScore: 0, grade: GradeF, points: 0},
}

// GradeFor maps a validated score (0..100) to its letter grade.
func GradeFor(score int) Grade {
	for _, band := range bands {
		if score >= band.minScore {
			return band.grade
		}
	}
	return GradeF
}

// Points returns the grade-point multiplier for the grade.
func (g Grade) Points() float64 {
	for _, band := range bands {
		if band.grade == g {
			return band.points
		}
	}
	return 0
}

// QualityPoints returns points(grade) x creditHours rounded to two decimals.
func QualityPoints(grade Grade, creditHours int) float64 {
	return Round2(grade.Points() * float64(creditHours))
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundSignificant rounds v to the given number of significant figures and
// returns the number of decimals needed to print it at that precision.
func roundSignificant(v float64, figures int) (float64, int) {
	if v == 0 {
		return 0, figures - 1
	}
	magnitude := int(math.Floor(math.Log10(math.Abs(v)))) + 1
	decimals := figures - magnitude
	pow := math.Pow(10, float64(decimals))
	rounded := math.Round(v*pow) / pow
	if decimals < 0 {
		decimals = 0
	}
	return rounded, decimals
}
