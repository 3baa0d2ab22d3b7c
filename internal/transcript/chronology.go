package transcript

import "strings"

// Recognised semester labels.
const (
	FirstSemester  = "FIRST SEMESTER"
	SecondSemester = "SECOND SEMESTER"
)

const unknownSemesterRank = 99

var semesterRanks = map[string]int{
	FirstSemester:  1,
	SecondSemester: 2,
}

// SemesterRank positions a semester label within a session. Unrecognised
// labels sort after every recognised one.
func SemesterRank(label string) int {
	if rank, ok := semesterRanks[strings.ToUpper(strings.TrimSpace(label))]; ok {
		return rank
	}
	return unknownSemesterRank
}

// CompareKeys orders semester keys chronologically: session first, compared
// numerically-aware, then semester rank. Distinct keys never compare equal.
func CompareKeys(a, b SemesterKey) int {
	if c := CompareNatural(a.Session, b.Session); c != 0 {
		return c
	}
	ra, rb := SemesterRank(a.Semester), SemesterRank(b.Semester)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	return CompareNatural(a.Semester, b.Semester)
}

// CompareNatural compares two strings split into alternating digit and
// non-digit runs. Digit runs compare by numeric value, other runs compare
// case-insensitively. Equal-looking strings fall back to a byte comparison so
// the result is only 0 for identical input.
func CompareNatural(a, b string) int {
	ra, rb := splitRuns(a), splitRuns(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		if c := compareRun(ra[i], rb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ra) < len(rb):
		return -1
	case len(ra) > len(rb):
		return 1
	}
	return strings.Compare(a, b)
}

func compareRun(a, b string) int {
	if isDigitRun(a) && isDigitRun(b) {
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(ta) != len(tb) {
			if len(ta) < len(tb) {
				return -1
			}
			return 1
		}
		return strings.Compare(ta, tb)
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func splitRuns(s string) []string {
	var runs []string
	start := 0
	for i := 1; i < len(s); i++ {
		if isDigit(s[i-1]) != isDigit(s[i]) {
			runs = append(runs, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		runs = append(runs, s[start:])
	}
	return runs
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isDigitRun(s string) bool {
	return s != "" && isDigit(s[0])
}
