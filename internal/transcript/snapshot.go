package transcript

import (
	"fmt"
	"sort"
)

// Attempt is one submission of a course in one semester. Grade and quality
// points are always derived from Score and CreditHours.
type Attempt struct {
	ID          string
	CourseCode  string
	CourseTitle string
	Semester    string
	Session     string
	Level       string
	CreditHours int
	Score       int
}

// Grade derives the letter grade from the score.
func (a Attempt) Grade() Grade {
	return GradeFor(a.Score)
}

// QualityPoints derives the stored quality points of this attempt alone.
func (a Attempt) QualityPoints() float64 {
	return QualityPoints(a.Grade(), a.CreditHours)
}

// Key returns the semester group the attempt belongs to.
func (a Attempt) Key() SemesterKey {
	return SemesterKey{Semester: a.Semester, Session: a.Session}
}

// SemesterKey identifies a semester group.
type SemesterKey struct {
	Semester string `json:"semester"`
	Session  string `json:"session"`
}

func (k SemesterKey) String() string {
	return k.Semester + "|" + k.Session
}

// SemesterGroup holds the attempts recorded for one semester of one session.
type SemesterGroup struct {
	Key      SemesterKey
	Level    string
	Attempts []Attempt
}

// Snapshot is an immutable, chronologically indexed view over a complete
// record set. It is rebuilt from the store on every load and never patched.
type Snapshot struct {
	groups map[SemesterKey]*SemesterGroup
	order  []SemesterKey
}

// Build groups attempts by semester key. Identities must be unique within a
// group.
func Build(attempts []Attempt) (*Snapshot, error) {
	s := &Snapshot{groups: make(map[SemesterKey]*SemesterGroup)}
	seen := make(map[SemesterKey]map[string]struct{})
	for _, attempt := range attempts {
		key := attempt.Key()
		group, ok := s.groups[key]
		if !ok {
			group = &SemesterGroup{Key: key, Level: attempt.Level}
			s.groups[key] = group
			seen[key] = make(map[string]struct{})
		}
		if _, dup := seen[key][attempt.ID]; dup {
			return nil, fmt.Errorf("duplicate attempt %q in %s", attempt.ID, key)
		}
		seen[key][attempt.ID] = struct{}{}
		group.Attempts = append(group.Attempts, attempt)
	}
	s.order = make([]SemesterKey, 0, len(s.groups))
	for key := range s.groups {
		s.order = append(s.order, key)
	}
	sort.Slice(s.order, func(i, j int) bool {
		return CompareKeys(s.order[i], s.order[j]) < 0
	})
	return s, nil
}

// Without returns a new snapshot lacking the attempt with the given identity.
// A group left empty disappears. The boolean reports whether anything was removed.
func (s *Snapshot) Without(id string) (*Snapshot, bool) {
	remaining := make([]Attempt, 0, s.TotalCourses())
	removed := false
	for _, attempt := range s.Attempts() {
		if attempt.ID == id {
			removed = true
			continue
		}
		remaining = append(remaining, attempt)
	}
	if !removed {
		return s, false
	}
	next, _ := Build(remaining)
	return next, true
}

// Keys returns the semester keys in chronological order.
func (s *Snapshot) Keys() []SemesterKey {
	keys := make([]SemesterKey, len(s.order))
	copy(keys, s.order)
	return keys
}

// Groups returns the semester groups in chronological order.
func (s *Snapshot) Groups() []*SemesterGroup {
	groups := make([]*SemesterGroup, 0, len(s.order))
	for _, key := range s.order {
		groups = append(groups, s.groups[key])
	}
	return groups
}

// Group looks up a single semester group.
func (s *Snapshot) Group(key SemesterKey) (*SemesterGroup, bool) {
	group, ok := s.groups[key]
	return group, ok
}

// Attempts returns every attempt, group by group in chronological order.
func (s *Snapshot) Attempts() []Attempt {
	all := make([]Attempt, 0)
	for _, key := range s.order {
		all = append(all, s.groups[key].Attempts...)
	}
	return all
}

// Len is the number of semester groups.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// TotalCourses counts attempts across all groups.
func (s *Snapshot) TotalCourses() int {
	total := 0
	for _, group := range s.groups {
		total += len(group.Attempts)
	}
	return total
}

func (s *Snapshot) position(key SemesterKey) int {
	for i, k := range s.order {
		if k == key {
			return i
		}
	}
	return -1
}
