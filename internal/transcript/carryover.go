package transcript

import (
	"fmt"
	"strings"
)

// Direction selects which side of the chronology counts as a carry-over.
type Direction string

const (
	// DirectionEarlier flags a row whose course code already appeared in an
	// earlier semester.
	DirectionEarlier Direction = "earlier"
	// DirectionLater flags a row whose course code reappears in a later semester.
	DirectionLater Direction = "later"
)

// ParseDirection validates a direction name. Empty input yields the fallback.
func ParseDirection(raw string, fallback Direction) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return fallback, nil
	case DirectionEarlier:
		return DirectionEarlier, nil
	case DirectionLater:
		return DirectionLater, nil
	default:
		return "", fmt.Errorf("unknown carry-over direction %q", raw)
	}
}

// IsCarriedOver reports whether the course code occurs in at least one group
// on the chosen side of key. Unknown keys are never carried over.
func (s *Snapshot) IsCarriedOver(code string, key SemesterKey, direction Direction) bool {
	pos := s.position(key)
	if pos < 0 {
		return false
	}
	var scan []SemesterKey
	if direction == DirectionLater {
		scan = s.order[pos+1:]
	} else {
		scan = s.order[:pos]
	}
	for _, k := range scan {
		for _, attempt := range s.groups[k].Attempts {
			if attempt.CourseCode == code {
				return true
			}
		}
	}
	return false
}
