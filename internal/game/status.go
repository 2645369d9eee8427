package game

import "fmt"

// statusNames is the single conversion table between the in-memory enum and
// the canonical strings stored by the repository. Core logic never compares
// raw strings.
var statusNames = map[Status]string{
	StatusPreGame:    "PRE_GAME",
	StatusInProgress: "IN_PROGRESS",
	StatusFinished:   "FINISHED",
	StatusCancelled:  "CANCELLED",
}

var statusByName = func() map[string]Status {
	m := make(map[string]Status, len(statusNames))
	for s, name := range statusNames {
		m[name] = s
	}
	return m
}()

// ParseStatus converts a persisted status string back to the enum.
func ParseStatus(s string) (Status, error) {
	if st, ok := statusByName[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown game status %q", s)
}

func (s Status) String() string { return statusNames[s] }

// validTransitions enumerates the allowed status edges. Terminal states have
// no outgoing edges.
var validTransitions = map[Status][]Status{
	StatusPreGame:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusFinished, StatusCancelled},
}

// ValidTransition reports whether from → to is a legal status change.
func ValidTransition(from, to Status) bool {
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
