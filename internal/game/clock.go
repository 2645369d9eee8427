package game

import "time"

// Clock supplies wall-clock time. Injectable so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TurnClock computes and checks turn deadlines against a fixed per-turn
// duration.
type TurnClock struct {
	Duration time.Duration
}

// Deadline returns the moment the turn starting at now forfeits.
func (tc TurnClock) Deadline(now time.Time) time.Time {
	return now.Add(tc.Duration)
}

// Expired reports whether the deadline has passed at now. A deadline exactly
// equal to now counts as expired.
func (tc TurnClock) Expired(deadline, now time.Time) bool {
	return !now.Before(deadline)
}
