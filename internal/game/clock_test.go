package game

import (
	"testing"
	"time"
)

func TestTurnClockDeadline(t *testing.T) {
	tc := TurnClock{Duration: 2 * time.Minute}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	dl := tc.Deadline(now)
	if !dl.Equal(now.Add(2 * time.Minute)) {
		t.Fatalf("Deadline = %v, want now+2m", dl)
	}
}

func TestTurnClockExpired(t *testing.T) {
	tc := TurnClock{Duration: time.Minute}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if tc.Expired(now.Add(time.Second), now) {
		t.Fatalf("future deadline must not be expired")
	}
	if !tc.Expired(now, now) {
		t.Fatalf("deadline equal to now counts as expired")
	}
	if !tc.Expired(now.Add(-time.Second), now) {
		t.Fatalf("past deadline must be expired")
	}
}
