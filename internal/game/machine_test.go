package game

import "testing"

// scriptedRand replays a fixed draw sequence, clamped into range.
type scriptedRand struct {
	seq []int
	i   int
}

func (r *scriptedRand) IntN(n int) int {
	if r.i >= len(r.seq) {
		return 0
	}
	v := r.seq[r.i] % n
	r.i++
	return v
}

func roster(ids ...int64) []Player {
	ps := make([]Player, 0, len(ids))
	for i, id := range ids {
		ps = append(ps, Player{UserID: id, Username: "p", TurnOrder: i + 1})
	}
	return ps
}

func TestStartOrderAssignsContiguousOrders(t *testing.T) {
	in := []Player{{UserID: 10}, {UserID: 20}, {UserID: 30}, {UserID: 40}}
	ordered, first, err := StartOrder(in, &scriptedRand{seq: []int{2, 0, 1, 0}})
	if err != nil {
		t.Fatalf("StartOrder: %v", err)
	}
	if len(ordered) != 4 {
		t.Fatalf("expected 4 players, got %d", len(ordered))
	}
	seen := map[int]bool{}
	for i, p := range ordered {
		if p.TurnOrder != i+1 {
			t.Fatalf("roster not sorted by turn order: %v", ordered)
		}
		if seen[p.TurnOrder] {
			t.Fatalf("duplicate turn order %d", p.TurnOrder)
		}
		seen[p.TurnOrder] = true
	}
	// Draw sequence 2,0,1,0 over {10,20,30,40}: 30, 10, 40, 20.
	if ordered[0].UserID != 30 || ordered[1].UserID != 10 || ordered[2].UserID != 40 || ordered[3].UserID != 20 {
		t.Fatalf("unexpected draw order: %v", ordered)
	}
	// The last-drawn player opens the game, not turn order 1.
	if first != 20 {
		t.Fatalf("first turn should go to the last-drawn player 20, got %d", first)
	}
	if ordered[len(ordered)-1].UserID != first {
		t.Fatalf("first turn holder must carry the highest turn order")
	}
}

func TestStartOrderEmptyRoster(t *testing.T) {
	if _, _, err := StartOrder(nil, &scriptedRand{}); err != ErrNoPlayers {
		t.Fatalf("expected ErrNoPlayers, got %v", err)
	}
}

func TestNextTurnRotation(t *testing.T) {
	ps := roster(11, 22, 33)
	// Holder at order k hands to order (k mod N) + 1.
	cases := []struct{ cur, want int64 }{{11, 22}, {22, 33}, {33, 11}}
	for _, tc := range cases {
		got, err := NextTurn(ps, tc.cur)
		if err != nil {
			t.Fatalf("NextTurn(%d): %v", tc.cur, err)
		}
		if got != tc.want {
			t.Fatalf("NextTurn(%d) = %d, want %d", tc.cur, got, tc.want)
		}
	}
}

func TestNextTurnNoActiveTurn(t *testing.T) {
	if _, err := NextTurn(roster(1, 2), 0); err != ErrNoActiveTurn {
		t.Fatalf("expected ErrNoActiveTurn, got %v", err)
	}
}

func TestNextTurnUnknownHolder(t *testing.T) {
	if _, err := NextTurn(roster(1, 2), 99); err != ErrNotInRoster {
		t.Fatalf("expected ErrNotInRoster, got %v", err)
	}
}

func TestExhausted(t *testing.T) {
	if Exhausted([]int{MaxTurns, MaxTurns - 1}) {
		t.Fatalf("player with guesses left must block exhaustion")
	}
	if !Exhausted([]int{MaxTurns, MaxTurns}) {
		t.Fatalf("all players at MaxTurns means exhausted")
	}
}

func TestFinishRecordsWinner(t *testing.T) {
	g := &Game{Status: StatusInProgress, TurnUserID: 7}
	if err := g.Finish(7); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if g.Status != StatusFinished || g.WinnerID != 7 || g.TurnUserID != 0 {
		t.Fatalf("unexpected game after finish: %+v", g)
	}
	if err := g.Finish(7); err != ErrTerminalState {
		t.Fatalf("finishing a finished game must be a state error, got %v", err)
	}
}

func TestCancelIsTerminal(t *testing.T) {
	g := &Game{Status: StatusPreGame}
	if err := g.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if g.Status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", g.Status)
	}
	if err := g.Cancel(); err != ErrTerminalState {
		t.Fatalf("cancelling a cancelled game must be a state error, got %v", err)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusPreGame, StatusInProgress, StatusFinished, StatusCancelled} {
		parsed, err := ParseStatus(s.String())
		if err != nil {
			t.Fatalf("ParseStatus(%s): %v", s, err)
		}
		if parsed != s {
			t.Fatalf("round trip mismatch: %s vs %s", parsed, s)
		}
	}
	if _, err := ParseStatus("NOPE"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestValidTransitions(t *testing.T) {
	allow := []struct{ from, to Status }{
		{StatusPreGame, StatusInProgress},
		{StatusPreGame, StatusCancelled},
		{StatusInProgress, StatusFinished},
		{StatusInProgress, StatusCancelled},
	}
	for _, tc := range allow {
		if !ValidTransition(tc.from, tc.to) {
			t.Fatalf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}
	deny := []struct{ from, to Status }{
		{StatusFinished, StatusInProgress},
		{StatusCancelled, StatusPreGame},
		{StatusInProgress, StatusPreGame},
		{StatusPreGame, StatusFinished},
	}
	for _, tc := range deny {
		if ValidTransition(tc.from, tc.to) {
			t.Fatalf("%s -> %s must be rejected", tc.from, tc.to)
		}
	}
}
