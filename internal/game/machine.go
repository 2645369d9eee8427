package game

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sort"
)

var (
	ErrNoPlayers     = errors.New("game has no players")
	ErrNoActiveTurn  = errors.New("no active turn")
	ErrTerminalState = errors.New("game already in a terminal state")
	ErrNotInRoster   = errors.New("current turn holder is not in the roster")
)

// RandomSource yields a uniform index in [0, n). Injectable so tests can
// script the shuffle.
type RandomSource interface {
	IntN(n int) int
}

type cryptoSource struct{}

func (cryptoSource) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// NewRandomSource returns the production crypto/rand-backed source.
func NewRandomSource() RandomSource { return cryptoSource{} }

// StartOrder shuffles the roster by repeatedly drawing a random remaining
// player, assigning turn order 1..N in draw order. The first active turn goes
// to the player drawn LAST (the one holding the highest turn order), not to
// turn order 1; rotation then wraps from the highest order back to 1.
//
// Returns the roster sorted by turn order and the first turn holder's id.
func StartOrder(roster []Player, rng RandomSource) ([]Player, int64, error) {
	if len(roster) == 0 {
		return nil, 0, ErrNoPlayers
	}

	remaining := append([]Player(nil), roster...)
	ordered := make([]Player, 0, len(remaining))
	var firstTurnID int64

	for len(remaining) > 0 {
		i := rng.IntN(len(remaining))
		p := remaining[i]
		p.TurnOrder = len(ordered) + 1
		ordered = append(ordered, p)
		firstTurnID = p.UserID
		remaining = append(remaining[:i], remaining[i+1:]...)
	}

	sort.Slice(ordered, func(i, j int) bool { return ordered[i].TurnOrder < ordered[j].TurnOrder })
	return ordered, firstTurnID, nil
}

// NextTurn returns the user id following currentID in turn order, wrapping
// from the last player back to the first. The roster must be sorted by turn
// order.
func NextTurn(roster []Player, currentID int64) (int64, error) {
	if currentID == 0 {
		return 0, ErrNoActiveTurn
	}
	if len(roster) == 0 {
		return 0, ErrNoPlayers
	}

	idx := -1
	for i, p := range roster {
		if p.UserID == currentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, ErrNotInRoster
	}

	next := idx + 1
	if next >= len(roster) {
		next = 0
	}
	return roster[next].UserID, nil
}

// Exhausted reports whether every player has used all their guesses. A game
// that is exhausted with no winner finishes with winner unset.
func Exhausted(guessCounts []int) bool {
	for _, c := range guessCounts {
		if c < MaxTurns {
			return false
		}
	}
	return true
}

// Finish transitions the game to FINISHED, recording the winner when one
// exists (0 means nobody guessed the word). Calling Finish on a terminal game
// is a caller error.
func (g *Game) Finish(winnerID int64) error {
	if g.Terminal() {
		return ErrTerminalState
	}
	g.Status = StatusFinished
	g.WinnerID = winnerID
	g.TurnUserID = 0
	return nil
}

// Cancel transitions the game to CANCELLED. Calling Cancel on a terminal game
// is a caller error.
func (g *Game) Cancel() error {
	if g.Terminal() {
		return ErrTerminalState
	}
	g.Status = StatusCancelled
	g.TurnUserID = 0
	return nil
}
