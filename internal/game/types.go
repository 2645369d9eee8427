package game

import (
	"time"
)

const (
	// MaxTurns is the number of guesses each player gets per game.
	MaxTurns = 5
	// WordLength is the fixed solution word length.
	WordLength = 5
	// MissedGuessWord is the sentinel recorded when a turn times out.
	// Non-letters so it can never collide with a real guess.
	MissedGuessWord = "-----"
)

// Status represents a game lifecycle state.
type Status string

const (
	StatusPreGame    Status = "PRE_GAME"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusCancelled  Status = "CANCELLED"
)

// LetterScore classifies one guess letter against the solution.
type LetterScore string

const (
	RightSpot LetterScore = "right_spot"
	WrongSpot LetterScore = "wrong_spot"
	Dud       LetterScore = "dud"
)

// Game is the persisted state of one match. Zero WinnerID/TurnUserID mean
// "unset"; TurnUserID is set iff Status is IN_PROGRESS.
type Game struct {
	ID           int64     `json:"id"`
	JoinCode     string    `json:"join_code"`
	Word         string    `json:"-"`
	Status       Status    `json:"status"`
	OwnerID      int64     `json:"owner_id"`
	WinnerID     int64     `json:"winner_id,omitempty"`
	TurnUserID   int64     `json:"turn_user_id,omitempty"`
	TurnDeadline time.Time `json:"turn_deadline,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Open         bool      `json:"open"`
}

// Player is one roster entry. TurnOrder is 0 until the game starts, then a
// unique value in 1..N.
type Player struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	TurnOrder int    `json:"turn_order,omitempty"`
}

// Guess is one submitted (or missed) word. GuessNumber is 1-based and dense
// per (game, user).
type Guess struct {
	ID          int64     `json:"id"`
	GameID      int64     `json:"game_id"`
	UserID      int64     `json:"user_id"`
	Word        string    `json:"word"`
	GuessNumber int       `json:"guess_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// TurnAssignment pairs a player with their assigned turn order.
type TurnAssignment struct {
	UserID    int64
	TurnOrder int
}

// PlayerStats aggregates a user's finished-game record.
type PlayerStats struct {
	Wins      int `json:"wins"`
	Finished  int `json:"finished"`
	Cancelled int `json:"cancelled"`
}

// Terminal reports whether the game can no longer be mutated.
func (g *Game) Terminal() bool {
	return g.Status == StatusFinished || g.Status == StatusCancelled
}

// HasPlayer reports whether userID appears in the roster.
func HasPlayer(roster []Player, userID int64) bool {
	for _, p := range roster {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
