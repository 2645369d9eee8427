// Package gamedto carries the outcome types the game core hands to its
// callers (the transport layer serializes them as-is).
package gamedto

import "time"

// Verdict distinguishes a scored guess from the soft validation outcomes.
// These are expected, frequent results, not errors.
type Verdict string

const (
	VerdictScored          Verdict = "scored"
	VerdictWrongTurn       Verdict = "wrong_turn"
	VerdictMaxGuesses      Verdict = "max_guesses"
	VerdictNotARealWord    Verdict = "not_a_real_word"
	VerdictNotAParticipant Verdict = "not_a_participant"
)

// GuessResult is the outcome of one guess submission. Scores are the
// snake_case letter classes in guess order; NextTurnID is zero once the game
// is over.
type GuessResult struct {
	Verdict    Verdict  `json:"verdict"`
	Scores     []string `json:"scores,omitempty"`
	IsWinner   bool     `json:"is_winner"`
	GameOver   bool     `json:"game_over"`
	NextTurnID int64    `json:"next_turn_id,omitempty"`
}

// ScoredGuess pairs a player's own guessed word with its scores.
type ScoredGuess struct {
	Word   string   `json:"word"`
	Scores []string `json:"scores"`
}

// WordlessScore is one guess's scores with the word redacted, safe to show
// to opponents.
type WordlessScore struct {
	Scores []string `json:"scores"`
}

// PlayerScores is the refresh projection for one roster entry.
type PlayerScores struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Scores   []WordlessScore `json:"scores"`
}

// RefreshResult is the poll outcome for any game status. TimedOut reports
// whether this poll force-advanced an expired turn.
type RefreshResult struct {
	GameStatus    string         `json:"game_status"`
	CurrentTurnID int64          `json:"current_turn_id,omitempty"`
	TurnDeadline  time.Time      `json:"turn_deadline,omitempty"`
	GameOver      bool           `json:"game_over"`
	WinnerID      int64          `json:"winner_id,omitempty"`
	Players       []PlayerScores `json:"players"`
	TimedOut      bool           `json:"timed_out,omitempty"`
}

// CreateResult reports a freshly created game.
type CreateResult struct {
	GameID   int64  `json:"game_id"`
	JoinCode string `json:"join_code"`
}

// JoinResult reports a join attempt; Reason is set on soft failure.
type JoinResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// StartResult reports a start attempt. FirstTurnID is the opening holder.
type StartResult struct {
	Success     bool   `json:"success"`
	Reason      string `json:"reason,omitempty"`
	FirstTurnID int64  `json:"first_turn_id,omitempty"`
}

// QuitResult reports a quit attempt; Reason is set on soft failure.
type QuitResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// CancelResult reports an owner cancellation.
type CancelResult struct {
	Success bool `json:"success"`
}
