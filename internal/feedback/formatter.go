// Package feedback turns coordinator outcomes into the text shown to
// players. Soft validation outcomes render as benign messages; errors always
// collapse to the generic failure line with no state detail.
package feedback

import (
	"github.com/crankword/crankword/internal/msgcat"
	"github.com/crankword/crankword/pkg/gamedto"
)

const fallback = "Something went wrong. Please try again."

type Formatter struct {
	cat *msgcat.Catalog
}

func New(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

// Guess renders the feedback line for a guess submission.
func (f *Formatter) Guess(res *gamedto.GuessResult, username, word string) string {
	data := map[string]any{"Username": username, "Word": word}
	switch res.Verdict {
	case gamedto.VerdictWrongTurn:
		return f.render("guess.wrong_turn", data)
	case gamedto.VerdictMaxGuesses:
		return f.render("guess.max_guesses", data)
	case gamedto.VerdictNotARealWord:
		return f.render("guess.not_a_real_word", data)
	case gamedto.VerdictNotAParticipant:
		return f.render("guess.not_a_participant", data)
	case gamedto.VerdictScored:
		switch {
		case res.IsWinner:
			return f.render("guess.winner", data)
		case res.GameOver:
			return f.render("guess.game_over", data)
		default:
			return f.render("guess.scored", data)
		}
	default:
		return fallback
	}
}

// Join renders the feedback line for a join attempt. Soft-failure reason
// strings double as catalog keys.
func (f *Formatter) Join(res *gamedto.JoinResult, username string) string {
	if res.Success {
		return f.render("game.joined", map[string]any{"Username": username})
	}
	return f.render("join."+res.Reason, map[string]any{"Username": username})
}

// Quit renders the feedback line for a quit attempt.
func (f *Formatter) Quit(res *gamedto.QuitResult, username string) string {
	if res.Success {
		return f.render("quit.ok", map[string]any{"Username": username})
	}
	return f.render("quit."+res.Reason, map[string]any{"Username": username})
}

// Created announces a fresh lobby with its join code.
func (f *Formatter) Created(res *gamedto.CreateResult) string {
	return f.render("game.created", map[string]any{"JoinCode": res.JoinCode})
}

// Started announces the opening turn holder.
func (f *Formatter) Started(firstUsername string) string {
	return f.render("game.started", map[string]any{"Username": firstUsername})
}

// Cancelled announces an owner cancellation.
func (f *Formatter) Cancelled() string {
	return f.render("game.cancelled", nil)
}

// Timeout announces a forfeited turn.
func (f *Formatter) Timeout(stalledUsername string) string {
	return f.render("game.timeout", map[string]any{"Username": stalledUsername})
}

// Failure renders any error as the generic failure line.
func (f *Formatter) Failure() string {
	return f.render("error.internal", nil)
}

func (f *Formatter) render(key string, data any) string {
	s, err := f.cat.Render(key, data)
	if err != nil {
		return fallback
	}
	return s
}
