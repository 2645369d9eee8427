package coordinator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crankword/crankword/internal/game"
	"github.com/crankword/crankword/internal/obslog"
	"github.com/crankword/crankword/pkg/gamedto"
)

// SubmitGuess plays one word for userID. Rule violations (wrong turn, guess
// limit, unknown word, not a participant) come back as verdicts; errors are
// reserved for state violations and persistence failures.
func (c *Coordinator) SubmitGuess(ctx context.Context, gameID, userID int64, word string) (*gamedto.GuessResult, error) {
	token, err := c.lease.Acquire(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.lease.Release(ctx, gameID, token) }()

	g, err := c.repo.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Terminal() {
		return nil, game.ErrTerminalState
	}
	if g.Status != game.StatusInProgress || g.TurnUserID == 0 {
		return nil, game.ErrNoActiveTurn
	}

	roster, err := c.repo.Players(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if !game.HasPlayer(roster, userID) {
		return &gamedto.GuessResult{Verdict: gamedto.VerdictNotAParticipant}, nil
	}
	if g.TurnUserID != userID {
		return &gamedto.GuessResult{Verdict: gamedto.VerdictWrongTurn}, nil
	}

	count, err := c.repo.CountGuesses(ctx, gameID, userID)
	if err != nil {
		return nil, fmt.Errorf("count guesses: %w", err)
	}
	// A wrong-length word can never be scored, so it shares the guess-limit
	// verdict rather than getting a class of its own.
	if count >= game.MaxTurns || len(word) != len(g.Word) {
		return &gamedto.GuessResult{Verdict: gamedto.VerdictMaxGuesses}, nil
	}
	if !c.dict.IsRealWord(word) {
		return &gamedto.GuessResult{Verdict: gamedto.VerdictNotARealWord}, nil
	}

	word = strings.ToUpper(word)
	if _, err := c.repo.InsertGuess(ctx, &game.Guess{
		GameID:      gameID,
		UserID:      userID,
		Word:        word,
		GuessNumber: count + 1,
		CreatedAt:   c.clock.Now(),
	}); err != nil {
		return nil, fmt.Errorf("insert guess: %w", err)
	}

	scores := game.Score(word, g.Word)
	result := &gamedto.GuessResult{
		Verdict: gamedto.VerdictScored,
		Scores:  scoreStrings(scores),
	}

	if game.AllRightSpot(scores) {
		if err := g.Finish(userID); err != nil {
			return nil, err
		}
		if err := c.repo.UpdateStatus(ctx, gameID, game.StatusFinished, userID); err != nil {
			return nil, fmt.Errorf("finish game: %w", err)
		}
		result.IsWinner = true
		result.GameOver = true
		obslog.L().Info("game_finish",
			zap.Int64("game_id", gameID),
			zap.Int64("winner_id", userID),
			zap.Int("guess_number", count+1),
		)
		return result, nil
	}

	adv, err := c.advanceOrFinish(ctx, g, roster)
	if err != nil {
		return nil, err
	}
	result.GameOver = adv.gameOver
	result.NextTurnID = adv.nextID

	obslog.L().Info("guess_submit",
		zap.Int64("game_id", gameID),
		zap.Int64("user_id", userID),
		zap.Int("guess_number", count+1),
		zap.Bool("game_over", adv.gameOver),
	)
	return result, nil
}

type advanceOutcome struct {
	gameOver bool
	nextID   int64
}

// advanceOrFinish is the single shared turn-advancement procedure: rotate the
// turn to the next player with a fresh deadline, then finish the game with no
// winner when every player has used all their guesses. Both the guess path
// and the timeout path go through here; the compare-and-swap in UpdateTurn
// makes double advancement lose cleanly.
func (c *Coordinator) advanceOrFinish(ctx context.Context, g *game.Game, roster []game.Player) (*advanceOutcome, error) {
	next, err := game.NextTurn(roster, g.TurnUserID)
	if err != nil {
		return nil, err
	}
	deadline := c.turns.Deadline(c.clock.Now())
	if err := c.repo.UpdateTurn(ctx, g.ID, g.TurnUserID, next, deadline); err != nil {
		return nil, err
	}
	g.TurnUserID = next
	g.TurnDeadline = deadline

	counts := make([]int, len(roster))
	for i, p := range roster {
		n, err := c.repo.CountGuesses(ctx, g.ID, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("count guesses: %w", err)
		}
		counts[i] = n
	}
	if game.Exhausted(counts) {
		if err := g.Finish(0); err != nil {
			return nil, err
		}
		if err := c.repo.UpdateStatus(ctx, g.ID, game.StatusFinished, 0); err != nil {
			return nil, fmt.Errorf("finish game: %w", err)
		}
		obslog.L().Info("game_finish",
			zap.Int64("game_id", g.ID),
			zap.Int64("winner_id", 0),
		)
		return &advanceOutcome{gameOver: true}, nil
	}
	return &advanceOutcome{nextID: next}, nil
}

func scoreStrings(scores []game.LetterScore) []string {
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = string(s)
	}
	return out
}
