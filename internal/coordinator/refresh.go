package coordinator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/crankword/crankword/internal/game"
	"github.com/crankword/crankword/internal/obslog"
	"github.com/crankword/crankword/internal/turnlease"
	"github.com/crankword/crankword/pkg/gamedto"
)

// Refresh is the poll endpoint for a participant. It reports the game status,
// the current turn and deadline, and every player's guess scores with the
// guessed words redacted. When the owner polls an expired turn, the stalled
// player is charged a missed guess and the turn force-advances; TimedOut
// reports whether this particular call did that.
func (c *Coordinator) Refresh(ctx context.Context, gameID, userID int64) (*gamedto.RefreshResult, error) {
	g, err := c.repo.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	roster, err := c.repo.Players(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if !game.HasPlayer(roster, userID) {
		return nil, ErrNotParticipant
	}

	timedOut := false
	if g.Status == game.StatusInProgress && g.TurnUserID != 0 &&
		userID == g.OwnerID && c.turns.Expired(g.TurnDeadline, c.clock.Now()) {
		timedOut, err = c.forceAdvance(ctx, g)
		if err != nil {
			return nil, err
		}
	}

	players := make([]gamedto.PlayerScores, 0, len(roster))
	for _, p := range roster {
		guesses, err := c.repo.Guesses(ctx, gameID, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("load guesses: %w", err)
		}
		scores := make([]gamedto.WordlessScore, 0, len(guesses))
		for _, gu := range guesses {
			scores = append(scores, gamedto.WordlessScore{
				Scores: scoreStrings(game.Score(gu.Word, g.Word)),
			})
		}
		players = append(players, gamedto.PlayerScores{
			UserID:   p.UserID,
			Username: p.Username,
			Scores:   scores,
		})
	}

	return &gamedto.RefreshResult{
		GameStatus:    string(g.Status),
		CurrentTurnID: g.TurnUserID,
		TurnDeadline:  g.TurnDeadline,
		GameOver:      g.Terminal(),
		WinnerID:      g.WinnerID,
		Players:       players,
		TimedOut:      timedOut,
	}, nil
}

// forceAdvance charges the stalled player a missed guess and rotates the
// turn, under the per-game lease. Reports false without error when another
// caller is already advancing or got there first.
func (c *Coordinator) forceAdvance(ctx context.Context, g *game.Game) (bool, error) {
	token, err := c.lease.Acquire(ctx, g.ID)
	if errors.Is(err, turnlease.ErrHeld) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() { _ = c.lease.Release(ctx, g.ID, token) }()

	// Re-read under the lease: a racing call may have advanced already, and
	// a quit may have changed the roster.
	fresh, err := c.repo.Game(ctx, g.ID)
	if err != nil {
		return false, err
	}
	*g = *fresh
	if g.Status != game.StatusInProgress || g.TurnUserID == 0 ||
		!c.turns.Expired(g.TurnDeadline, c.clock.Now()) {
		return false, nil
	}
	roster, err := c.repo.Players(ctx, g.ID)
	if err != nil {
		return false, fmt.Errorf("load roster: %w", err)
	}

	// Validate the rotation before persisting anything so a bad holder never
	// leaves a guess behind.
	stalled := g.TurnUserID
	if _, err := game.NextTurn(roster, stalled); err != nil {
		return false, err
	}
	count, err := c.repo.CountGuesses(ctx, g.ID, stalled)
	if err != nil {
		return false, fmt.Errorf("count guesses: %w", err)
	}
	// An exhausted holder forfeits the turn without being charged past the
	// guess limit.
	if count < game.MaxTurns {
		if _, err := c.repo.InsertGuess(ctx, &game.Guess{
			GameID:      g.ID,
			UserID:      stalled,
			Word:        game.MissedGuessWord,
			GuessNumber: count + 1,
			CreatedAt:   c.clock.Now(),
		}); err != nil {
			return false, fmt.Errorf("insert missed guess: %w", err)
		}
	}

	adv, err := c.advanceOrFinish(ctx, g, roster)
	if err != nil {
		return false, err
	}

	obslog.L().Info("turn_timeout",
		zap.Int64("game_id", g.ID),
		zap.Int64("stalled_id", stalled),
		zap.Int64("next_turn_id", adv.nextID),
		zap.Bool("game_over", adv.gameOver),
	)
	return true, nil
}

// OwnGuesses returns the caller's guesses with words and scores, for their
// own board only.
func (c *Coordinator) OwnGuesses(ctx context.Context, gameID, userID int64) ([]gamedto.ScoredGuess, error) {
	g, err := c.repo.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	roster, err := c.repo.Players(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if !game.HasPlayer(roster, userID) {
		return nil, ErrNotParticipant
	}
	guesses, err := c.repo.Guesses(ctx, gameID, userID)
	if err != nil {
		return nil, fmt.Errorf("load guesses: %w", err)
	}
	out := make([]gamedto.ScoredGuess, 0, len(guesses))
	for _, gu := range guesses {
		out = append(out, gamedto.ScoredGuess{
			Word:   gu.Word,
			Scores: scoreStrings(game.Score(gu.Word, g.Word)),
		})
	}
	return out, nil
}

// Quit removes a non-owner player. Free while PRE_GAME; while IN_PROGRESS
// only after the player's own latest guess has aged past the freshness
// window. A quitting turn holder hands the turn on before leaving.
func (c *Coordinator) Quit(ctx context.Context, gameID, userID int64) (*gamedto.QuitResult, error) {
	g, err := c.repo.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	roster, err := c.repo.Players(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if !game.HasPlayer(roster, userID) {
		return &gamedto.QuitResult{Reason: ReasonNotAParticipant}, nil
	}
	if g.OwnerID == userID {
		return &gamedto.QuitResult{Reason: ReasonOwnerMustCancel}, nil
	}

	switch g.Status {
	case game.StatusPreGame:
		// Free leave before the game starts.
		if err := c.repo.RemovePlayer(ctx, gameID, userID); err != nil {
			return nil, fmt.Errorf("remove player: %w", err)
		}
	case game.StatusInProgress:
		reason, err := c.quitInProgress(ctx, gameID, userID)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			return &gamedto.QuitResult{Reason: reason}, nil
		}
	default:
		return &gamedto.QuitResult{Reason: ReasonGameOver}, nil
	}

	obslog.L().Info("player_quit", zap.Int64("game_id", gameID), zap.Int64("user_id", userID))
	return &gamedto.QuitResult{Success: true}, nil
}

// quitInProgress runs a mid-game quit entirely under the per-game lease, so a
// concurrent timeout forfeit cannot hand the turn to the departing player.
// Returns a non-empty reason when the quit is refused.
func (c *Coordinator) quitInProgress(ctx context.Context, gameID, userID int64) (string, error) {
	token, err := c.lease.Acquire(ctx, gameID)
	if err != nil {
		return "", err
	}
	defer func() { _ = c.lease.Release(ctx, gameID, token) }()

	// Re-read under the lease: the game may have finished or advanced since
	// the caller's first look.
	g, err := c.repo.Game(ctx, gameID)
	if err != nil {
		return "", err
	}
	if g.Terminal() {
		return ReasonGameOver, nil
	}
	roster, err := c.repo.Players(ctx, gameID)
	if err != nil {
		return "", fmt.Errorf("load roster: %w", err)
	}
	if !game.HasPlayer(roster, userID) {
		return ReasonNotAParticipant, nil
	}

	latest, found, err := c.repo.LatestGuessAt(ctx, gameID, userID)
	if err != nil {
		return "", fmt.Errorf("latest guess: %w", err)
	}
	if found && c.clock.Now().Sub(latest) < c.quitFreshness {
		return ReasonRecentlyActive, nil
	}

	if g.TurnUserID == userID {
		next, err := game.NextTurn(roster, userID)
		if err != nil {
			return "", err
		}
		deadline := c.turns.Deadline(c.clock.Now())
		if err := c.repo.UpdateTurn(ctx, gameID, userID, next, deadline); err != nil {
			return "", err
		}
	}
	if err := c.repo.RemovePlayer(ctx, gameID, userID); err != nil {
		return "", fmt.Errorf("remove player: %w", err)
	}
	return "", nil
}

// Cancel moves any live game to CANCELLED. Owner-only; cancelling a terminal
// game is a state error.
func (c *Coordinator) Cancel(ctx context.Context, gameID, userID int64) (*gamedto.CancelResult, error) {
	g, err := c.repo.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != userID {
		return nil, ErrNotOwner
	}
	if err := g.Cancel(); err != nil {
		return nil, err
	}
	if err := c.repo.UpdateStatus(ctx, gameID, game.StatusCancelled, 0); err != nil {
		return nil, fmt.Errorf("cancel game: %w", err)
	}
	obslog.L().Info("game_cancel", zap.Int64("game_id", gameID), zap.Int64("owner_id", userID))
	return &gamedto.CancelResult{Success: true}, nil
}
