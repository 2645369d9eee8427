package gamestore

import (
	"context"
	"errors"
	"time"

	"github.com/crankword/crankword/internal/game"
)

var (
	ErrNotFound = errors.New("game not found")
	// ErrTurnConflict means the turn row moved under us: another request
	// advanced the same turn first. The compare-and-swap in UpdateTurn is the
	// persistence-level backstop against double advancement.
	ErrTurnConflict    = errors.New("turn advanced concurrently")
	ErrDuplicatePlayer = errors.New("player already joined")
)

// Repository is the persistence contract the coordinator works against.
// RemovePlayer deletes a player's guesses and roster row as one transaction.
type Repository interface {
	CreateGame(ctx context.Context, g *game.Game, owner game.Player) (int64, error)
	Game(ctx context.Context, id int64) (*game.Game, error)
	GameByJoinCode(ctx context.Context, code string) (*game.Game, error)
	Players(ctx context.Context, gameID int64) ([]game.Player, error)
	AddPlayer(ctx context.Context, gameID int64, p game.Player) error
	RemovePlayer(ctx context.Context, gameID, userID int64) error

	CountGuesses(ctx context.Context, gameID, userID int64) (int, error)
	Guesses(ctx context.Context, gameID, userID int64) ([]game.Guess, error)
	// LatestGuessAt reports when the player last played a word of their own.
	// Forfeited turns are charged as sentinel guesses and do not count as
	// activity, so a stalled player can still quit.
	LatestGuessAt(ctx context.Context, gameID, userID int64) (time.Time, bool, error)
	InsertGuess(ctx context.Context, gu *game.Guess) (int64, error)

	SetTurnOrders(ctx context.Context, gameID int64, orders []game.TurnAssignment) error
	// UpdateTurn moves the turn from fromUserID to toUserID with a fresh
	// deadline, but only if fromUserID still holds it (0 means "no holder",
	// used when starting a game). Returns ErrTurnConflict otherwise.
	UpdateTurn(ctx context.Context, gameID, fromUserID, toUserID int64, deadline time.Time) error
	UpdateStatus(ctx context.Context, gameID int64, status game.Status, winnerID int64) error

	CurrentGameCount(ctx context.Context, userID int64) (int, error)
	PlayerStats(ctx context.Context, userID int64) (*game.PlayerStats, error)
}
