package coordinator

import (
	"errors"

	"github.com/crankword/crankword/internal/game"
	"github.com/crankword/crankword/internal/gamestore"
	"github.com/crankword/crankword/internal/turnlease"
	"github.com/crankword/crankword/pkg/gamedto"
)

var (
	ErrNotParticipant = errors.New("user is not in this game")
	ErrNotOwner       = errors.New("only the owner may do this")
	ErrTooManyGames   = errors.New("too many concurrent games")
)

// AsDomainError folds any coordinator error into the caller-facing shape.
// Validation outcomes never reach here; they are results, not errors.
func AsDomainError(err error) gamedto.DomainError {
	switch {
	case errors.Is(err, gamestore.ErrNotFound):
		return gamedto.DomainError{Code: "not_found", Message: "game not found"}
	case errors.Is(err, gamestore.ErrTurnConflict), errors.Is(err, turnlease.ErrHeld):
		return gamedto.DomainError{Code: "conflict", Message: "another request is updating this game", Retryable: true}
	case errors.Is(err, game.ErrTerminalState),
		errors.Is(err, game.ErrNoActiveTurn),
		errors.Is(err, game.ErrNoPlayers),
		errors.Is(err, game.ErrNotInRoster),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrTooManyGames):
		return gamedto.DomainError{Code: "state_error", Message: err.Error()}
	default:
		return gamedto.DomainError{Code: "internal", Message: "game service error"}
	}
}
