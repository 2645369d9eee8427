// Package coordinator drives the multiplayer word game: creating and joining
// games, starting the turn rotation, scoring guesses, force-advancing expired
// turns, and quit/cancel handling. Every call is one stateless unit of work
// against the repository; the per-game lease plus the repository's
// compare-and-swap turn update keep concurrent advancement single-winner.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crankword/crankword/internal/game"
	"github.com/crankword/crankword/internal/gamestore"
	"github.com/crankword/crankword/internal/obslog"
	"github.com/crankword/crankword/pkg/gamedto"
)

const (
	DefaultMaxPlayers      = 6
	DefaultMaxCurrentGames = 3
	DefaultTurnDuration    = 2 * time.Minute
	DefaultQuitFreshness   = 5 * time.Minute
)

// Soft failure reasons carried in Join/Start/Quit results.
const (
	ReasonAlreadyStarted   = "already_started"
	ReasonAlreadyJoined    = "already_joined"
	ReasonGameFull         = "game_full"
	ReasonTooManyGames     = "too_many_games"
	ReasonNotOwner         = "not_owner"
	ReasonNotEnoughPlayers = "not_enough_players"
	ReasonNotAParticipant  = "not_a_participant"
	ReasonOwnerMustCancel  = "owner_must_cancel"
	ReasonRecentlyActive   = "recently_active"
	ReasonGameOver         = "game_over"
)

// Dictionary validates guesses and draws solution words.
type Dictionary interface {
	IsRealWord(word string) bool
	RandomSolution() string
}

// Leaser serialises turn advancement per game. Acquire returns
// turnlease.ErrHeld while another caller holds the lease.
type Leaser interface {
	Acquire(ctx context.Context, gameID int64) (string, error)
	Release(ctx context.Context, gameID int64, token string) error
}

// Options tune the coordinator; zero values take the defaults above.
type Options struct {
	TurnDuration    time.Duration
	QuitFreshness   time.Duration
	MaxPlayers      int
	MaxCurrentGames int
	Clock           game.Clock
	Rand            game.RandomSource
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	repo  gamestore.Repository
	dict  Dictionary
	lease Leaser

	clock           game.Clock
	rng             game.RandomSource
	turns           game.TurnClock
	quitFreshness   time.Duration
	maxPlayers      int
	maxCurrentGames int
}

func New(repo gamestore.Repository, dict Dictionary, lease Leaser, opts Options) *Coordinator {
	if opts.TurnDuration <= 0 {
		opts.TurnDuration = DefaultTurnDuration
	}
	if opts.QuitFreshness <= 0 {
		opts.QuitFreshness = DefaultQuitFreshness
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = DefaultMaxPlayers
	}
	if opts.MaxCurrentGames <= 0 {
		opts.MaxCurrentGames = DefaultMaxCurrentGames
	}
	if opts.Clock == nil {
		opts.Clock = game.SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = game.NewRandomSource()
	}
	return &Coordinator{
		repo:            repo,
		dict:            dict,
		lease:           lease,
		clock:           opts.Clock,
		rng:             opts.Rand,
		turns:           game.TurnClock{Duration: opts.TurnDuration},
		quitFreshness:   opts.QuitFreshness,
		maxPlayers:      opts.MaxPlayers,
		maxCurrentGames: opts.MaxCurrentGames,
	}
}

// CreateGame opens a new PRE_GAME lobby owned by userID, who joins as the
// first player. The solution word is drawn here and never leaves the store.
func (c *Coordinator) CreateGame(ctx context.Context, userID int64, username string, open bool) (*gamedto.CreateResult, error) {
	n, err := c.repo.CurrentGameCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count current games: %w", err)
	}
	if n >= c.maxCurrentGames {
		return nil, ErrTooManyGames
	}

	g := &game.Game{
		JoinCode:  uuid.NewString(),
		Word:      c.dict.RandomSolution(),
		Status:    game.StatusPreGame,
		OwnerID:   userID,
		CreatedAt: c.clock.Now(),
		Open:      open,
	}
	id, err := c.repo.CreateGame(ctx, g, game.Player{UserID: userID, Username: username})
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	obslog.L().Info("game_create",
		zap.Int64("game_id", id),
		zap.Int64("owner_id", userID),
		zap.Bool("open", open),
	)
	return &gamedto.CreateResult{GameID: id, JoinCode: g.JoinCode}, nil
}

// Join adds userID to a PRE_GAME lobby. Every refusal is a soft reason, not
// an error.
func (c *Coordinator) Join(ctx context.Context, gameID, userID int64, username string) (*gamedto.JoinResult, error) {
	g, err := c.repo.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return c.join(ctx, g, userID, username)
}

// JoinByCode resolves a join code and joins the game it names.
func (c *Coordinator) JoinByCode(ctx context.Context, code string, userID int64, username string) (*gamedto.JoinResult, error) {
	g, err := c.repo.GameByJoinCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.join(ctx, g, userID, username)
}

func (c *Coordinator) join(ctx context.Context, g *game.Game, userID int64, username string) (*gamedto.JoinResult, error) {
	if g.Status != game.StatusPreGame {
		return &gamedto.JoinResult{Reason: ReasonAlreadyStarted}, nil
	}
	n, err := c.repo.CurrentGameCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count current games: %w", err)
	}
	if n >= c.maxCurrentGames {
		return &gamedto.JoinResult{Reason: ReasonTooManyGames}, nil
	}
	roster, err := c.repo.Players(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if len(roster) >= c.maxPlayers {
		return &gamedto.JoinResult{Reason: ReasonGameFull}, nil
	}
	err = c.repo.AddPlayer(ctx, g.ID, game.Player{UserID: userID, Username: username})
	if err == gamestore.ErrDuplicatePlayer {
		return &gamedto.JoinResult{Reason: ReasonAlreadyJoined}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("add player: %w", err)
	}

	obslog.L().Info("game_join", zap.Int64("game_id", g.ID), zap.Int64("user_id", userID))
	return &gamedto.JoinResult{Success: true}, nil
}

// Start shuffles the turn order and opens the first turn. Owner-only.
func (c *Coordinator) Start(ctx context.Context, gameID, userID int64) (*gamedto.StartResult, error) {
	g, err := c.repo.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != userID {
		return &gamedto.StartResult{Reason: ReasonNotOwner}, nil
	}
	if g.Status != game.StatusPreGame {
		return &gamedto.StartResult{Reason: ReasonAlreadyStarted}, nil
	}
	roster, err := c.repo.Players(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if len(roster) < 2 {
		return &gamedto.StartResult{Reason: ReasonNotEnoughPlayers}, nil
	}

	ordered, firstID, err := game.StartOrder(roster, c.rng)
	if err != nil {
		return nil, err
	}
	orders := make([]game.TurnAssignment, len(ordered))
	for i, p := range ordered {
		orders[i] = game.TurnAssignment{UserID: p.UserID, TurnOrder: p.TurnOrder}
	}
	if err := c.repo.SetTurnOrders(ctx, gameID, orders); err != nil {
		return nil, fmt.Errorf("set turn orders: %w", err)
	}
	if err := c.repo.UpdateStatus(ctx, gameID, game.StatusInProgress, 0); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	deadline := c.turns.Deadline(c.clock.Now())
	// From no holder to the opening holder; a concurrent Start loses here.
	if err := c.repo.UpdateTurn(ctx, gameID, 0, firstID, deadline); err != nil {
		return nil, err
	}

	obslog.L().Info("game_start",
		zap.Int64("game_id", gameID),
		zap.Int("players", len(ordered)),
		zap.Int64("first_turn_id", firstID),
	)
	return &gamedto.StartResult{Success: true, FirstTurnID: firstID}, nil
}

// Stats returns the caller's win/finish/cancel record.
func (c *Coordinator) Stats(ctx context.Context, userID int64) (*game.PlayerStats, error) {
	return c.repo.PlayerStats(ctx, userID)
}
