package gamestore

import (
	"context"
	"testing"
	"time"

	"github.com/crankword/crankword/internal/game"
)

func newTestGame(t *testing.T, repo *Memory) int64 {
	t.Helper()
	id, err := repo.CreateGame(context.Background(), &game.Game{
		JoinCode: "code-1",
		Word:     "CRANE",
		Status:   game.StatusPreGame,
		OwnerID:  1,
		Open:     true,
	}, game.Player{UserID: 1, Username: "owner"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return id
}

func TestMemoryCreateAndLookup(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	id := newTestGame(t, repo)

	g, err := repo.Game(ctx, id)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if g.Word != "CRANE" || g.Status != game.StatusPreGame {
		t.Fatalf("unexpected game: %+v", g)
	}

	byCode, err := repo.GameByJoinCode(ctx, "code-1")
	if err != nil {
		t.Fatalf("GameByJoinCode: %v", err)
	}
	if byCode.ID != id {
		t.Fatalf("join code resolved to game %d, want %d", byCode.ID, id)
	}

	if _, err := repo.Game(ctx, 999); err != ErrNotFound {
		t.Fatalf("missing game: got %v, want ErrNotFound", err)
	}
}

func TestMemoryAddPlayerDuplicate(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	id := newTestGame(t, repo)

	if err := repo.AddPlayer(ctx, id, game.Player{UserID: 2, Username: "p2"}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if err := repo.AddPlayer(ctx, id, game.Player{UserID: 2, Username: "p2"}); err != ErrDuplicatePlayer {
		t.Fatalf("duplicate add: got %v, want ErrDuplicatePlayer", err)
	}
}

func TestMemoryUpdateTurnCAS(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	id := newTestGame(t, repo)
	deadline := time.Now().Add(time.Minute)

	// First assignment: nobody holds the turn yet.
	if err := repo.UpdateTurn(ctx, id, 0, 1, deadline); err != nil {
		t.Fatalf("initial UpdateTurn: %v", err)
	}
	// A writer that still believes the turn is unassigned must lose.
	if err := repo.UpdateTurn(ctx, id, 0, 2, deadline); err != ErrTurnConflict {
		t.Fatalf("stale UpdateTurn: got %v, want ErrTurnConflict", err)
	}
	// The real holder advances normally.
	if err := repo.UpdateTurn(ctx, id, 1, 2, deadline); err != nil {
		t.Fatalf("advance: %v", err)
	}
	g, err := repo.Game(ctx, id)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if g.TurnUserID != 2 {
		t.Fatalf("turn holder = %d, want 2", g.TurnUserID)
	}
}

func TestMemoryRemovePlayerDropsGuesses(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	id := newTestGame(t, repo)
	if err := repo.AddPlayer(ctx, id, game.Player{UserID: 2, Username: "p2"}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if _, err := repo.InsertGuess(ctx, &game.Guess{GameID: id, UserID: 2, Word: "SLATE", GuessNumber: i, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("InsertGuess: %v", err)
		}
	}
	if _, err := repo.InsertGuess(ctx, &game.Guess{GameID: id, UserID: 1, Word: "CRANE", GuessNumber: 1, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("InsertGuess: %v", err)
	}

	if err := repo.RemovePlayer(ctx, id, 2); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	roster, err := repo.Players(ctx, id)
	if err != nil {
		t.Fatalf("Players: %v", err)
	}
	if len(roster) != 1 || roster[0].UserID != 1 {
		t.Fatalf("roster after removal: %+v", roster)
	}
	n, err := repo.CountGuesses(ctx, id, 2)
	if err != nil {
		t.Fatalf("CountGuesses: %v", err)
	}
	if n != 0 {
		t.Fatalf("removed player still has %d guesses", n)
	}
	if n, _ = repo.CountGuesses(ctx, id, 1); n != 1 {
		t.Fatalf("owner guesses = %d, want 1", n)
	}
}

func TestMemoryLatestGuessAt(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	id := newTestGame(t, repo)

	if _, found, err := repo.LatestGuessAt(ctx, id, 1); err != nil || found {
		t.Fatalf("no guesses yet: found=%v err=%v", found, err)
	}

	early := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(3 * time.Minute)
	for i, ts := range []time.Time{early, late} {
		if _, err := repo.InsertGuess(ctx, &game.Guess{GameID: id, UserID: 1, Word: "SLATE", GuessNumber: i + 1, CreatedAt: ts}); err != nil {
			t.Fatalf("InsertGuess: %v", err)
		}
	}
	got, found, err := repo.LatestGuessAt(ctx, id, 1)
	if err != nil || !found {
		t.Fatalf("LatestGuessAt: found=%v err=%v", found, err)
	}
	if !got.Equal(late) {
		t.Fatalf("latest = %v, want %v", got, late)
	}

	// Forfeited turns are charged as sentinel guesses and never count as
	// activity.
	missed := late.Add(3 * time.Minute)
	if _, err := repo.InsertGuess(ctx, &game.Guess{GameID: id, UserID: 1, Word: game.MissedGuessWord, GuessNumber: 3, CreatedAt: missed}); err != nil {
		t.Fatalf("InsertGuess: %v", err)
	}
	got, found, err = repo.LatestGuessAt(ctx, id, 1)
	if err != nil || !found {
		t.Fatalf("LatestGuessAt after forfeit: found=%v err=%v", found, err)
	}
	if !got.Equal(late) {
		t.Fatalf("latest = %v, want %v (forfeit must not count)", got, late)
	}
}

func TestMemorySetTurnOrders(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	id := newTestGame(t, repo)
	if err := repo.AddPlayer(ctx, id, game.Player{UserID: 2, Username: "p2"}); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	err := repo.SetTurnOrders(ctx, id, []game.TurnAssignment{
		{UserID: 2, TurnOrder: 1},
		{UserID: 1, TurnOrder: 2},
	})
	if err != nil {
		t.Fatalf("SetTurnOrders: %v", err)
	}
	roster, err := repo.Players(ctx, id)
	if err != nil {
		t.Fatalf("Players: %v", err)
	}
	if roster[0].UserID != 2 || roster[1].UserID != 1 {
		t.Fatalf("roster not ordered by turn: %+v", roster)
	}
}

func TestMemoryStatusAndStats(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()

	won := newTestGame(t, repo)
	if err := repo.UpdateStatus(ctx, won, game.StatusFinished, 1); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	lost, err := repo.CreateGame(ctx, &game.Game{JoinCode: "code-2", Word: "SLATE", Status: game.StatusPreGame, OwnerID: 1}, game.Player{UserID: 1})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := repo.UpdateStatus(ctx, lost, game.StatusCancelled, 0); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	active, err := repo.CreateGame(ctx, &game.Game{JoinCode: "code-3", Word: "SLATE", Status: game.StatusInProgress, OwnerID: 1}, game.Player{UserID: 1})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	_ = active

	g, err := repo.Game(ctx, won)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if g.TurnUserID != 0 || !g.TurnDeadline.IsZero() {
		t.Fatalf("terminal game retains turn state: %+v", g)
	}

	stats, err := repo.PlayerStats(ctx, 1)
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	if stats.Wins != 1 || stats.Finished != 1 || stats.Cancelled != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	n, err := repo.CurrentGameCount(ctx, 1)
	if err != nil {
		t.Fatalf("CurrentGameCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("current games = %d, want 1", n)
	}
}
