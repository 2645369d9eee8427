package gamestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/crankword/crankword/internal/game"
)

// Memory is an in-memory Repository used by tests and when no database is
// configured. It mirrors the Postgres semantics, including the
// compare-and-swap in UpdateTurn and the atomic RemovePlayer.
type Memory struct {
	mu sync.RWMutex

	nextGameID  int64
	nextGuessID int64

	games   map[int64]*game.Game
	byCode  map[string]int64
	players map[int64][]game.Player // gameID -> roster
	guesses map[int64][]game.Guess  // gameID -> all guesses, insert order
}

func NewMemory() *Memory {
	return &Memory{
		games:   make(map[int64]*game.Game),
		byCode:  make(map[string]int64),
		players: make(map[int64][]game.Player),
		guesses: make(map[int64][]game.Guess),
	}
}

func (m *Memory) CreateGame(ctx context.Context, g *game.Game, owner game.Player) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextGameID++
	cp := *g
	cp.ID = m.nextGameID
	m.games[cp.ID] = &cp
	if cp.JoinCode != "" {
		m.byCode[cp.JoinCode] = cp.ID
	}
	m.players[cp.ID] = []game.Player{owner}
	return cp.ID, nil
}

func (m *Memory) Game(ctx context.Context, id int64) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *Memory) GameByJoinCode(ctx context.Context, code string) (*game.Game, error) {
	m.mu.RLock()
	id, ok := m.byCode[code]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.Game(ctx, id)
}

func (m *Memory) Players(ctx context.Context, gameID int64) ([]game.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roster := append([]game.Player(nil), m.players[gameID]...)
	sort.Slice(roster, func(i, j int) bool {
		if roster[i].TurnOrder != roster[j].TurnOrder {
			return roster[i].TurnOrder < roster[j].TurnOrder
		}
		return roster[i].UserID < roster[j].UserID
	})
	return roster, nil
}

func (m *Memory) AddPlayer(ctx context.Context, gameID int64, p game.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.players[gameID] {
		if existing.UserID == p.UserID {
			return ErrDuplicatePlayer
		}
	}
	m.players[gameID] = append(m.players[gameID], p)
	return nil
}

func (m *Memory) RemovePlayer(ctx context.Context, gameID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	roster := m.players[gameID]
	kept := roster[:0]
	for _, p := range roster {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	m.players[gameID] = kept

	all := m.guesses[gameID]
	keptGuesses := all[:0]
	for _, gu := range all {
		if gu.UserID != userID {
			keptGuesses = append(keptGuesses, gu)
		}
	}
	m.guesses[gameID] = keptGuesses
	return nil
}

func (m *Memory) CountGuesses(ctx context.Context, gameID, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, gu := range m.guesses[gameID] {
		if gu.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Guesses(ctx context.Context, gameID, userID int64) ([]game.Guess, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []game.Guess
	for _, gu := range m.guesses[gameID] {
		if gu.UserID == userID {
			out = append(out, gu)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuessNumber < out[j].GuessNumber })
	return out, nil
}

func (m *Memory) LatestGuessAt(ctx context.Context, gameID, userID int64) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest time.Time
	found := false
	for _, gu := range m.guesses[gameID] {
		if gu.UserID == userID && gu.Word != game.MissedGuessWord &&
			(!found || gu.CreatedAt.After(latest)) {
			latest = gu.CreatedAt
			found = true
		}
	}
	return latest, found, nil
}

func (m *Memory) InsertGuess(ctx context.Context, gu *game.Guess) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGuessID++
	cp := *gu
	cp.ID = m.nextGuessID
	m.guesses[cp.GameID] = append(m.guesses[cp.GameID], cp)
	return cp.ID, nil
}

func (m *Memory) SetTurnOrders(ctx context.Context, gameID int64, orders []game.TurnAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byUser := make(map[int64]int, len(orders))
	for _, o := range orders {
		byUser[o.UserID] = o.TurnOrder
	}
	roster := m.players[gameID]
	for i := range roster {
		if order, ok := byUser[roster[i].UserID]; ok {
			roster[i].TurnOrder = order
		}
	}
	return nil
}

func (m *Memory) UpdateTurn(ctx context.Context, gameID, fromUserID, toUserID int64, deadline time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	if g.TurnUserID != fromUserID {
		return ErrTurnConflict
	}
	g.TurnUserID = toUserID
	g.TurnDeadline = deadline
	return nil
}

func (m *Memory) UpdateStatus(ctx context.Context, gameID int64, status game.Status, winnerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	g.Status = status
	g.WinnerID = winnerID
	g.TurnUserID = 0
	g.TurnDeadline = time.Time{}
	return nil
}

func (m *Memory) CurrentGameCount(ctx context.Context, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for id, g := range m.games {
		if g.Status != game.StatusPreGame && g.Status != game.StatusInProgress {
			continue
		}
		for _, p := range m.players[id] {
			if p.UserID == userID {
				n++
				break
			}
		}
	}
	return n, nil
}

func (m *Memory) PlayerStats(ctx context.Context, userID int64) (*game.PlayerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stats game.PlayerStats
	for id, g := range m.games {
		member := false
		for _, p := range m.players[id] {
			if p.UserID == userID {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		switch g.Status {
		case game.StatusFinished:
			stats.Finished++
			if g.WinnerID == userID {
				stats.Wins++
			}
		case game.StatusCancelled:
			stats.Cancelled++
		}
	}
	return &stats, nil
}
