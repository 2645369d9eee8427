package gamestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/crankword/crankword/internal/game"
)

// Postgres is the production Repository. Status strings are converted to the
// enum at this boundary only.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (r *Postgres) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Postgres) CreateGame(ctx context.Context, g *game.Game, owner game.Player) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create game: %w", err)
	}
	defer tx.Rollback()

	const insertGame = `
		INSERT INTO games (join_code, word, game_status, owner_id, created_at, open)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err = tx.QueryRowContext(ctx, insertGame,
		g.JoinCode, g.Word, g.Status.String(), g.OwnerID, g.CreatedAt, g.Open,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}

	const insertOwner = `
		INSERT INTO game_users (game_id, user_id, username)
		VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertOwner, id, owner.UserID, owner.Username); err != nil {
		return 0, fmt.Errorf("insert owner roster row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create game: %w", err)
	}
	return id, nil
}

const gameColumns = `
	id, join_code, word, game_status, owner_id, winner_id,
	turn_user_id, turn_deadline, created_at, open`

func (r *Postgres) Game(ctx context.Context, id int64) (*game.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+gameColumns+` FROM games WHERE id = $1`, id)
	return scanGame(row)
}

func (r *Postgres) GameByJoinCode(ctx context.Context, code string) (*game.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+gameColumns+` FROM games WHERE join_code = $1`, strings.TrimSpace(code))
	return scanGame(row)
}

func scanGame(row *sql.Row) (*game.Game, error) {
	var (
		g        game.Game
		status   string
		winner   sql.NullInt64
		turnUser sql.NullInt64
		deadline sql.NullTime
	)
	err := row.Scan(&g.ID, &g.JoinCode, &g.Word, &status, &g.OwnerID,
		&winner, &turnUser, &deadline, &g.CreatedAt, &g.Open)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.Status, err = game.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.WinnerID = winner.Int64
	g.TurnUserID = turnUser.Int64
	if deadline.Valid {
		g.TurnDeadline = deadline.Time
	}
	return &g, nil
}

func (r *Postgres) Players(ctx context.Context, gameID int64) ([]game.Player, error) {
	const query = `
		SELECT user_id, username, COALESCE(turn_order, 0)
		FROM game_users
		WHERE game_id = $1
		ORDER BY turn_order ASC, user_id ASC`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	defer rows.Close()

	var players []game.Player
	for rows.Next() {
		var p game.Player
		if err := rows.Scan(&p.UserID, &p.Username, &p.TurnOrder); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *Postgres) AddPlayer(ctx context.Context, gameID int64, p game.Player) error {
	const query = `
		INSERT INTO game_users (game_id, user_id, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, user_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, gameID, p.UserID, p.Username)
	if err != nil {
		return fmt.Errorf("insert roster row: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicatePlayer
	}
	return nil
}

// RemovePlayer deletes the player's guesses and roster row together; a
// partial failure must never orphan a guess history.
func (r *Postgres) RemovePlayer(ctx context.Context, gameID, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove player: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM guesses WHERE game_id = $1 AND user_id = $2`, gameID, userID); err != nil {
		return fmt.Errorf("delete guesses: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM game_users WHERE game_id = $1 AND user_id = $2`, gameID, userID); err != nil {
		return fmt.Errorf("delete roster row: %w", err)
	}
	return tx.Commit()
}

func (r *Postgres) CountGuesses(ctx context.Context, gameID, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM guesses WHERE game_id = $1 AND user_id = $2`,
		gameID, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count guesses: %w", err)
	}
	return n, nil
}

func (r *Postgres) Guesses(ctx context.Context, gameID, userID int64) ([]game.Guess, error) {
	const query = `
		SELECT id, game_id, user_id, word, guess_number, created_at
		FROM guesses
		WHERE game_id = $1 AND user_id = $2
		ORDER BY guess_number ASC`

	rows, err := r.db.QueryContext(ctx, query, gameID, userID)
	if err != nil {
		return nil, fmt.Errorf("select guesses: %w", err)
	}
	defer rows.Close()

	var guesses []game.Guess
	for rows.Next() {
		var gu game.Guess
		if err := rows.Scan(&gu.ID, &gu.GameID, &gu.UserID, &gu.Word, &gu.GuessNumber, &gu.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan guess: %w", err)
		}
		guesses = append(guesses, gu)
	}
	return guesses, rows.Err()
}

func (r *Postgres) LatestGuessAt(ctx context.Context, gameID, userID int64) (time.Time, bool, error) {
	var at sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(created_at) FROM guesses WHERE game_id = $1 AND user_id = $2 AND word <> $3`,
		gameID, userID, game.MissedGuessWord).Scan(&at)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest guess: %w", err)
	}
	return at.Time, at.Valid, nil
}

func (r *Postgres) InsertGuess(ctx context.Context, gu *game.Guess) (int64, error) {
	const query = `
		INSERT INTO guesses (game_id, user_id, word, guess_number, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		gu.GameID, gu.UserID, gu.Word, gu.GuessNumber, gu.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert guess: %w", err)
	}
	return id, nil
}

func (r *Postgres) SetTurnOrders(ctx context.Context, gameID int64, orders []game.TurnAssignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set turn orders: %w", err)
	}
	defer tx.Rollback()

	for _, o := range orders {
		if _, err := tx.ExecContext(ctx,
			`UPDATE game_users SET turn_order = $1 WHERE game_id = $2 AND user_id = $3`,
			o.TurnOrder, gameID, o.UserID); err != nil {
			return fmt.Errorf("set turn order: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateTurn is the per-game serialization backstop: the WHERE clause only
// matches when fromUserID still holds the turn, so a concurrent advance
// leaves zero rows affected.
func (r *Postgres) UpdateTurn(ctx context.Context, gameID, fromUserID, toUserID int64, deadline time.Time) error {
	const query = `
		UPDATE games
		SET turn_user_id = NULLIF($1, 0), turn_deadline = $2
		WHERE id = $3 AND turn_user_id IS NOT DISTINCT FROM NULLIF($4, 0)`
	res, err := r.db.ExecContext(ctx, query, toUserID, deadline, gameID, fromUserID)
	if err != nil {
		return fmt.Errorf("update turn: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTurnConflict
	}
	return nil
}

func (r *Postgres) UpdateStatus(ctx context.Context, gameID int64, status game.Status, winnerID int64) error {
	const query = `
		UPDATE games
		SET game_status = $1, winner_id = NULLIF($2, 0),
		    turn_user_id = NULL, turn_deadline = NULL
		WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, status.String(), winnerID, gameID); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (r *Postgres) CurrentGameCount(ctx context.Context, userID int64) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM games g
		JOIN game_users gu ON g.id = gu.game_id
		WHERE gu.user_id = $1 AND g.game_status IN ($2, $3)`
	var n int
	err := r.db.QueryRowContext(ctx, query, userID,
		game.StatusPreGame.String(), game.StatusInProgress.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count current games: %w", err)
	}
	return n, nil
}

func (r *Postgres) PlayerStats(ctx context.Context, userID int64) (*game.PlayerStats, error) {
	const query = `
		SELECT
			COUNT(*) FILTER (WHERE g.game_status = $2 AND g.winner_id = gu.user_id),
			COUNT(*) FILTER (WHERE g.game_status = $2),
			COUNT(*) FILTER (WHERE g.game_status = $3)
		FROM games g
		JOIN game_users gu ON g.id = gu.game_id
		WHERE gu.user_id = $1`
	var stats game.PlayerStats
	err := r.db.QueryRowContext(ctx, query, userID,
		game.StatusFinished.String(), game.StatusCancelled.String()).
		Scan(&stats.Wins, &stats.Finished, &stats.Cancelled)
	if err != nil {
		return nil, fmt.Errorf("player stats: %w", err)
	}
	return &stats, nil
}
