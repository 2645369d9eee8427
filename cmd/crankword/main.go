// Command crankword wires the game core together and serves it over a plain
// line-oriented console, one command per line. The console doubles as the
// operational smoke surface; a network transport sits in a separate service
// that consumes this module.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crankword/crankword/internal/authclient"
	appcfg "github.com/crankword/crankword/internal/config"
	"github.com/crankword/crankword/internal/coordinator"
	"github.com/crankword/crankword/internal/feedback"
	"github.com/crankword/crankword/internal/game"
	"github.com/crankword/crankword/internal/gamestore"
	"github.com/crankword/crankword/internal/msgcat"
	"github.com/crankword/crankword/internal/obslog"
	"github.com/crankword/crankword/internal/turnlease"
	"github.com/crankword/crankword/internal/words"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	repo, err := gamestore.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	defer func() { _ = repo.Close() }()

	lease, err := turnlease.NewFromURL(cfg.RedisURL, 0)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	defer func() { _ = lease.Close() }()

	dict, err := words.Load(nil)
	if err != nil {
		log.Fatalf("word list init error: %v", err)
	}
	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("message catalog init error: %v", err)
	}

	app := &console{
		coord: coordinator.New(repo, dict, lease, coordinator.Options{
			TurnDuration:    time.Duration(cfg.TurnDurationSec) * time.Second,
			QuitFreshness:   time.Duration(cfg.QuitFreshnessSec) * time.Second,
			MaxPlayers:      cfg.MaxPlayers,
			MaxCurrentGames: cfg.MaxCurrentGames,
			Clock:           game.SystemClock{},
		}),
		format: feedback.New(catalog),
	}
	if cfg.AuthBaseURL != "" {
		app.auth = authclient.NewClient(cfg.AuthBaseURL)
	}

	solutions, allowed := dict.Stats()
	obslog.L().Info("crankword_up",
		zap.Int("solutions", solutions),
		zap.Int("allowed_words", allowed),
		zap.Int("turn_duration_sec", cfg.TurnDurationSec),
		zap.Int("max_players", cfg.MaxPlayers),
	)

	app.run(os.Stdin, os.Stdout)
	obslog.L().Info("crankword_down")
}

type console struct {
	coord  *coordinator.Coordinator
	format *feedback.Formatter
	auth   *authclient.Client

	userID   int64
	username string
}

func (c *console) run(in *os.File, out *os.File) {
	fmt.Fprintln(out, "crankword console; 'help' lists commands")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit-console" {
			return
		}
		fmt.Fprintln(out, c.dispatch(line))
	}
}

func (c *console) dispatch(line string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	args := strings.Fields(line)
	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "help":
		return strings.Join([]string{
			"login <code> | as <user_id> <username>",
			"create [open|closed]",
			"join <game_id> | joincode <code>",
			"start <game_id>",
			"guess <game_id> <word>",
			"refresh <game_id>",
			"board <game_id>",
			"quit <game_id>",
			"cancel <game_id>",
			"stats",
		}, "\n")
	case "login":
		if c.auth == nil {
			return "AUTH_BASE_URL not configured; use 'as <user_id> <username>'"
		}
		if len(args) != 1 {
			return "usage: login <code>"
		}
		id, err := c.auth.VerifyAuthCode(ctx, args[0])
		if err != nil {
			return c.fail(err)
		}
		c.userID, c.username = id.UserID, id.Username
		return fmt.Sprintf("logged in as %s (%d)", c.username, c.userID)
	case "as":
		if len(args) != 2 {
			return "usage: as <user_id> <username>"
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return "user_id must be a number"
		}
		c.userID, c.username = id, args[1]
		return fmt.Sprintf("acting as %s (%d)", c.username, c.userID)
	}

	if c.userID == 0 {
		return "log in first ('login <code>' or 'as <user_id> <username>')"
	}

	switch cmd {
	case "create":
		open := len(args) == 0 || args[0] != "closed"
		res, err := c.coord.CreateGame(ctx, c.userID, c.username, open)
		if err != nil {
			return c.fail(err)
		}
		return fmt.Sprintf("game %d\n%s", res.GameID, c.format.Created(res))
	case "join":
		id, ok := parseID(args)
		if !ok {
			return "usage: join <game_id>"
		}
		res, err := c.coord.Join(ctx, id, c.userID, c.username)
		if err != nil {
			return c.fail(err)
		}
		return c.format.Join(res, c.username)
	case "joincode":
		if len(args) != 1 {
			return "usage: joincode <code>"
		}
		res, err := c.coord.JoinByCode(ctx, args[0], c.userID, c.username)
		if err != nil {
			return c.fail(err)
		}
		return c.format.Join(res, c.username)
	case "start":
		id, ok := parseID(args)
		if !ok {
			return "usage: start <game_id>"
		}
		res, err := c.coord.Start(ctx, id, c.userID)
		if err != nil {
			return c.fail(err)
		}
		if !res.Success {
			return "cannot start: " + res.Reason
		}
		return fmt.Sprintf("started; first turn: user %d", res.FirstTurnID)
	case "guess":
		if len(args) != 2 {
			return "usage: guess <game_id> <word>"
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return "game_id must be a number"
		}
		res, err := c.coord.SubmitGuess(ctx, id, c.userID, args[1])
		if err != nil {
			return c.fail(err)
		}
		text := c.format.Guess(res, c.username, strings.ToUpper(args[1]))
		if len(res.Scores) > 0 {
			text += "\n" + strings.Join(res.Scores, " ")
		}
		return text
	case "refresh":
		id, ok := parseID(args)
		if !ok {
			return "usage: refresh <game_id>"
		}
		res, err := c.coord.Refresh(ctx, id, c.userID)
		if err != nil {
			return c.fail(err)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "status=%s turn=%d game_over=%v", res.GameStatus, res.CurrentTurnID, res.GameOver)
		if res.TimedOut {
			b.WriteString("\n" + c.format.Timeout(fmt.Sprintf("user %d", res.CurrentTurnID)))
		}
		for _, p := range res.Players {
			fmt.Fprintf(&b, "\n%s: %d guesses", p.Username, len(p.Scores))
		}
		return b.String()
	case "board":
		id, ok := parseID(args)
		if !ok {
			return "usage: board <game_id>"
		}
		own, err := c.coord.OwnGuesses(ctx, id, c.userID)
		if err != nil {
			return c.fail(err)
		}
		var b strings.Builder
		for _, g := range own {
			fmt.Fprintf(&b, "%s  %s\n", g.Word, strings.Join(g.Scores, " "))
		}
		if b.Len() == 0 {
			return "no guesses yet"
		}
		return strings.TrimRight(b.String(), "\n")
	case "quit":
		id, ok := parseID(args)
		if !ok {
			return "usage: quit <game_id>"
		}
		res, err := c.coord.Quit(ctx, id, c.userID)
		if err != nil {
			return c.fail(err)
		}
		return c.format.Quit(res, c.username)
	case "cancel":
		id, ok := parseID(args)
		if !ok {
			return "usage: cancel <game_id>"
		}
		if _, err := c.coord.Cancel(ctx, id, c.userID); err != nil {
			return c.fail(err)
		}
		return c.format.Cancelled()
	case "stats":
		stats, err := c.coord.Stats(ctx, c.userID)
		if err != nil {
			return c.fail(err)
		}
		return fmt.Sprintf("wins=%d finished=%d cancelled=%d", stats.Wins, stats.Finished, stats.Cancelled)
	default:
		return "unknown command; 'help' lists commands"
	}
}

func (c *console) fail(err error) string {
	de := coordinator.AsDomainError(err)
	obslog.L().Warn("console_command_failed", zap.String("code", de.Code), zap.Error(err))
	if de.Code == "internal" {
		return c.format.Failure()
	}
	return de.Message
}

func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
