// Command crankcheck probes the environment the game daemon needs: config,
// Postgres, Redis, word lists, message catalog, and (optionally) the external
// auth service.
package main

import (
	"context"
	"log"
	"time"

	appcfg "github.com/crankword/crankword/internal/config"
	"github.com/crankword/crankword/internal/authclient"
	"github.com/crankword/crankword/internal/gamestore"
	"github.com/crankword/crankword/internal/msgcat"
	"github.com/crankword/crankword/internal/turnlease"
	"github.com/crankword/crankword/internal/words"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	log.Printf("config ok: turn=%ds freshness=%ds players<=%d games<=%d",
		cfg.TurnDurationSec, cfg.QuitFreshnessSec, cfg.MaxPlayers, cfg.MaxCurrentGames)

	repo, err := gamestore.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Printf("postgres error: %v", err)
	} else {
		log.Printf("postgres ok")
		_ = repo.Close()
	}

	lease, err := turnlease.NewFromURL(cfg.RedisURL, 0)
	if err != nil {
		log.Printf("redis error: %v", err)
	} else {
		log.Printf("redis ok")
		_ = lease.Close()
	}

	dict, err := words.Load(nil)
	if err != nil {
		log.Printf("word list error: %v", err)
	} else {
		solutions, allowed := dict.Stats()
		log.Printf("words ok: %d solutions, %d allowed", solutions, allowed)
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Printf("message catalog error: %v", err)
	} else if !catalog.Has("error.internal") {
		log.Printf("message catalog missing error.internal")
	} else {
		log.Printf("message catalog ok")
	}

	if cfg.AuthBaseURL == "" {
		log.Printf("AUTH_BASE_URL not set; skipping auth probe")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := authclient.NewClient(cfg.AuthBaseURL, authclient.WithTimeout(5*time.Second))
	// A probe code should bounce with a rejection, which proves reachability.
	if _, err := client.VerifyAuthCode(ctx, "crankcheck-probe"); err != nil {
		log.Printf("auth probe: %v", err)
	} else {
		log.Printf("auth probe unexpectedly accepted the probe code")
	}
}
