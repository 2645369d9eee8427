package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	DatabaseURL string
	RedisURL    string
	AuthBaseURL string

	TurnDurationSec  int
	QuitFreshnessSec int
	MaxPlayers       int
	MaxCurrentGames  int

	WordsSolutionsFile string
	WordsAllowedFile   string
	MessagesDir        string
}

// Load reads the configuration from the environment. DATABASE_URL and
// REDIS_URL are required; everything else has a default or is optional.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		TurnDurationSec:  120,
		QuitFreshnessSec: 300,
		MaxPlayers:       6,
		MaxCurrentGames:  3,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.AuthBaseURL = strings.TrimSpace(os.Getenv("AUTH_BASE_URL"))

	if v := strings.TrimSpace(os.Getenv("TURN_DURATION_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TurnDurationSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("QUIT_FRESHNESS_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.QuitFreshnessSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_PLAYERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPlayers = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_CURRENT_GAMES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxCurrentGames = n
		}
	}

	cfg.WordsSolutionsFile = strings.TrimSpace(os.Getenv("WORDS_SOLUTIONS_FILE"))
	cfg.WordsAllowedFile = strings.TrimSpace(os.Getenv("WORDS_ALLOWED_FILE"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
