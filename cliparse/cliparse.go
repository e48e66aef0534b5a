// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/polls/models"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	SessionSecret string
	SessionTTL    time.Duration
	VoteScope     models.VoteScope
	AdminUsername string
	AdminPassword string
}

// LoadEnvFile loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var ttlHours int
	var scope string

	flagSet := flag.NewFlagSet("polls", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flagSet.IntVar(&cfg.Port, "p", 0, "Server port")
	flagSet.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flagSet.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Voting policy
	flagSet.StringVar(&scope, "vote-scope", "", "Vote uniqueness scope (global or question)")

	// Secrets (prefer env variables, but allow CLI for dev)
	flagSet.StringVar(&cfg.SessionSecret, "session-secret", "", "Session token secret (prefer env)")
	flagSet.IntVar(&ttlHours, "session-ttl", 0, "Session lifetime in hours")

	if err := flagSet.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("invalid database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:polls.db"
	}

	if scope == "" {
		scope = os.Getenv("VOTE_SCOPE")
	}
	if scope == "" {
		scope = string(models.VoteScopeGlobal)
	}
	voteScope, err := models.ParseVoteScope(scope)
	if err != nil {
		return Config{}, err
	}
	cfg.VoteScope = voteScope

	if ttlHours == 0 {
		if ttlStr := os.Getenv("SESSION_TTL_HOURS"); ttlStr != "" {
			ttlHours, err = strconv.Atoi(ttlStr)
			if err != nil || ttlHours <= 0 {
				return Config{}, errors.New("invalid SESSION_TTL_HOURS env variable")
			}
		} else {
			ttlHours = 24
		}
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	// Optional staff account created at startup
	cfg.AdminUsername = os.Getenv("ADMIN_USERNAME")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}
