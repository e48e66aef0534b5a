// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnvFile reads a .env file first (existing variables win), then
ParseFlags returns a Config struct with all settings:

	_ = cliparse.LoadEnvFile(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type (sqlite or postgres)
	-vote-scope       Vote uniqueness scope (global or question)
	-session-secret   Session token secret
	-session-ttl      Session lifetime in hours

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p (default 3318)
	DATABASE_URL      → -d (default file:polls.db for sqlite)
	DATABASE_TYPE     → -t (default sqlite)
	VOTE_SCOPE        → -vote-scope (default global)
	SESSION_SECRET    → -session-secret (required)
	SESSION_TTL_HOURS → -session-ttl (default 24)

ADMIN_USERNAME and ADMIN_PASSWORD are env-only. When both are set, a staff
user with those credentials is created at startup if it does not exist.

CLI flags take precedence over environment variables.
*/
package cliparse
