// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the polls server.

Polls publishes questions on a schedule, lets signed-in users vote on one
choice, and shows running totals. Questions open at their publish time and
stop accepting votes at their close time; results stay visible afterwards.

# Starting the Server

The server reads a .env file if present, then environment variables or CLI
flags:

	SESSION_SECRET=change-me go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -session-secret change-me

# Configuration

Required settings:

  - SESSION_SECRET (-session-secret): HMAC key for session tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: file:polls.db)
  - SESSION_TTL_HOURS (-session-ttl): Token lifetime (default: 24)
  - VOTE_SCOPE (-vote-scope): global (one live vote per user) or question
  - ADMIN_USERNAME, ADMIN_PASSWORD: staff account created at startup

# Architecture

  - lifecycle: publication window rules (published, recent, can vote)
  - tally: vote casting and recounting
  - store: SQL persistence for questions, choices, votes, users
  - handlers: JSON API handlers
  - web: HTML pages
  - router: Route definitions using Go 1.22+ routing
  - middleware: logging, sessions, flash messages, JSON helpers, CORS
  - metrics: Prometheus collectors
  - models: domain and request/response types, sentinel errors
  - auth: password hashing and session tokens
  - db: driver selection and schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
