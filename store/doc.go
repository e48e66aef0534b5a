// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store persists questions, choices, votes, and users with
// database/sql. Queries use $N placeholders, which both lib/pq and
// modernc.org/sqlite accept. Missing rows are reported as models.ErrNotFound.
package store
