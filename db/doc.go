// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open selects the driver by database type:

	conn, err := db.Open(db.TypeSQLite, "file:polls.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

PostgreSQL uses github.com/lib/pq; SQLite uses modernc.org/sqlite with
foreign keys switched on so question deletion cascades to choices and votes.

# Tables

  - question: question_text, publish_at, close_at
  - choice: question_id (cascade), choice_text, vote_count, position
  - app_user: username (unique), password_hash, is_staff
  - vote: user_id, question_id, choice_id, UNIQUE(user_id, question_id)

vote_count is a cache recomputed from the vote table after every vote.

# Usage

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}
*/
package db
