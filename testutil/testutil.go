// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/db"
	"github.com/danielhkuo/polls/models"
)

// TestPassword is the password of every user created by CreateTestUser
const TestPassword = "test-password"

// SetupTestDB creates a fresh database with the full schema.
// By default it is an in-memory SQLite database. With TEST_DATABASE_TYPE=postgres
// and TEST_DATABASE_URL set, each test gets its own Postgres schema instead.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	var conn *sql.DB
	if os.Getenv("TEST_DATABASE_TYPE") == db.TypePostgres && os.Getenv("TEST_DATABASE_URL") != "" {
		conn = setupPostgres(t, os.Getenv("TEST_DATABASE_URL"))
	} else {
		url := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
		var err error
		conn, err = db.Open(db.TypeSQLite, url)
		if err != nil {
			t.Fatalf("Failed to open test database: %v", err)
		}
		t.Cleanup(func() { conn.Close() })
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// setupPostgres opens url with search_path set to a throwaway schema
func setupPostgres(t *testing.T, url string) *sql.DB {
	t.Helper()

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := db.Open(db.TypePostgres, url)
	if err != nil {
		t.Fatalf("Failed to open Postgres: %v", err)
	}
	if _, err := admin.Exec(`CREATE SCHEMA ` + schema); err != nil {
		admin.Close()
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	conn, err := db.Open(db.TypePostgres, url+sep+"search_path="+schema)
	if err != nil {
		admin.Close()
		t.Fatalf("Failed to open Postgres schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		conn.Close()
		admin.Exec(`DROP SCHEMA ` + schema + ` CASCADE`)
		admin.Close()
	})
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file::memory:",
		DatabaseType:  db.TypeSQLite,
		SessionSecret: "test-session-secret",
		SessionTTL:    time.Hour,
		VoteScope:     models.VoteScopeGlobal,
	}
}

// CreateTestQuestion inserts a question published at now+publishIn that
// closes at now+closeIn, and returns its ID
func CreateTestQuestion(t *testing.T, db *sql.DB, text string, publishIn, closeIn time.Duration) string {
	t.Helper()

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO question (id, question_text, publish_at, close_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, text, now.Add(publishIn), now.Add(closeIn), now)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	return id
}

// CreateOpenQuestion inserts a question published two days ago that closes tomorrow
func CreateOpenQuestion(t *testing.T, db *sql.DB, text string) string {
	t.Helper()
	return CreateTestQuestion(t, db, text, -48*time.Hour, 24*time.Hour)
}

// AddTestChoice adds a choice to a question and returns the choice ID
func AddTestChoice(t *testing.T, db *sql.DB, questionID, text string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO choice (id, question_id, choice_text, vote_count, position)
		SELECT $1, $2, $3, 0, COALESCE(MAX(position), 0) + 1
		FROM choice WHERE question_id = $2
	`, id, questionID, text)
	if err != nil {
		t.Fatalf("Failed to create test choice: %v", err)
	}

	return id
}

// CreateTestUser inserts a user with TestPassword and returns it
func CreateTestUser(t *testing.T, db *sql.DB, username string, staff bool) models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		IsStaff:      staff,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = db.Exec(`
		INSERT INTO app_user (id, username, password_hash, is_staff, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Username, user.PasswordHash, user.IsStaff, user.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// IssueTestToken returns a session token for the user signed with the test config secret
func IssueTestToken(t *testing.T, user models.User) string {
	t.Helper()

	cfg := GetTestConfig()
	token, err := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL).Issue(user, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}

// VoteCounts returns choice ID -> vote_count for a question
func VoteCounts(t *testing.T, db *sql.DB, questionID string) map[string]int {
	t.Helper()

	rows, err := db.Query(`SELECT id, vote_count FROM choice WHERE question_id = $1`, questionID)
	if err != nil {
		t.Fatalf("Failed to query vote counts: %v", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			t.Fatalf("Failed to scan vote count: %v", err)
		}
		counts[id] = n
	}
	return counts
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// BearerHeader builds an Authorization header map for MakeRequest
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
