// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/polls/models"
)

// DefaultLatestLimit is the number of questions on the index.
const DefaultLatestLimit = 5

// Store persists questions, choices, votes and users over database/sql.
type Store struct {
	db *sql.DB
}

// New wraps an open connection pool.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool for health checks and metrics.
func (s *Store) DB() *sql.DB {
	return s.db
}

const questionColumns = `id, question_text, publish_at, close_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.Text, &q.PublishAt, &q.CloseAt, &q.CreatedAt)
	return q, err
}

// CreateQuestion inserts a question together with its initial choices.
func (s *Store) CreateQuestion(ctx context.Context, q models.Question, choices []models.Choice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO question (id, question_text, publish_at, close_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, q.ID, q.Text, q.PublishAt.UTC(), q.CloseAt.UTC(), q.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}

	for i, c := range choices {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO choice (id, question_id, choice_text, vote_count, position)
			VALUES ($1, $2, $3, 0, $4)
		`, c.ID, q.ID, c.Text, i+1)
		if err != nil {
			return fmt.Errorf("failed to insert choice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question: %w", err)
	}
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (models.Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx, `
		SELECT `+questionColumns+` FROM question WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, fmt.Errorf("question %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to query question: %w", err)
	}
	return q, nil
}

// DeleteQuestion removes a question; its choices and votes cascade.
func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM question WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("question %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// LatestPublished returns up to limit questions with publish_at <= now,
// newest first.
func (s *Store) LatestPublished(ctx context.Context, now time.Time, limit int) ([]models.Question, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+questionColumns+`
		FROM question
		WHERE publish_at <= $1
		ORDER BY publish_at DESC
		LIMIT $2
	`, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	return collectQuestions(rows)
}

// likeEscaper makes search text match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListQuestions returns all questions matching the filter, newest first.
func (s *Store) ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	var where []string
	var args []any

	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(filter.Search))+"%")
		where = append(where, fmt.Sprintf(`LOWER(question_text) LIKE $%d ESCAPE '\'`, len(args)))
	}
	if !filter.PublishedSince.IsZero() {
		args = append(args, filter.PublishedSince.UTC())
		where = append(where, fmt.Sprintf("publish_at >= $%d", len(args)))
	}

	query := `SELECT ` + questionColumns + ` FROM question`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY publish_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	return collectQuestions(rows)
}

func collectQuestions(rows *sql.Rows) ([]models.Question, error) {
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	return questions, nil
}

// AddChoice appends a choice after the question's existing choices.
func (s *Store) AddChoice(ctx context.Context, c models.Choice) error {
	if _, err := s.GetQuestion(ctx, c.QuestionID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO choice (id, question_id, choice_text, vote_count, position)
		SELECT $1, $2, $3, 0, COALESCE(MAX(position), 0) + 1
		FROM choice WHERE question_id = $2
	`, c.ID, c.QuestionID, c.Text)
	if err != nil {
		return fmt.Errorf("failed to insert choice: %w", err)
	}
	return nil
}

// ListChoices returns the question's choices in creation order.
func (s *Store) ListChoices(ctx context.Context, questionID string) ([]models.Choice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, choice_text, vote_count
		FROM choice
		WHERE question_id = $1
		ORDER BY position, id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query choices: %w", err)
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read choices: %w", err)
	}
	return choices, nil
}

// GetChoice looks up a choice among the question's choices.
func (s *Store) GetChoice(ctx context.Context, questionID, choiceID string) (models.Choice, error) {
	var c models.Choice
	err := s.db.QueryRowContext(ctx, `
		SELECT id, question_id, choice_text, vote_count
		FROM choice
		WHERE id = $1 AND question_id = $2
	`, choiceID, questionID).Scan(&c.ID, &c.QuestionID, &c.Text, &c.VoteCount)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Choice{}, fmt.Errorf("choice %s: %w", choiceID, models.ErrNotFound)
	}
	if err != nil {
		return models.Choice{}, fmt.Errorf("failed to query choice: %w", err)
	}
	return c, nil
}

// RecordVote stores the user's vote and recomputes vote_count for every
// choice of every question it touched, in one transaction. With
// VoteScopeGlobal the user's votes on other questions are removed first.
// It returns the IDs of the recounted questions.
//
// Every affected question row is locked in ID order before any vote row
// changes, so a recount always sees the votes committed by earlier
// transactions on the same question.
func (s *Store) RecordVote(ctx context.Context, v models.Vote, scope models.VoteScope) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	affected := []string{v.QuestionID}

	var previous []string
	if scope == models.VoteScopeGlobal {
		// One voter at a time, so the previous-vote set cannot change under us
		if _, err := tx.ExecContext(ctx, lockUserQuery, v.UserID); err != nil {
			return nil, fmt.Errorf("failed to lock user: %w", err)
		}
		previous, err = otherVotedQuestions(ctx, tx, v.UserID, v.QuestionID)
		if err != nil {
			return nil, err
		}
		affected = append(affected, previous...)
	}

	for _, questionID := range lockOrder(affected) {
		if _, err := tx.ExecContext(ctx, lockQuestionQuery, questionID); err != nil {
			return nil, fmt.Errorf("failed to lock question %s: %w", questionID, err)
		}
	}

	if len(previous) > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM vote WHERE user_id = $1 AND question_id <> $2
		`, v.UserID, v.QuestionID)
		if err != nil {
			return nil, fmt.Errorf("failed to remove previous votes: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (id, user_id, question_id, choice_id, cast_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, question_id)
		DO UPDATE SET choice_id = excluded.choice_id, cast_at = excluded.cast_at
	`, v.ID, v.UserID, v.QuestionID, v.ChoiceID, v.CastAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert vote: %w", err)
	}

	for _, questionID := range affected {
		_, err = tx.ExecContext(ctx, `
			UPDATE choice
			SET vote_count = (SELECT COUNT(*) FROM vote WHERE vote.choice_id = choice.id)
			WHERE question_id = $1
		`, questionID)
		if err != nil {
			return nil, fmt.Errorf("failed to recount votes: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}
	return affected, nil
}

// Row locks taken by RecordVote. The no-op SET leaves key columns alone so
// foreign key checks from other inserts are not blocked.
const (
	lockUserQuery     = `UPDATE app_user SET is_staff = is_staff WHERE id = $1`
	lockQuestionQuery = `UPDATE question SET question_text = question_text WHERE id = $1`
)

// lockOrder returns the question IDs sorted and deduplicated
func lockOrder(ids []string) []string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func otherVotedQuestions(ctx context.Context, tx *sql.Tx, userID, questionID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT question_id FROM vote WHERE user_id = $1 AND question_id <> $2
	`, userID, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query previous votes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan previous vote: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountVotes counts live votes on the question's choices.
func (s *Store) CountVotes(ctx context.Context, questionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote WHERE question_id = $1
	`, questionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

// VoteFor returns the user's live vote on the question.
func (s *Store) VoteFor(ctx context.Context, userID, questionID string) (models.Vote, error) {
	var v models.Vote
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, question_id, choice_id, cast_at
		FROM vote
		WHERE user_id = $1 AND question_id = $2
	`, userID, questionID).Scan(&v.ID, &v.UserID, &v.QuestionID, &v.ChoiceID, &v.CastAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, fmt.Errorf("vote: %w", models.ErrNotFound)
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query vote: %w", err)
	}
	return v, nil
}

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, username, password_hash, is_staff, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.PasswordHash, u.IsStaff, u.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", u.Username, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

const userColumns = `id, username, password_hash, is_staff, created_at`

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM app_user WHERE username = $1`, username)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
