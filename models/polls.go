// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultVotingPeriod is how long a question stays open when no close time is given.
const DefaultVotingPeriod = 24 * time.Hour

// MaxTextLength bounds question and choice text.
const MaxTextLength = 200

// Question lifecycle states
const (
	StateFuture = "future"
	StateOpen   = "open"
	StateClosed = "closed"
)

type VoteScope string

// Vote uniqueness scopes
const (
	// VoteScopeGlobal keeps at most one live vote per user across all questions.
	VoteScopeGlobal VoteScope = "global"
	// VoteScopeQuestion keeps one vote per user per question.
	VoteScopeQuestion VoteScope = "question"
)

// ParseVoteScope accepts "global" or "question".
func ParseVoteScope(s string) (VoteScope, error) {
	switch VoteScope(s) {
	case VoteScopeGlobal, VoteScopeQuestion:
		return VoteScope(s), nil
	}
	return "", fmt.Errorf("%w: unknown vote scope %q", ErrInvalidInput, s)
}

// Question is a poll open for votes between PublishAt and CloseAt.
type Question struct {
	ID        string    `json:"id"`
	Text      string    `json:"question_text"`
	PublishAt time.Time `json:"publish_at"`
	CloseAt   time.Time `json:"close_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (q Question) String() string { return q.Text }

// NewQuestion builds a question with a fresh ID. A zero closeAt defaults to
// DefaultVotingPeriod after now, evaluated per call.
func NewQuestion(text string, publishAt, closeAt, now time.Time) (Question, error) {
	if text == "" || len([]rune(text)) > MaxTextLength {
		return Question{}, fmt.Errorf("%w: question text must be 1-%d characters", ErrInvalidInput, MaxTextLength)
	}
	if publishAt.IsZero() {
		publishAt = now
	}
	if closeAt.IsZero() {
		closeAt = now.Add(DefaultVotingPeriod)
	}
	if closeAt.Before(publishAt) {
		return Question{}, fmt.Errorf("%w: close_at is before publish_at", ErrInvalidInput)
	}

	return Question{
		ID:        uuid.NewString(),
		Text:      text,
		PublishAt: publishAt.UTC(),
		CloseAt:   closeAt.UTC(),
		CreatedAt: now.UTC(),
	}, nil
}

// Choice is one answer to a question with its recounted vote total.
type Choice struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"choice_text"`
	VoteCount  int    `json:"vote_count"`
}

func (c Choice) String() string { return c.Text }

// NewChoice builds a choice with a fresh ID and no votes.
func NewChoice(questionID, text string) (Choice, error) {
	if text == "" || len([]rune(text)) > MaxTextLength {
		return Choice{}, fmt.Errorf("%w: choice text must be 1-%d characters", ErrInvalidInput, MaxTextLength)
	}
	return Choice{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		Text:       text,
	}, nil
}

// Vote is a user's live selection on a question.
type Vote struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	ChoiceID   string    `json:"choice_id"`
	CastAt     time.Time `json:"cast_at"`
}

// User is an account that can vote; staff can also manage questions.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuestionFilter narrows the admin question list.
type QuestionFilter struct {
	Search         string
	PublishedSince time.Time
	Limit          int
}
