// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/polls/lifecycle"
	"github.com/danielhkuo/polls/models"
)

// Repository is the persistence the tally service needs.
type Repository interface {
	GetQuestion(ctx context.Context, id string) (models.Question, error)
	GetChoice(ctx context.Context, questionID, choiceID string) (models.Choice, error)
	ListChoices(ctx context.Context, questionID string) ([]models.Choice, error)
	// RecordVote upserts the vote and recounts every affected question
	// atomically, returning the recounted question IDs.
	RecordVote(ctx context.Context, v models.Vote, scope models.VoteScope) ([]string, error)
}

// Recorder observes accepted and rejected votes.
type Recorder interface {
	VoteCast(scope models.VoteScope, movedFrom int)
	VoteRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) VoteCast(models.VoteScope, int) {}
func (nopRecorder) VoteRejected(string)            {}

// Service casts votes against a Repository under one vote scope.
type Service struct {
	repo     Repository
	scope    models.VoteScope
	now      func() time.Time
	recorder Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecorder reports accepted and rejected votes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService builds a Service with the real clock and no recorder.
func NewService(repo Repository, scope models.VoteScope, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		scope:    scope,
		now:      time.Now,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scope returns the configured vote uniqueness scope.
func (s *Service) Scope() models.VoteScope {
	return s.scope
}

// Result is the state of a question after a vote.
type Result struct {
	Question models.Question
	Choices  []models.Choice
}

// TotalVotes sums vote_count over the choices.
func (r Result) TotalVotes() int {
	total := 0
	for _, c := range r.Choices {
		total += c.VoteCount
	}
	return total
}

// CastVote records userID's vote for choiceID on questionID and returns the
// recounted choices.
//
// Errors: ErrNotFound when the question does not exist, ErrInvalidSelection
// when choiceID is empty or not one of the question's choices,
// ErrNotPublishedYet or ErrVotingClosed outside the publication window, and
// ErrUnauthorized without a user.
func (s *Service) CastVote(ctx context.Context, questionID, choiceID, userID string) (Result, error) {
	if userID == "" {
		return Result{}, s.reject("unauthorized", models.ErrUnauthorized)
	}

	question, err := s.repo.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Result{}, s.reject("not_found", err)
		}
		return Result{}, err
	}

	if choiceID == "" {
		return Result{}, s.reject("invalid_selection", fmt.Errorf("no choice selected: %w", models.ErrInvalidSelection))
	}
	if _, err := s.repo.GetChoice(ctx, question.ID, choiceID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Result{}, s.reject("invalid_selection", fmt.Errorf("choice %s: %w", choiceID, models.ErrInvalidSelection))
		}
		return Result{}, err
	}

	now := s.now()
	if err := lifecycle.Check(question, now); err != nil {
		reason := "voting_closed"
		if errors.Is(err, models.ErrNotPublishedYet) {
			reason = "not_published"
		}
		return Result{}, s.reject(reason, err)
	}

	vote := models.Vote{
		ID:         uuid.NewString(),
		UserID:     userID,
		QuestionID: question.ID,
		ChoiceID:   choiceID,
		CastAt:     now,
	}
	recounted, err := s.repo.RecordVote(ctx, vote, s.scope)
	if err != nil {
		return Result{}, fmt.Errorf("failed to record vote: %w", err)
	}

	choices, err := s.repo.ListChoices(ctx, question.ID)
	if err != nil {
		return Result{}, err
	}

	s.recorder.VoteCast(s.scope, len(recounted)-1)
	slog.Info("vote recorded",
		"question_id", question.ID,
		"choice_id", choiceID,
		"user_id", userID,
		"scope", s.scope,
		"recounted", len(recounted),
	)

	return Result{Question: question, Choices: choices}, nil
}

func (s *Service) reject(reason string, err error) error {
	s.recorder.VoteRejected(reason)
	return err
}
