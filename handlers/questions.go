// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/polls/lifecycle"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/tally"
)

// User-facing messages shared by the API and the HTML pages
const (
	MsgNoChoice = "You didn't select a choice."
)

func MsgVotingNotAllowed(questionID string) string {
	return fmt.Sprintf("Sorry, voting for Question %s is not allowed", questionID)
}

func MsgNotPublished(questionID string) string {
	return fmt.Sprintf("Sorry, Question %s not published yet", questionID)
}

// SummarizeQuestion evaluates the lifecycle of q at now for display
func SummarizeQuestion(q models.Question, now time.Time) models.QuestionSummary {
	return models.QuestionSummary{
		ID:                   q.ID,
		QuestionText:         q.Text,
		PublishAt:            q.PublishAt,
		CloseAt:              q.CloseAt,
		PublishedAgo:         humanize.RelTime(q.PublishAt, now, "ago", "from now"),
		State:                lifecycle.StateAt(q, now),
		WasPublishedRecently: lifecycle.WasPublishedRecently(q, now),
		CanVote:              lifecycle.CanVote(q, now),
	}
}

type QuestionHandler struct {
	store *store.Store
	now   func() time.Time
}

func NewQuestionHandler(st *store.Store) *QuestionHandler {
	return &QuestionHandler{store: st, now: time.Now}
}

// ListLatest handles GET /api/questions
// Returns the five most recently published questions (none from the future)
func (h *QuestionHandler) ListLatest(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	questions, err := h.store.LatestPublished(r.Context(), now, store.DefaultLatestLimit)
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	summaries := make([]models.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		summaries = append(summaries, SummarizeQuestion(q, now))
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// GetQuestion handles GET /api/questions/{id}
// Only questions open for voting are shown
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question id is required")
		return
	}

	question, ok := h.loadQuestion(w, r, questionID)
	if !ok {
		return
	}

	now := h.now()
	if !lifecycle.CanVote(question, now) {
		middleware.ErrorResponse(w, http.StatusForbidden, MsgVotingNotAllowed(questionID))
		return
	}

	choices, err := h.store.ListChoices(r.Context(), question.ID)
	if err != nil {
		slog.Error("failed to list choices", "error", err, "question_id", question.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	options := make([]models.ChoiceOption, 0, len(choices))
	for _, c := range choices {
		options = append(options, models.ChoiceOption{ID: c.ID, ChoiceText: c.Text})
	}

	middleware.JSONResponse(w, http.StatusOK, models.QuestionDetailResponse{
		Question: SummarizeQuestion(question, now),
		Choices:  options,
	})
}

// GetResults handles GET /api/questions/{id}/results
// Results are visible once the question is published, including after it closes
func (h *QuestionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question id is required")
		return
	}

	question, ok := h.loadQuestion(w, r, questionID)
	if !ok {
		return
	}

	now := h.now()
	if !lifecycle.IsPublished(question, now) {
		middleware.ErrorResponse(w, http.StatusForbidden, MsgNotPublished(questionID))
		return
	}

	choices, err := h.store.ListChoices(r.Context(), question.ID)
	if err != nil {
		slog.Error("failed to list choices", "error", err, "question_id", question.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Question:   SummarizeQuestion(question, now),
		Choices:    choices,
		TotalVotes: tally.Result{Choices: choices}.TotalVotes(),
	})
}

func (h *QuestionHandler) loadQuestion(w http.ResponseWriter, r *http.Request, questionID string) (models.Question, bool) {
	question, err := h.store.GetQuestion(r.Context(), questionID)
	if errors.Is(err, models.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return models.Question{}, false
	}
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Question{}, false
	}
	return question, true
}
