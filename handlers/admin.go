// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
)

// AdminHandler serves the staff-only question management endpoints
type AdminHandler struct {
	store *store.Store
	now   func() time.Time
}

func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st, now: time.Now}
}

// ListQuestions handles GET /api/admin/questions
// Query parameters: q (text search), published_since (RFC 3339), limit
func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.QuestionFilter{Search: query.Get("q")}

	if since := query.Get("published_since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "published_since must be an RFC 3339 timestamp")
			return
		}
		filter.PublishedSince = t
	}

	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	questions, err := h.store.ListQuestions(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := h.now()
	summaries := make([]models.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		summaries = append(summaries, SummarizeQuestion(q, now))
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// CreateQuestion handles POST /api/admin/questions
// Omitted publish_at means now; omitted close_at means one voting period after creation
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuestionRequest
	if msg, ok := middleware.ParseAndValidate(r, &req); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	var publishAt, closeAt time.Time
	if req.PublishAt != nil {
		publishAt = *req.PublishAt
	}
	if req.CloseAt != nil {
		closeAt = *req.CloseAt
	}

	question, err := models.NewQuestion(req.QuestionText, publishAt, closeAt, h.now())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	choices := make([]models.Choice, 0, len(req.Choices))
	choiceIDs := make([]string, 0, len(req.Choices))
	for _, text := range req.Choices {
		choice, err := models.NewChoice(question.ID, text)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		choices = append(choices, choice)
		choiceIDs = append(choiceIDs, choice.ID)
	}

	if err := h.store.CreateQuestion(r.Context(), question, choices); err != nil {
		slog.Error("failed to create question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	slog.Info("question created", "question_id", question.ID, "choices", len(choices))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateQuestionResponse{
		QuestionID: question.ID,
		ChoiceIDs:  choiceIDs,
	})
}

// DeleteQuestion handles DELETE /api/admin/questions/{id}
// Choices and votes go with it
func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	err := h.store.DeleteQuestion(r.Context(), questionID)
	if errors.Is(err, models.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete question", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete question")
		return
	}

	slog.Info("question deleted", "question_id", questionID)
	w.WriteHeader(http.StatusNoContent)
}

// AddChoice handles POST /api/admin/questions/{id}/choices
func (h *AdminHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")

	var req models.AddChoiceRequest
	if msg, ok := middleware.ParseAndValidate(r, &req); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	choice, err := models.NewChoice(questionID, req.ChoiceText)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.store.AddChoice(r.Context(), choice)
	if errors.Is(err, models.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to add choice", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add choice")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.AddChoiceResponse{ChoiceID: choice.ID})
}
