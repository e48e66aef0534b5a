// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/tally"
)

type VotingHandler struct {
	tally *tally.Service
	now   func() time.Time
}

func NewVotingHandler(svc *tally.Service) *VotingHandler {
	return &VotingHandler{tally: svc, now: time.Now}
}

// Vote handles POST /api/questions/{id}/vote
// Requires an authenticated caller (see middleware.RequireUser)
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question id is required")
		return
	}

	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	// An empty body is the same as selecting nothing
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.tally.CastVote(r.Context(), questionID, req.ChoiceID, claims.UserID)
	if err != nil {
		status, message := VoteErrorStatus(err, questionID)
		if status == http.StatusInternalServerError {
			slog.Error("failed to cast vote", "error", err, "question_id", questionID)
		}
		middleware.ErrorResponse(w, status, message)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResultsResponse{
		Question:   SummarizeQuestion(result.Question, h.now()),
		Choices:    result.Choices,
		TotalVotes: result.TotalVotes(),
	})
}

// VoteErrorStatus maps a CastVote error to an HTTP status and message
func VoteErrorStatus(err error, questionID string) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidSelection):
		return http.StatusBadRequest, MsgNoChoice
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Question not found"
	case errors.Is(err, models.ErrNotPublishedYet):
		return http.StatusConflict, MsgNotPublished(questionID)
	case errors.Is(err, models.ErrVotingClosed):
		return http.StatusConflict, MsgVotingNotAllowed(questionID)
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication required"
	default:
		return http.StatusInternalServerError, "Failed to record vote"
	}
}
