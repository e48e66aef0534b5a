// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/testutil"
)

func TestListLatest(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, h *QuestionHandler)
		wantTexts []string
	}{
		{
			name:      "no questions",
			setup:     func(t *testing.T, h *QuestionHandler) {},
			wantTexts: []string{},
		},
		{
			name: "past question is listed",
			setup: func(t *testing.T, h *QuestionHandler) {
				testutil.CreateTestQuestion(t, h.store.DB(), "Past question.", -30*24*time.Hour, time.Hour)
			},
			wantTexts: []string{"Past question."},
		},
		{
			name: "future question is hidden",
			setup: func(t *testing.T, h *QuestionHandler) {
				testutil.CreateTestQuestion(t, h.store.DB(), "Future question.", 30*24*time.Hour, 31*24*time.Hour)
			},
			wantTexts: []string{},
		},
		{
			name: "future and past only shows past",
			setup: func(t *testing.T, h *QuestionHandler) {
				testutil.CreateTestQuestion(t, h.store.DB(), "Past question.", -30*24*time.Hour, time.Hour)
				testutil.CreateTestQuestion(t, h.store.DB(), "Future question.", 30*24*time.Hour, 31*24*time.Hour)
			},
			wantTexts: []string{"Past question."},
		},
		{
			name: "newest first",
			setup: func(t *testing.T, h *QuestionHandler) {
				testutil.CreateTestQuestion(t, h.store.DB(), "Past question 1.", -30*24*time.Hour, time.Hour)
				testutil.CreateTestQuestion(t, h.store.DB(), "Past question 2.", -5*24*time.Hour, time.Hour)
			},
			wantTexts: []string{"Past question 2.", "Past question 1."},
		},
		{
			name: "at most five",
			setup: func(t *testing.T, h *QuestionHandler) {
				for i := 1; i <= 7; i++ {
					testutil.CreateTestQuestion(t, h.store.DB(), fmt.Sprintf("Q%d", i), -time.Duration(i)*time.Hour, time.Hour)
				}
			},
			wantTexts: []string{"Q1", "Q2", "Q3", "Q4", "Q5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			handler := NewQuestionHandler(store.New(db))
			tt.setup(t, handler)

			req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
			w := httptest.NewRecorder()
			handler.ListLatest(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)

			var resp []models.QuestionSummary
			testutil.AssertJSON(t, w, &resp)

			if len(resp) != len(tt.wantTexts) {
				t.Fatalf("Expected %d questions, got %d", len(tt.wantTexts), len(resp))
			}
			for i, want := range tt.wantTexts {
				if resp[i].QuestionText != want {
					t.Errorf("Question %d: expected %q, got %q", i, want, resp[i].QuestionText)
				}
			}
		})
	}
}

func TestListLatestSummaryFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewQuestionHandler(store.New(db))

	testutil.CreateTestQuestion(t, db, "Recent", -time.Hour, 24*time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	w := httptest.NewRecorder()
	handler.ListLatest(w, req)

	var resp []models.QuestionSummary
	testutil.AssertJSON(t, w, &resp)
	if len(resp) != 1 {
		t.Fatalf("Expected 1 question, got %d", len(resp))
	}

	got := resp[0]
	if !got.WasPublishedRecently {
		t.Error("Expected was_published_recently to be true")
	}
	if !got.CanVote {
		t.Error("Expected can_vote to be true")
	}
	if got.State != models.StateOpen {
		t.Errorf("Expected state %q, got %q", models.StateOpen, got.State)
	}
	if !strings.HasSuffix(got.PublishedAgo, "ago") {
		t.Errorf("Expected published_ago to end with 'ago', got %q", got.PublishedAgo)
	}
}

func TestGetQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewQuestionHandler(store.New(db))

	openID := testutil.CreateOpenQuestion(t, db, "Open question")
	testutil.AddTestChoice(t, db, openID, "First")
	testutil.AddTestChoice(t, db, openID, "Second")
	futureID := testutil.CreateTestQuestion(t, db, "Future question", 5*24*time.Hour, 6*24*time.Hour)
	closedID := testutil.CreateTestQuestion(t, db, "Closed question", -5*24*time.Hour, -time.Hour)

	tests := []struct {
		name           string
		questionID     string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "open question shows choices",
			questionID:     openID,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "future question is not allowed",
			questionID:     futureID,
			expectedStatus: http.StatusForbidden,
			expectedError:  "Sorry, voting for Question " + futureID + " is not allowed",
		},
		{
			name:           "closed question is not allowed",
			questionID:     closedID,
			expectedStatus: http.StatusForbidden,
			expectedError:  "Sorry, voting for Question " + closedID + " is not allowed",
		},
		{
			name:           "unknown question",
			questionID:     "missing",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/questions/"+tt.questionID, nil)
			req.SetPathValue("id", tt.questionID)
			w := httptest.NewRecorder()

			handler.GetQuestion(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedError != "" {
				var errResp models.ErrorResponse
				testutil.AssertJSON(t, w, &errResp)
				if errResp.Message != tt.expectedError {
					t.Errorf("Expected message %q, got %q", tt.expectedError, errResp.Message)
				}
			}

			if tt.expectedStatus == http.StatusOK {
				var resp models.QuestionDetailResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Question.QuestionText != "Open question" {
					t.Errorf("Expected question text 'Open question', got %q", resp.Question.QuestionText)
				}
				if len(resp.Choices) != 2 || resp.Choices[0].ChoiceText != "First" {
					t.Errorf("Expected choices [First Second], got %+v", resp.Choices)
				}
			}
		})
	}
}

func TestGetResults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewQuestionHandler(store.New(db))

	closedID := testutil.CreateTestQuestion(t, db, "Closed question", -5*24*time.Hour, -time.Hour)
	choiceID := testutil.AddTestChoice(t, db, closedID, "Only")
	if _, err := db.Exec(`UPDATE choice SET vote_count = 3 WHERE id = $1`, choiceID); err != nil {
		t.Fatalf("Failed to seed vote count: %v", err)
	}
	futureID := testutil.CreateTestQuestion(t, db, "Future question", 5*24*time.Hour, 6*24*time.Hour)

	tests := []struct {
		name           string
		questionID     string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "closed question still shows results",
			questionID:     closedID,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "future question is hidden",
			questionID:     futureID,
			expectedStatus: http.StatusForbidden,
			expectedError:  "Sorry, Question " + futureID + " not published yet",
		},
		{
			name:           "unknown question",
			questionID:     "missing",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/questions/"+tt.questionID+"/results", nil)
			req.SetPathValue("id", tt.questionID)
			w := httptest.NewRecorder()

			handler.GetResults(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedError != "" {
				var errResp models.ErrorResponse
				testutil.AssertJSON(t, w, &errResp)
				if errResp.Message != tt.expectedError {
					t.Errorf("Expected message %q, got %q", tt.expectedError, errResp.Message)
				}
			}

			if tt.expectedStatus == http.StatusOK {
				var resp models.ResultsResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.TotalVotes != 3 {
					t.Errorf("Expected 3 total votes, got %d", resp.TotalVotes)
				}
				if resp.Question.State != models.StateClosed {
					t.Errorf("Expected state closed, got %q", resp.Question.State)
				}
			}
		})
	}
}
