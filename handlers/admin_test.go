// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/testutil"
)

func TestCreateQuestion(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))
	handler := NewAdminHandler(st)

	now := time.Now().UTC().Truncate(time.Second)
	handler.now = func() time.Time { return now }

	past := now.Add(-time.Hour)
	later := now.Add(72 * time.Hour)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkQuestion  func(t *testing.T, q models.Question)
	}{
		{
			name: "defaults publish now and close a day later",
			requestBody: models.CreateQuestionRequest{
				QuestionText: "What's up?",
				Choices:      []string{"Not much", "The sky"},
			},
			expectedStatus: http.StatusCreated,
			checkQuestion: func(t *testing.T, q models.Question) {
				if !q.PublishAt.Equal(now) {
					t.Errorf("Expected publish_at %v, got %v", now, q.PublishAt)
				}
				if !q.CloseAt.Equal(now.Add(models.DefaultVotingPeriod)) {
					t.Errorf("Expected close_at %v, got %v", now.Add(models.DefaultVotingPeriod), q.CloseAt)
				}
			},
		},
		{
			name: "explicit window",
			requestBody: models.CreateQuestionRequest{
				QuestionText: "Explicit",
				PublishAt:    &past,
				CloseAt:      &later,
			},
			expectedStatus: http.StatusCreated,
			checkQuestion: func(t *testing.T, q models.Question) {
				if !q.PublishAt.Equal(past) || !q.CloseAt.Equal(later) {
					t.Errorf("Unexpected window %v..%v", q.PublishAt, q.CloseAt)
				}
			},
		},
		{
			name: "close before publish",
			requestBody: models.CreateQuestionRequest{
				QuestionText: "Backwards",
				PublishAt:    &later,
				CloseAt:      &past,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing text",
			requestBody:    models.CreateQuestionRequest{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "empty choice text",
			requestBody: models.CreateQuestionRequest{
				QuestionText: "Q",
				Choices:      []string{"ok", ""},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest(http.MethodPost, "/api/admin/questions", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.CreateQuestion(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var resp models.CreateQuestionResponse
			testutil.AssertJSON(t, w, &resp)

			q, err := st.GetQuestion(req.Context(), resp.QuestionID)
			if err != nil {
				t.Fatalf("Created question not found: %v", err)
			}
			if tt.checkQuestion != nil {
				tt.checkQuestion(t, q)
			}

			choices, err := st.ListChoices(req.Context(), resp.QuestionID)
			if err != nil {
				t.Fatalf("Failed to list choices: %v", err)
			}
			if len(choices) != len(resp.ChoiceIDs) {
				t.Errorf("Expected %d choices, got %d", len(resp.ChoiceIDs), len(choices))
			}
		})
	}
}

func TestAdminListQuestions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAdminHandler(store.New(db))

	testutil.CreateTestQuestion(t, db, "What is your favourite colour?", -10*24*time.Hour, time.Hour)
	testutil.CreateTestQuestion(t, db, "Best pizza topping?", -time.Hour, time.Hour)
	testutil.CreateTestQuestion(t, db, "Future colour question", 24*time.Hour, 48*time.Hour)

	since := time.Now().Add(-2 * 24 * time.Hour).UTC().Format(time.RFC3339)

	tests := []struct {
		name           string
		query          url.Values
		expectedStatus int
		expectedCount  int
	}{
		{"all questions including future", url.Values{}, http.StatusOK, 3},
		{"search is case insensitive", url.Values{"q": {"COLOUR"}}, http.StatusOK, 2},
		{"published since", url.Values{"published_since": {since}}, http.StatusOK, 2},
		{"combined filters", url.Values{"q": {"colour"}, "published_since": {since}}, http.StatusOK, 1},
		{"limit", url.Values{"limit": {"1"}}, http.StatusOK, 1},
		{"bad timestamp", url.Values{"published_since": {"yesterday"}}, http.StatusBadRequest, 0},
		{"bad limit", url.Values{"limit": {"-1"}}, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/questions?"+tt.query.Encode(), nil)
			w := httptest.NewRecorder()

			handler.ListQuestions(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp []models.QuestionSummary
			testutil.AssertJSON(t, w, &resp)
			if len(resp) != tt.expectedCount {
				t.Errorf("Expected %d questions, got %d", tt.expectedCount, len(resp))
			}
		})
	}
}

func TestDeleteQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	handler := NewAdminHandler(st)

	questionID := testutil.CreateOpenQuestion(t, db, "Doomed")
	choiceID := testutil.AddTestChoice(t, db, questionID, "A")
	user := testutil.CreateTestUser(t, db, "alice", false)
	if _, err := db.Exec(`
		INSERT INTO vote (id, user_id, question_id, choice_id, cast_at)
		VALUES ('v1', $1, $2, $3, $4)
	`, user.ID, questionID, choiceID, time.Now().UTC()); err != nil {
		t.Fatalf("Failed to seed vote: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/questions/"+questionID, nil)
	req.SetPathValue("id", questionID)
	w := httptest.NewRecorder()
	handler.DeleteQuestion(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	var remaining int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&remaining); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if remaining != 0 {
		t.Errorf("Expected votes to be deleted with the question, %d remain", remaining)
	}

	// Deleting again is a 404
	req = httptest.NewRequest(http.MethodDelete, "/api/admin/questions/"+questionID, nil)
	req.SetPathValue("id", questionID)
	w = httptest.NewRecorder()
	handler.DeleteQuestion(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAddChoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewAdminHandler(store.New(db))

	questionID := testutil.CreateOpenQuestion(t, db, "Q")
	testutil.AddTestChoice(t, db, questionID, "First")

	tests := []struct {
		name           string
		questionID     string
		requestBody    interface{}
		expectedStatus int
	}{
		{"valid choice", questionID, models.AddChoiceRequest{ChoiceText: "Second"}, http.StatusCreated},
		{"empty text", questionID, models.AddChoiceRequest{}, http.StatusBadRequest},
		{"unknown question", "missing", models.AddChoiceRequest{ChoiceText: "Orphan"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest(http.MethodPost, "/api/admin/questions/"+tt.questionID+"/choices", tt.requestBody, nil)
			req.SetPathValue("id", tt.questionID)
			w := httptest.NewRecorder()

			handler.AddChoice(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	counts := testutil.VoteCounts(t, db, questionID)
	if len(counts) != 2 {
		t.Errorf("Expected 2 choices, got %d", len(counts))
	}
}
