// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/tally"
	"github.com/danielhkuo/polls/testutil"
)

type site struct {
	mux   *http.ServeMux
	store *store.Store
	pages *Pages
}

func newSite(t *testing.T) *site {
	t.Helper()

	cfg := testutil.GetTestConfig()
	st := store.New(testutil.SetupTestDB(t))
	tokens := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	pages, err := New(st, tally.NewService(st, cfg.VoteScope), tokens)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", pages.Root)
	mux.HandleFunc("GET /polls/{$}", pages.Index)
	mux.HandleFunc("GET /polls/{id}/{$}", pages.Detail)
	mux.HandleFunc("GET /polls/{id}/results/{$}", pages.Results)
	mux.HandleFunc("POST /polls/{id}/vote/{$}", pages.RequireLogin(pages.Vote))
	mux.HandleFunc("GET /accounts/login/{$}", pages.LoginForm)
	mux.HandleFunc("POST /accounts/login/{$}", pages.Login)
	mux.HandleFunc("POST /accounts/logout/{$}", pages.Logout)

	return &site{mux: mux, store: st, pages: pages}
}

func (s *site) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func (s *site) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (s *site) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, cookies...)
}

func sessionCookie(t *testing.T, user models.User) *http.Cookie {
	return &http.Cookie{Name: middleware.SessionCookie, Value: testutil.IssueTestToken(t, user)}
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRootRedirectsToIndex(t *testing.T) {
	s := newSite(t)

	w := s.get("/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, IndexPath, w.Header().Get("Location"))
}

func TestIndexPage(t *testing.T) {
	s := newSite(t)
	db := s.store.DB()

	w := s.get("/polls/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No polls are available.")

	testutil.CreateTestQuestion(t, db, "Past <question>", -24*time.Hour, time.Hour)
	testutil.CreateTestQuestion(t, db, "Future question", 24*time.Hour, 48*time.Hour)

	w = s.get("/polls/")
	body := w.Body.String()
	assert.Contains(t, body, "Past &lt;question&gt;")
	assert.NotContains(t, body, "Future question")
	assert.NotContains(t, body, "No polls are available.")
	assert.Contains(t, body, "Log in")
}

func TestDetailPage(t *testing.T) {
	s := newSite(t)
	db := s.store.DB()

	openID := testutil.CreateOpenQuestion(t, db, "Open question")
	testutil.AddTestChoice(t, db, openID, "Choice one")
	futureID := testutil.CreateTestQuestion(t, db, "Future question", 24*time.Hour, 48*time.Hour)

	t.Run("open question shows the form", func(t *testing.T) {
		w := s.get("/polls/" + openID + "/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Choice one")
		assert.Contains(t, w.Body.String(), `action="/polls/`+openID+`/vote/"`)
	})

	t.Run("future question flashes and redirects", func(t *testing.T) {
		w := s.get("/polls/" + futureID + "/")
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, IndexPath, w.Header().Get("Location"))

		flash := cookieNamed(w, middleware.FlashCookie)
		require.NotNil(t, flash)

		w = s.get("/polls/", flash)
		assert.Contains(t, w.Body.String(), "Sorry, voting for Question "+futureID+" is not allowed")

		cleared := cookieNamed(w, middleware.FlashCookie)
		require.NotNil(t, cleared)
		assert.Less(t, cleared.MaxAge, 0)
	})

	t.Run("unknown question", func(t *testing.T) {
		w := s.get("/polls/missing/")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestResultsPage(t *testing.T) {
	s := newSite(t)
	db := s.store.DB()

	closedID := testutil.CreateTestQuestion(t, db, "Closed question", -48*time.Hour, -time.Hour)
	choiceID := testutil.AddTestChoice(t, db, closedID, "Winner")
	_, err := db.Exec(`UPDATE choice SET vote_count = 3 WHERE id = $1`, choiceID)
	require.NoError(t, err)
	futureID := testutil.CreateTestQuestion(t, db, "Future question", 24*time.Hour, 48*time.Hour)

	w := s.get("/polls/" + closedID + "/results/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Winner -- 3 votes")
	assert.NotContains(t, w.Body.String(), "Vote again?")

	w = s.get("/polls/" + futureID + "/results/")
	require.Equal(t, http.StatusFound, w.Code)
	flash := cookieNamed(w, middleware.FlashCookie)
	require.NotNil(t, flash)

	w = s.get("/polls/", flash)
	assert.Contains(t, w.Body.String(), "Sorry, Question "+futureID+" not published yet")
}

func TestVotePage(t *testing.T) {
	s := newSite(t)
	db := s.store.DB()

	user := testutil.CreateTestUser(t, db, "alice", false)
	session := sessionCookie(t, user)

	openID := testutil.CreateOpenQuestion(t, db, "Open question")
	choiceID := testutil.AddTestChoice(t, db, openID, "Yes")
	closedID := testutil.CreateTestQuestion(t, db, "Closed question", -48*time.Hour, -time.Hour)
	closedChoice := testutil.AddTestChoice(t, db, closedID, "Too late")

	t.Run("anonymous is sent to login", func(t *testing.T) {
		w := s.postForm("/polls/"+openID+"/vote/", url.Values{"choice": {choiceID}})
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, LoginPath+"?next="+url.QueryEscape("/polls/"+openID+"/"), w.Header().Get("Location"))
	})

	t.Run("no choice re-renders the form", func(t *testing.T) {
		w := s.postForm("/polls/"+openID+"/vote/", url.Values{}, session)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "select a choice.")
		assert.Contains(t, w.Body.String(), "Signed in as alice")
	})

	t.Run("valid vote redirects to results", func(t *testing.T) {
		w := s.postForm("/polls/"+openID+"/vote/", url.Values{"choice": {choiceID}}, session)
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/polls/"+openID+"/results/", w.Header().Get("Location"))
		assert.Equal(t, 1, testutil.VoteCounts(t, db, openID)[choiceID])
	})

	t.Run("closed question flashes", func(t *testing.T) {
		w := s.postForm("/polls/"+closedID+"/vote/", url.Values{"choice": {closedChoice}}, session)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, IndexPath, w.Header().Get("Location"))
		assert.NotNil(t, cookieNamed(w, middleware.FlashCookie))
		assert.Equal(t, 0, testutil.VoteCounts(t, db, closedID)[closedChoice])
	})

	t.Run("unknown question", func(t *testing.T) {
		w := s.postForm("/polls/missing/vote/", url.Values{"choice": {choiceID}}, session)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLoginAndLogout(t *testing.T) {
	s := newSite(t)
	testutil.CreateTestUser(t, s.store.DB(), "alice", false)

	w := s.get("/accounts/login/?next=/polls/abc/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="/polls/abc/"`)

	w = s.postForm("/accounts/login/", url.Values{
		"username": {"alice"},
		"password": {"wrong-password"},
		"next":     {"/polls/abc/"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a correct username and password.")
	assert.Nil(t, cookieNamed(w, middleware.SessionCookie))

	w = s.postForm("/accounts/login/", url.Values{
		"username": {"alice"},
		"password": {testutil.TestPassword},
		"next":     {"/polls/abc/"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/polls/abc/", w.Header().Get("Location"))

	session := cookieNamed(w, middleware.SessionCookie)
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	w = s.get("/polls/", session)
	assert.Contains(t, w.Body.String(), "Signed in as alice")

	w = s.postForm("/accounts/logout/", url.Values{}, session)
	require.Equal(t, http.StatusSeeOther, w.Code)
	cleared := cookieNamed(w, middleware.SessionCookie)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/polls/1/", "/polls/1/"},
		{"", IndexPath},
		{"https://evil.example/", IndexPath},
		{"//evil.example/", IndexPath},
		{"/\\evil.example/", IndexPath},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.next))
		})
	}
}
