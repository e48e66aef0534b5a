// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/cliparse"
	"github.com/danielhkuo/polls/handlers"
	"github.com/danielhkuo/polls/metrics"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/tally"
	"github.com/danielhkuo/polls/web"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) (http.Handler, error) {
	mux := http.NewServeMux()
	m := metrics.New(db)

	// Shared services
	st := store.New(db)
	tokens := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	authn := middleware.NewAuthenticator(tokens)
	tallyService := tally.NewService(st, cfg.VoteScope, tally.WithRecorder(m))

	// Initialize handlers
	questionHandler := handlers.NewQuestionHandler(st)
	votingHandler := handlers.NewVotingHandler(tallyService)
	accountHandler := handlers.NewAccountHandler(st, tokens)
	adminHandler := handlers.NewAdminHandler(st)

	pages, err := web.New(st, tallyService, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}

	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(m.Instrument(pattern, h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Accounts
	handle("POST /api/accounts/register", accountHandler.Register)
	handle("POST /api/accounts/login", accountHandler.Login)

	// Questions and voting (public reads, signed-in votes)
	handle("GET /api/questions", questionHandler.ListLatest)
	handle("GET /api/questions/{id}", questionHandler.GetQuestion)
	handle("GET /api/questions/{id}/results", questionHandler.GetResults)
	handle("POST /api/questions/{id}/vote", authn.RequireUser(votingHandler.Vote))

	// Question management (staff only)
	handle("GET /api/admin/questions", authn.RequireStaff(adminHandler.ListQuestions))
	handle("POST /api/admin/questions", authn.RequireStaff(adminHandler.CreateQuestion))
	handle("DELETE /api/admin/questions/{id}", authn.RequireStaff(adminHandler.DeleteQuestion))
	handle("POST /api/admin/questions/{id}/choices", authn.RequireStaff(adminHandler.AddChoice))

	// HTML pages
	handle("GET /{$}", pages.Root)
	handle("GET /polls/{$}", pages.Index)
	handle("GET /polls/{id}/{$}", pages.Detail)
	handle("GET /polls/{id}/results/{$}", pages.Results)
	handle("POST /polls/{id}/vote/{$}", pages.RequireLogin(pages.Vote))
	handle("GET /accounts/login/{$}", pages.LoginForm)
	handle("POST /accounts/login/{$}", pages.Login)
	handle("POST /accounts/logout/{$}", pages.Logout)

	return middleware.CORS(mux), nil
}
