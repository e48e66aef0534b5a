// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/handlers"
	"github.com/danielhkuo/polls/lifecycle"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
	"github.com/danielhkuo/polls/tally"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	IndexPath = "/polls/"
	LoginPath = "/accounts/login/"

	msgBadLogin = "Please enter a correct username and password."
)

var funcs = template.FuncMap{
	"votes": func(n int) string { return english.Plural(n, "vote", "") },
}

// pageData is shared by every template; pages use the fields they need
type pageData struct {
	Username   string
	Flash      string
	Error      string
	Questions  []models.QuestionSummary
	Question   models.QuestionSummary
	Choices    []models.Choice
	TotalVotes int
	Next       string
	LoginName  string
}

// Pages serves the server-rendered polls site
type Pages struct {
	store     *store.Store
	tally     *tally.Service
	tokens    *auth.Tokens
	authn     *middleware.Authenticator
	templates map[string]*template.Template
	now       func() time.Time
}

func New(st *store.Store, svc *tally.Service, tokens *auth.Tokens) (*Pages, error) {
	templates := make(map[string]*template.Template)
	for _, page := range []string{"index", "detail", "results", "login"} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Pages{
		store:     st,
		tally:     svc,
		tokens:    tokens,
		authn:     middleware.NewAuthenticator(tokens),
		templates: templates,
		now:       time.Now,
	}, nil
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, page string, status int, data pageData) {
	if claims, ok := p.authn.Identify(r); ok {
		data.Username = claims.Username
	}
	if data.Flash == "" {
		data.Flash = middleware.PopFlash(w, r)
	}

	var buf bytes.Buffer
	if err := p.templates[page].ExecuteTemplate(&buf, "base", data); err != nil {
		slog.Error("failed to render page", "error", err, "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, message string) {
	middleware.SetFlash(w, message)
	http.Redirect(w, r, IndexPath, http.StatusFound)
}

func detailPath(questionID string) string  { return IndexPath + questionID + "/" }
func resultsPath(questionID string) string { return IndexPath + questionID + "/results/" }

// Root handles GET /
func (p *Pages) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, IndexPath, http.StatusFound)
}

// Index handles GET /polls/
func (p *Pages) Index(w http.ResponseWriter, r *http.Request) {
	now := p.now()
	questions, err := p.store.LatestPublished(r.Context(), now, store.DefaultLatestLimit)
	if err != nil {
		slog.Error("failed to list questions", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pageData{Questions: make([]models.QuestionSummary, 0, len(questions))}
	for _, q := range questions {
		data.Questions = append(data.Questions, handlers.SummarizeQuestion(q, now))
	}
	p.render(w, r, "index", http.StatusOK, data)
}

// Detail handles GET /polls/{id}/
func (p *Pages) Detail(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	question, ok := p.loadQuestion(w, r, questionID)
	if !ok {
		return
	}

	if !lifecycle.CanVote(question, p.now()) {
		redirectWithFlash(w, r, handlers.MsgVotingNotAllowed(questionID))
		return
	}

	p.renderDetail(w, r, question, "")
}

func (p *Pages) renderDetail(w http.ResponseWriter, r *http.Request, question models.Question, errMsg string) {
	choices, err := p.store.ListChoices(r.Context(), question.ID)
	if err != nil {
		slog.Error("failed to list choices", "error", err, "question_id", question.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.render(w, r, "detail", http.StatusOK, pageData{
		Question: handlers.SummarizeQuestion(question, p.now()),
		Choices:  choices,
		Error:    errMsg,
	})
}

// Results handles GET /polls/{id}/results/
func (p *Pages) Results(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	question, ok := p.loadQuestion(w, r, questionID)
	if !ok {
		return
	}

	now := p.now()
	if !lifecycle.IsPublished(question, now) {
		redirectWithFlash(w, r, handlers.MsgNotPublished(questionID))
		return
	}

	choices, err := p.store.ListChoices(r.Context(), question.ID)
	if err != nil {
		slog.Error("failed to list choices", "error", err, "question_id", question.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.render(w, r, "results", http.StatusOK, pageData{
		Question:   handlers.SummarizeQuestion(question, now),
		Choices:    choices,
		TotalVotes: tally.Result{Choices: choices}.TotalVotes(),
	})
}

// RequireLogin sends anonymous visitors to the login page, returning them
// to the question afterwards
func (p *Pages) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := p.authn.Identify(r)
		if !ok {
			back := r.URL.Path
			if id := r.PathValue("id"); id != "" {
				back = detailPath(id)
			}
			http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(back), http.StatusFound)
			return
		}
		next(w, r.WithContext(middleware.WithClaims(r.Context(), claims)))
	}
}

// Vote handles POST /polls/{id}/vote/
func (p *Pages) Vote(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	claims, _ := middleware.ClaimsFrom(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err := p.tally.CastVote(r.Context(), questionID, r.PostFormValue("choice"), claims.UserID)
	switch {
	case err == nil:
		http.Redirect(w, r, resultsPath(questionID), http.StatusSeeOther)
	case errors.Is(err, models.ErrInvalidSelection):
		question, ok := p.loadQuestion(w, r, questionID)
		if ok {
			p.renderDetail(w, r, question, handlers.MsgNoChoice)
		}
	case errors.Is(err, models.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, models.ErrNotPublishedYet):
		redirectWithFlash(w, r, handlers.MsgNotPublished(questionID))
	case errors.Is(err, models.ErrVotingClosed):
		redirectWithFlash(w, r, handlers.MsgVotingNotAllowed(questionID))
	case errors.Is(err, models.ErrUnauthorized):
		http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(detailPath(questionID)), http.StatusFound)
	default:
		slog.Error("failed to cast vote", "error", err, "question_id", questionID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// LoginForm handles GET /accounts/login/
func (p *Pages) LoginForm(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, "login", http.StatusOK, pageData{Next: safeNext(r.URL.Query().Get("next"))})
}

// Login handles POST /accounts/login/
func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	next := safeNext(r.PostFormValue("next"))

	user, err := handlers.Authenticate(r.Context(), p.store, username, r.PostFormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		p.render(w, r, "login", http.StatusOK, pageData{Error: msgBadLogin, Next: next, LoginName: username})
		return
	}
	if err != nil {
		slog.Error("failed to authenticate", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token, err := p.tokens.Issue(user, time.Now())
	if err != nil {
		slog.Error("failed to issue token", "error", err, "user_id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	middleware.SetSessionCookie(w, token, p.tokens.TTL())
	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout handles POST /accounts/logout/
func (p *Pages) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, IndexPath, http.StatusSeeOther)
}

func (p *Pages) loadQuestion(w http.ResponseWriter, r *http.Request, questionID string) (models.Question, bool) {
	question, err := p.store.GetQuestion(r.Context(), questionID)
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return models.Question{}, false
	}
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", questionID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return models.Question{}, false
	}
	return question, true
}

// safeNext only allows local redirect targets
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return IndexPath
	}
	return next
}
