// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/polls/auth"
	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
	"github.com/danielhkuo/polls/store"
)

type AccountHandler struct {
	store  *store.Store
	tokens *auth.Tokens
}

func NewAccountHandler(st *store.Store, tokens *auth.Tokens) *AccountHandler {
	return &AccountHandler{store: st, tokens: tokens}
}

// Register handles POST /api/accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if msg, ok := middleware.ParseAndValidate(r, &req); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	user, err := CreateAccount(r.Context(), h.store, req.Username, req.Password, false)
	if errors.Is(err, models.ErrInvalidInput) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, models.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
		return
	}
	if err != nil {
		slog.Error("failed to register user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login handles POST /api/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if msg, ok := middleware.ParseAndValidate(r, &req); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	user, err := Authenticate(r.Context(), h.store, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		slog.Error("failed to look up user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AccountHandler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := h.tokens.Issue(user, time.Now())
	if err != nil {
		slog.Error("failed to issue token", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	middleware.JSONResponse(w, status, models.AuthResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
		User: models.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			IsStaff:  user.IsStaff,
		},
	})
}

// CreateAccount hashes the password and stores a new user.
// Returns models.ErrInvalidInput for a blank username or a password bcrypt
// cannot take, and models.ErrConflict when the username is taken.
func CreateAccount(ctx context.Context, st *store.Store, username, password string, staff bool) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", models.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           auth.GenerateID(),
		Username:     username,
		PasswordHash: hash,
		IsStaff:      staff,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks a username/password pair.
// Unknown users and wrong passwords both yield auth.ErrInvalidCredentials.
func Authenticate(ctx context.Context, st *store.Store, username, password string) (models.User, error) {
	user, err := st.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return models.User{}, auth.ErrInvalidCredentials
	}
	return user, nil
}

// EnsureStaffUser creates the bootstrap staff account if it does not exist yet
func EnsureStaffUser(ctx context.Context, st *store.Store, username, password string) error {
	if username == "" {
		return nil
	}

	_, err := st.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	user, err := CreateAccount(ctx, st, username, password, true)
	if err != nil {
		return fmt.Errorf("failed to create staff user %q: %w", username, err)
	}

	slog.Info("staff user created", "user_id", user.ID, "username", user.Username)
	return nil
}
