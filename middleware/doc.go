// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse and validate JSON request bodies (go-playground/validator tags):

	var req models.CreateQuestionRequest
	if msg, ok := middleware.ParseAndValidate(r, &req); !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

# Authentication

Authenticator reads a session token from "Authorization: Bearer" or the
polls_session cookie:

	authn := middleware.NewAuthenticator(tokens)
	mux.HandleFunc("POST /api/questions/{id}/vote", authn.RequireUser(h.Vote))
	mux.HandleFunc("POST /api/admin/questions", authn.RequireStaff(h.CreateQuestion))

Handlers read the caller with ClaimsFrom(r.Context()).

# Flash Messages

SetFlash queues a one-shot message in a cookie; PopFlash reads and clears it
on the next page.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
