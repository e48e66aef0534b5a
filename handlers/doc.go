// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the JSON API handlers for the polls service.

# Handler Types

Each handler is a struct built from its dependencies:

  - QuestionHandler: latest questions, detail and results
  - VotingHandler: vote casting through the tally service
  - AccountHandler: registration and login
  - AdminHandler: staff question management

	questionHandler := handlers.NewQuestionHandler(st)
	votingHandler := handlers.NewVotingHandler(tallyService)

# Public Endpoints

	GET  /api/questions              → ListLatest (five most recent, none from the future)
	GET  /api/questions/{id}         → GetQuestion (403 unless open for voting)
	GET  /api/questions/{id}/results → GetResults (403 until published)
	POST /api/questions/{id}/vote    → Vote (login required)

# Vote Errors

VoteErrorStatus maps tally errors to responses:

	ErrInvalidSelection → 400 "You didn't select a choice."
	ErrNotFound         → 404
	ErrNotPublishedYet  → 409
	ErrVotingClosed     → 409
	ErrUnauthorized     → 401

# Accounts

	POST /api/accounts/register → Register (returns a session token)
	POST /api/accounts/login    → Login

CreateAccount, Authenticate and EnsureStaffUser are shared with the HTML
pages and with startup.

# Admin

Staff-only endpoints:

	GET    /api/admin/questions              → ListQuestions (?q=, ?published_since=)
	POST   /api/admin/questions              → CreateQuestion
	DELETE /api/admin/questions/{id}         → DeleteQuestion
	POST   /api/admin/questions/{id}/choices → AddChoice
*/
package handlers
