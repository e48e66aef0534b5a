// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the polls service.

# Route Registration

NewRouter builds the store, tally service, token issuer and handlers from
the database and configuration, and returns the CORS-wrapped mux:

	handler, err := router.NewRouter(db, cfg)

Every route except /health and /metrics is wrapped with request logging
and Prometheus instrumentation labelled by its pattern.

# Endpoints

Operational:

	GET /health  - Liveness
	GET /metrics - Prometheus exposition

Accounts:

	POST /api/accounts/register - Create an account, returns a token
	POST /api/accounts/login    - Exchange credentials for a token

Questions (public reads, Bearer token to vote):

	GET  /api/questions              - Latest published questions
	GET  /api/questions/{id}         - Question and choices while open
	GET  /api/questions/{id}/results - Vote counts once published
	POST /api/questions/{id}/vote    - Cast or change a vote

Admin (staff token):

	GET    /api/admin/questions              - Search and filter
	POST   /api/admin/questions              - Create with choices
	DELETE /api/admin/questions/{id}         - Delete with choices and votes
	POST   /api/admin/questions/{id}/choices - Add a choice

HTML pages:

	GET  /                    - Redirect to /polls/
	GET  /polls/              - Index
	GET  /polls/{id}/         - Voting form
	GET  /polls/{id}/results/ - Results
	POST /polls/{id}/vote/    - Form vote (session cookie)
	GET  /accounts/login/     - Login form
	POST /accounts/login/     - Login
	POST /accounts/logout/    - Logout
*/
package router
