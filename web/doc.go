// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package web serves the HTML pages of the polls site.

Templates are embedded from templates/ and share a base layout that shows
the signed-in user and a one-shot flash message.

# Pages

	GET  /                   → Root (redirects to /polls/)
	GET  /polls/             → Index
	GET  /polls/{id}/        → Detail (flash and redirect unless open for voting)
	GET  /polls/{id}/results/ → Results (flash and redirect until published)
	POST /polls/{id}/vote/   → Vote (login required)
	GET  /accounts/login/    → LoginForm
	POST /accounts/login/    → Login
	POST /accounts/logout/   → Logout

A successful vote redirects with 303 See Other to the results page so a
reload does not post the form again. An empty or foreign choice re-renders
the detail page with "You didn't select a choice."

Sessions use the same JWT as the JSON API, carried in the polls_session
cookie.
*/
package web
