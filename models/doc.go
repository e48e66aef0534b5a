// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the polls app.

# Domain Types

  - Question: poll text with a publish time and a close time
  - Choice: one selectable option with a cached vote count
  - Vote: links a user to the choice they selected
  - User: an account that can vote; staff users manage questions

NewQuestion fills in the default close time (24h after now) for each new
record, and rejects a close time earlier than the publish time.

# Vote Scope

	VoteScopeGlobal   = "global"   // one live vote per user, system-wide
	VoteScopeQuestion = "question" // one vote per user per question

# Errors

Sentinel errors are wrapped with fmt.Errorf and matched with errors.Is:

  - ErrNotFound: question or choice absent (404)
  - ErrInvalidSelection: missing or foreign choice (form re-rendered)
  - ErrNotPublishedYet, ErrVotingClosed: business-rule violations (flash + redirect)
  - ErrInvalidInput, ErrConflict, ErrUnauthorized
*/
package models
