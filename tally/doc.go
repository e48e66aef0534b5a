// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally records votes and keeps per-choice counts consistent.

CastVote validates the question and the selected choice, checks the voting
window, and hands the vote to the repository, which upserts it and recounts
vote_count for every affected question inside one transaction:

	svc := tally.NewService(store.New(conn), models.VoteScopeGlobal)
	result, err := svc.CastVote(ctx, questionID, choiceID, userID)
	switch {
	case errors.Is(err, models.ErrInvalidSelection):
		// re-render the form with "You didn't select a choice."
	case errors.Is(err, models.ErrNotFound):
		// 404
	}

# Vote Scope

With VoteScopeGlobal a user holds one live vote across all questions; a vote
on another question moves it, and the old question is recounted too. With
VoteScopeQuestion a user holds one vote per question. Voting again on the
same question moves the vote in both scopes.
*/
package tally
