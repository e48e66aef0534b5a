// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"fmt"
	"time"

	"github.com/danielhkuo/polls/models"
)

// RecentWindow is the look-back used by WasPublishedRecently.
const RecentWindow = 24 * time.Hour

// IsPublished reports whether now >= publish_at.
func IsPublished(q models.Question, now time.Time) bool {
	return !now.Before(q.PublishAt)
}

// WasClosed reports whether now >= close_at.
func WasClosed(q models.Question, now time.Time) bool {
	return !now.Before(q.CloseAt)
}

// CanVote reports whether the question is published and not yet closed.
// The trailing now <= close_at clause is implied by !WasClosed.
func CanVote(q models.Question, now time.Time) bool {
	return IsPublished(q, now) &&
		!WasClosed(q, now) &&
		!now.After(q.CloseAt)
}

// WasPublishedRecently reports whether now-24h <= publish_at <= now.
func WasPublishedRecently(q models.Question, now time.Time) bool {
	return !q.PublishAt.Before(now.Add(-RecentWindow)) && !q.PublishAt.After(now)
}

// StateAt derives the question state: future, then open, then closed.
func StateAt(q models.Question, now time.Time) string {
	switch {
	case !IsPublished(q, now):
		return models.StateFuture
	case WasClosed(q, now):
		return models.StateClosed
	default:
		return models.StateOpen
	}
}

// Check returns ErrNotPublishedYet or ErrVotingClosed when voting is not
// allowed at now, and nil otherwise.
func Check(q models.Question, now time.Time) error {
	if !IsPublished(q, now) {
		return fmt.Errorf("question %s: %w", q.ID, models.ErrNotPublishedYet)
	}
	if !CanVote(q, now) {
		return fmt.Errorf("question %s: %w", q.ID, models.ErrVotingClosed)
	}
	return nil
}
