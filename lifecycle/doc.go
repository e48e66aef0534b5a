// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle classifies a question's voting state from the current time.

All functions are pure and take "now" explicitly:

	lifecycle.IsPublished(q, now)          // now >= publish_at
	lifecycle.WasClosed(q, now)            // now >= close_at
	lifecycle.CanVote(q, now)              // published and not closed
	lifecycle.WasPublishedRecently(q, now) // now-24h <= publish_at <= now

A question moves future → open → closed as the clock crosses publish_at and
then close_at. There is no stored state and no manual transition.
*/
package lifecycle
