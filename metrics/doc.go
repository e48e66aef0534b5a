// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exports Prometheus counters for HTTP traffic and voting.
// Metrics satisfies tally.Recorder.
package metrics
