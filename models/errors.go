// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	// ErrNotFound means the question, choice, or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSelection means no choice was selected, or the selected
	// choice does not belong to the question.
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNotPublishedYet  = errors.New("question not published yet")
	ErrVotingClosed     = errors.New("voting closed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
)
