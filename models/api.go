// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Request types

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateQuestionRequest struct {
	QuestionText string     `json:"question_text" validate:"required,max=200"`
	PublishAt    *time.Time `json:"publish_at"`
	CloseAt      *time.Time `json:"close_at"`
	Choices      []string   `json:"choices" validate:"dive,required,max=200"`
}

type AddChoiceRequest struct {
	ChoiceText string `json:"choice_text" validate:"required,max=200"`
}

// ChoiceID may be empty; that is reported as an invalid selection.
type VoteRequest struct {
	ChoiceID string `json:"choice_id"`
}

// Response types

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

type AuthResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	User      UserInfo `json:"user"`
}

type QuestionSummary struct {
	ID                   string    `json:"id"`
	QuestionText         string    `json:"question_text"`
	PublishAt            time.Time `json:"publish_at"`
	CloseAt              time.Time `json:"close_at"`
	PublishedAgo         string    `json:"published_ago"`
	State                string    `json:"state"`
	WasPublishedRecently bool      `json:"was_published_recently"`
	CanVote              bool      `json:"can_vote"`
}

type ChoiceOption struct {
	ID         string `json:"id"`
	ChoiceText string `json:"choice_text"`
}

type QuestionDetailResponse struct {
	Question QuestionSummary `json:"question"`
	Choices  []ChoiceOption  `json:"choices"`
}

type ResultsResponse struct {
	Question   QuestionSummary `json:"question"`
	Choices    []Choice        `json:"choices"`
	TotalVotes int             `json:"total_votes"`
}

type CreateQuestionResponse struct {
	QuestionID string   `json:"question_id"`
	ChoiceIDs  []string `json:"choice_ids"`
}

type AddChoiceResponse struct {
	ChoiceID string `json:"choice_id"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
