package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ArchivedTurn is one completed user/assistant exchange as written to
// the transcript archive. The in-memory conversation stays canonical;
// the archive is an audit log.
type ArchivedTurn struct {
	ID               int64           `json:"id"`
	SessionID        uuid.UUID       `json:"session_id"`
	ModelKey         string          `json:"model"`
	PersonaKey       string          `json:"persona"`
	UserText         string          `json:"user_text"`
	AssistantText    string          `json:"assistant_text"`
	PromptTokens     int             `json:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens"`
	Cost             decimal.Decimal `json:"cost"`
	CreatedAt        time.Time       `json:"created_at"`
}
