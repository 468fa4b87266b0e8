package domain

import "errors"

var (
	ErrUnknownPersona   = errors.New("unknown persona")
	ErrUnknownModel     = errors.New("unknown model")
	ErrTemperatureRange = errors.New("temperature out of range")
	ErrMemoryWindow     = errors.New("memory window out of range")
	ErrEmptyMessage     = errors.New("empty message")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoReply          = errors.New("provider returned no reply")
	ErrArchiveDisabled  = errors.New("archive not configured")
)
