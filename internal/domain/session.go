package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionConfig is the mutable per-session generation setup. It is read
// before each provider call and mutated only through UpdateConfig.
type SessionConfig struct {
	ModelKey     string  `json:"model"`
	PersonaKey   string  `json:"persona"`
	Temperature  float64 `json:"temperature"`
	MemoryWindow int     `json:"memory_window"`
}

// ConfigPatch carries a partial config update. Nil fields are left as is.
type ConfigPatch struct {
	ModelKey     *string  `json:"model,omitempty"`
	PersonaKey   *string  `json:"persona,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MemoryWindow *int     `json:"memory_window,omitempty"`
}

type SessionStats struct {
	Messages  int             `json:"messages"`
	Turns     int             `json:"turns"`
	StartedAt time.Time       `json:"started_at"`
	Cost      decimal.Decimal `json:"cost"`
}
