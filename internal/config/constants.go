package config

import "time"

const (
	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Completion cap sent with every request
	MaxTokens = 1500

	// Catalog cache duration
	CatalogCacheDuration = 1 * time.Hour

	// Session defaults
	DefaultModel        = "llama"
	DefaultPersona      = "assistant"
	DefaultTemperature  = 0.7
	DefaultMemoryWindow = 10

	// Parameter bounds
	TemperatureMin  = 0.0
	TemperatureMax  = 2.0
	MemoryWindowMin = 1
	MemoryWindowMax = 50

	// Session store limits
	SessionTTL             = 1 * time.Hour
	SessionCleanupInterval = 60 * time.Second
	MaxSessions            = 1000

	// Server shutdown grace period
	ShutdownTimeout = 10 * time.Second
)
