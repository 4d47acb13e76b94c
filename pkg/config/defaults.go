package config

import "time"

const (
	DefaultAPIBaseURL = "http://localhost:8000"
	DefaultStreamPath = "/api/stream"

	DefaultLogLevel = "info"

	// Holds are short by design: two minutes to decide, then the seat goes
	// back into the pool.
	DefaultHoldTTL      = 2 * time.Minute
	DefaultTickInterval = 1 * time.Second

	DefaultRequestTimeout = 10 * time.Second

	DefaultStreamReconnect      = false
	DefaultStreamBackoffInitial = 1 * time.Second
	DefaultStreamBackoffMax     = 30 * time.Second
)
