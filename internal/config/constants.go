package config

import "time"

const (
	// Session partition key
	SessionHeader    = "x-session-id"
	AnonymousSession = "anonymous"

	// HTTP server timeouts
	ReadTimeout     = 60 * time.Second
	IdleTimeout     = 60 * time.Second
	ShutdownTimeout = 5 * time.Second

	// Stale rate-limit window cleanup
	StaleWindowCleanup = 60 * time.Second
	StaleWindowAge     = 3 * time.Minute

	// Health check DB ping timeout
	PingTimeout = 2 * time.Second
)
