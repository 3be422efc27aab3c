package util

import "go.uber.org/zap"

// Logger is the structured logger type threaded through engine, persist
// and ui, kept as a plain alias so callers import zap directly for
// field constructors (zap.String, zap.Error, ...) without a wrapper API.
type Logger = *zap.Logger

// NewLogger builds the process-wide logger: human-readable console
// output in development, JSON in production.
func NewLogger(debug bool) (Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
