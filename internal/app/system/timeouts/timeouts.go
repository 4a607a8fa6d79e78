// Package timeouts holds the deadlines used around I/O in handlers and
// background jobs.
//
//   - Ping: health probes of the survey backend and MongoDB
//   - Fetch: one round trip to the survey backend
//   - Store: snapshot reads and writes in MongoDB
//   - Refresh: a whole catalog refresh (both backend fetches plus the snapshot save)
//
// Values start at the defaults below and may be replaced once at startup with
// Configure.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values.
const (
	DefaultPing    = 2 * time.Second
	DefaultFetch   = 10 * time.Second
	DefaultStore   = 5 * time.Second
	DefaultRefresh = 30 * time.Second
)

var mu sync.RWMutex

var current = Config{
	Ping:    DefaultPing,
	Fetch:   DefaultFetch,
	Store:   DefaultStore,
	Refresh: DefaultRefresh,
}

// Config holds timeout values. Zero fields are ignored by Configure.
type Config struct {
	Ping    time.Duration
	Fetch   time.Duration
	Store   time.Duration
	Refresh time.Duration
}

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return current.Ping
}

// Fetch returns the timeout for a single backend request.
func Fetch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return current.Fetch
}

// Store returns the timeout for snapshot persistence.
func Store() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return current.Store
}

// Refresh returns the timeout for a complete catalog refresh.
func Refresh() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return current.Refresh
}

// Configure overrides the non-zero fields of cfg. Call it during startup
// before handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		current.Ping = cfg.Ping
	}
	if cfg.Fetch > 0 {
		current.Fetch = cfg.Fetch
	}
	if cfg.Store > 0 {
		current.Store = cfg.Store
	}
	if cfg.Refresh > 0 {
		current.Refresh = cfg.Refresh
	}
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = Config{
		Ping:    DefaultPing,
		Fetch:   DefaultFetch,
		Store:   DefaultStore,
		Refresh: DefaultRefresh,
	}
}

// Current returns the active configuration, for logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout derives a context with the given timeout. The returned cancel
// func logs a warning when the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Refresh(), log, "catalog refresh")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
