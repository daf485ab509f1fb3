// Package store defines the key-value service nsmap is layered on.
//
// The contract is deliberately small: single-key get/set/delete plus a key
// scan by glob pattern. Everything a map needs (sizes, key sets, values,
// purges) is rebuilt from these calls, so implementations must not keep
// namespace knowledge of their own.
//
// Values are plain text. Keys are opaque strings; the nsmap package owns the
// "<logical key><token>" layout and external code should not write keys that
// end in a live token.
package store

import "context"

// Store is a text key-value service. Must be safe for concurrent use.
// Each call is expected to be atomic on its own; nothing more is assumed.
type Store interface {
	// Get returns (value, true, nil) on hit; ("", false, nil) on miss.
	// If an IO/remote error happens, return ("", false, err).
	Get(ctx context.Context, key string) (string, bool, error)

	// Set overwrites key unconditionally and returns the value it replaced.
	// existed is false when the key was absent.
	Set(ctx context.Context, key, value string) (prev string, existed bool, err error)

	// Del removes keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// Scan returns every key matching a Redis-style glob pattern, each once.
	// The result is a point-in-time listing; it may be stale by the time the
	// caller reads it.
	Scan(ctx context.Context, pattern string) ([]string, error)

	// Close releases resources. Safe to call more than once.
	Close(ctx context.Context) error
}
