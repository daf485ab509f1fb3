package nsmap

import "time"

const (
	DefaultHost = "localhost"
	DefaultPort = 6379

	defaultCleanupTimeout = 5 * time.Second
	// keys per Del call when purging
	delBatch = 256
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
