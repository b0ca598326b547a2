package cacheaside

import "time"

const (
	// DefaultWindow is how long an entry is served without recomputation.
	DefaultWindow = 30 * time.Minute
	defaultNS     = "entry"
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
