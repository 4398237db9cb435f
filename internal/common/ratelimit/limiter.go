// Package ratelimit bounds how often a single client may request drafts.
// The memory backend is per process; the redis backend shares one budget
// across every instance pointing at the same Redis.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the result of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Backend() string
}
