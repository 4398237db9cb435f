package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleTTL = 10 * time.Minute

// MemoryLimiter keeps one token bucket per key.
type MemoryLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*entry
	limit     rate.Limit
	burst     int
	perMinute int
	now       func() time.Time
	lastSweep time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter refills requestsPerMinute tokens per minute and allows
// bursts of up to burst requests.
func NewMemoryLimiter(requestsPerMinute, burst int) *MemoryLimiter {
	if burst < 1 {
		burst = 1
	}
	return &MemoryLimiter{
		limiters:  make(map[string]*entry),
		limit:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     burst,
		perMinute: requestsPerMinute,
		now:       time.Now,
	}
}

func (m *MemoryLimiter) Backend() string { return "memory" }

func (m *MemoryLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := m.now()
	lim := m.get(key, now)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Allowed: false, Limit: m.perMinute, RetryAfter: time.Minute}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, Limit: m.perMinute, RetryAfter: delay}, nil
	}

	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: m.perMinute, Remaining: remaining}, nil
}

func (m *MemoryLimiter) get(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > idleTTL {
		for k, e := range m.limiters {
			if now.Sub(e.lastSeen) > idleTTL {
				delete(m.limiters, k)
			}
		}
		m.lastSweep = now
	}

	e, ok := m.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter
}
