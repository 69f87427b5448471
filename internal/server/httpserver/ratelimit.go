// Package httpserver provides the HTTPS server for deckshare.
package httpserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused client limiter is kept.
const limiterIdleTTL = 3 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterRegistry manages one token bucket per client IP.
type RateLimiterRegistry struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiterRegistry creates a registry allowing rps requests per second
// per client with the given burst.
func NewRateLimiterRegistry(rps float64, burst int) *RateLimiterRegistry {
	return &RateLimiterRegistry{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether a request from ip may proceed.
func (r *RateLimiterRegistry) Allow(ip string) bool {
	r.mu.Lock()
	now := r.now()
	r.sweep(now)

	cl, ok := r.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[ip] = cl
	}
	cl.lastSeen = now
	r.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// sweep drops limiters idle for longer than limiterIdleTTL. Caller holds mu.
func (r *RateLimiterRegistry) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < time.Minute {
		return
	}
	r.lastSweep = now
	for ip, cl := range r.limiters {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(r.limiters, ip)
		}
	}
}
