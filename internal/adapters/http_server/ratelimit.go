package httpserver

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// UserLimiter keeps one token bucket per caller for write routes. Buckets
// idle long enough to have refilled completely are dropped, so the map only
// holds recently active callers.
type UserLimiter struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
	bucket    map[string]*limiterEntry
}

func NewUserLimiter(rps float64, burst int) *UserLimiter {
	if burst <= 0 {
		burst = 1
	}
	l := &UserLimiter{
		rps:    rate.Limit(rps),
		burst:  burst,
		now:    time.Now,
		bucket: map[string]*limiterEntry{},
	}
	// an evicted caller restarts with a full bucket, which is only fair once
	// the old bucket would have refilled anyway
	if rps > 0 {
		l.idleTTL = max(limiterIdleTTL, time.Duration(float64(burst)/rps*float64(time.Second)))
	}
	return l
}

func (l *UserLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	if l.idleTTL > 0 && now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}
	e, ok := l.bucket[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.bucket[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

// sweep drops idle buckets; callers hold l.mu.
func (l *UserLimiter) sweep(now time.Time) {
	for k, e := range l.bucket {
		if now.Sub(e.lastSeen) >= l.idleTTL {
			delete(l.bucket, k)
		}
	}
	l.lastSweep = now
}

// Middleware keys on the authenticated user, falling back to the client IP.
func (l *UserLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := UserID(r.Context())
		if !ok {
			key = "ip:" + remoteIP(r)
		}
		if !l.Allow(key) {
			w.Header().Set("Retry-After", "1")
			writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "booking rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
