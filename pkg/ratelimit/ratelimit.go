// Package ratelimit provides a fixed-window request limiter keyed by
// client IP.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

type bucket struct {
	ts     time.Time // window start
	tokens int       // remaining tokens
}

// Limiter allows max requests per window per IP. Stale buckets are pruned
// lazily so the map stays bounded by recently-seen clients.
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	max       int
	per       time.Duration
	lastPrune time.Time
}

// New creates a limiter allowing max requests per window.
func New(max int, per time.Duration) *Limiter {
	return &Limiter{buckets: map[string]*bucket{}, max: max, per: per, lastPrune: time.Now()}
}

// Allow reports whether a request from ip fits in the current window and
// consumes a token if it does.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastPrune) > 10*l.per {
		for k, b := range l.buckets {
			if now.Sub(b.ts) > l.per {
				delete(l.buckets, k)
			}
		}
		l.lastPrune = now
	}

	b := l.buckets[ip]
	if b == nil || now.Sub(b.ts) > l.per {
		b = &bucket{ts: now, tokens: l.max}
		l.buckets[ip] = b
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Middleware enforces the limit before calling the next handler.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			ip = req.RemoteAddr
		}
		if !l.Allow(ip) {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}
