package httpx

import (
	"golang.org/x/time/rate"
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter keeps one token bucket per client IP. A bucket is forgotten ten
// minutes after it was created.
type RateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	ttl      time.Duration
}

func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &RateLimiter{
		visitors: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		ttl:      10 * time.Minute,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.visitors[ip]; ok {
		return l
	}
	l := rate.NewLimiter(rl.limit, rl.burst)
	rl.visitors[ip] = l
	time.AfterFunc(rl.ttl, func() {
		rl.mu.Lock()
		delete(rl.visitors, ip)
		rl.mu.Unlock()
	})
	return l
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if !rl.getLimiter(ip).Allow() {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
