package api

import (
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	bucketIdleThreshold = 1 * time.Hour
	bucketSweepInterval = 30 * time.Minute
)

type clientBucket struct {
	tokens     int
	lastRefill time.Time
}

// RateLimiter is a per-IP token bucket. Buckets refill to capacity once
// per refill window; idle buckets are swept in the background.
type RateLimiter struct {
	mu        sync.Mutex
	capacity  int
	refillDur time.Duration
	clients   map[string]*clientBucket
	stopSweep chan struct{}
}

func NewRateLimiter(capacity int, refillDur time.Duration) *RateLimiter {
	rl := &RateLimiter{
		capacity:  capacity,
		refillDur: refillDur,
		clients:   make(map[string]*clientBucket),
		stopSweep: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (r *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stopSweep:
			return
		}
	}
}

func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for ip, bucket := range r.clients {
		if now.Sub(bucket.lastRefill) > bucketIdleThreshold {
			delete(r.clients, ip)
		}
	}
}

func (r *RateLimiter) Stop() {
	close(r.stopSweep)
}

func (r *RateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	bucket, exists := r.clients[ip]

	if !exists {
		r.clients[ip] = &clientBucket{
			tokens:     r.capacity - 1,
			lastRefill: now,
		}
		return true
	}

	if now.Sub(bucket.lastRefill) >= r.refillDur {
		bucket.tokens = r.capacity
		bucket.lastRefill = now
	}

	if bucket.tokens <= 0 {
		return false
	}

	bucket.tokens--
	return true
}

// WithRateLimit wraps next with the per-IP limiter. A nil limiter is a
// no-op.
func WithRateLimit(limiter *RateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !limiter.Allow(ip) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
