package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/heartmarshall/memorygym-backend/internal/config"
	"github.com/heartmarshall/memorygym-backend/pkg/ctxutil"
)

// RateLimiter implements token bucket rate limiting keyed by the
// authenticated user, or by client IP for anonymous requests.
type RateLimiter struct {
	buckets    sync.Map // map[string]*bucket
	capacity   float64
	refillRate float64 // tokens per second
	idleAfter  time.Duration
	cleanup    time.Duration
	now        func() time.Time
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter builds a limiter from config. RequestsPerWindow tokens are
// refilled evenly over Window.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	capacity := float64(max(cfg.RequestsPerWindow, 1))
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 5 * time.Minute
	}
	return &RateLimiter{
		capacity:   capacity,
		refillRate: capacity / window.Seconds(),
		idleAfter:  2 * window,
		cleanup:    cleanup,
		now:        time.Now,
	}
}

// Limit returns middleware that rejects requests over the budget with 429.
// It must run after Auth so that authenticated users get their own bucket.
func (rl *RateLimiter) Limit() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ok, wait := rl.allow(clientKey(r)); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded","code":"RATE_LIMITED"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Run evicts idle buckets until ctx is cancelled.
func (rl *RateLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()
	rl.buckets.Range(func(key, value any) bool {
		b := value.(*bucket)
		b.mu.Lock()
		idle := now.Sub(b.lastRefill)
		b.mu.Unlock()
		if idle > rl.idleAfter {
			rl.buckets.Delete(key)
		}
		return true
	})
}

// allow takes one token for key. When empty it returns the time until the
// next token is available.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()
	val, _ := rl.buckets.LoadOrStore(key, &bucket{tokens: rl.capacity, lastRefill: now})
	b := val.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = math.Min(rl.capacity, b.tokens+now.Sub(b.lastRefill).Seconds()*rl.refillRate)
	b.lastRefill = now

	if b.tokens < 1 {
		missing := 1 - b.tokens
		return false, time.Duration(missing / rl.refillRate * float64(time.Second))
	}
	b.tokens--
	return true, 0
}

func clientKey(r *http.Request) string {
	if userID, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
