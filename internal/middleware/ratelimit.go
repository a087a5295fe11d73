package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkondo/nexttrack/internal/model"
)

// RateLimiterConfig holds the rate limit settings.
type RateLimiterConfig struct {
	Rate            rate.Limit    // requests per second per tenant
	Burst           int           // burst size per tenant
	CleanupInterval time.Duration // stale entry cleanup interval
	MaxIdle         time.Duration // entries idle longer than this are dropped
}

// DefaultRateLimiterConfig returns the default settings: 120 req/min per
// tenant with a matching burst.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Rate:            rate.Limit(120.0 / 60.0),
		Burst:           120,
		CleanupInterval: 5 * time.Minute,
		MaxIdle:         15 * time.Minute,
	}
}

// ConfigForRequestsPerMinute derives a RateLimiterConfig from a per-minute
// request budget, which is how the limit is configured in the environment.
func ConfigForRequestsPerMinute(perMinute int) RateLimiterConfig {
	cfg := DefaultRateLimiterConfig()
	if perMinute > 0 {
		cfg.Rate = rate.Limit(float64(perMinute) / 60.0)
		cfg.Burst = perMinute
	}
	return cfg
}

// tenantLimiter pairs a limiter with its last access time.
type tenantLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter enforces a per-tenant request rate. Each tenant gets its own
// token bucket so one noisy tenant cannot starve the others.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.RWMutex
	limiters map[string]*tenantLimiter

	stopCh chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts the background cleanup of
// stale entries.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*tenantLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop halts the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware returns the per-tenant rate limiting middleware. It must sit
// after the tenant middleware in the chain.
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, err := TenantIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusBadRequest, model.NewMissingTenantError())
				return
			}

			limiter := rl.getOrCreateLimiter(tenantID)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.Rate)
				slog.Warn("rate limit exceeded",
					slog.String("tenant_id", tenantID),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimiterCount returns the number of tracked tenant limiters.
// For tests and metrics.
func (rl *RateLimiter) LimiterCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// getOrCreateLimiter fetches or creates the tenant's limiter.
func (rl *RateLimiter) getOrCreateLimiter(tenantID string) *rate.Limiter {
	rl.mu.RLock()
	tl, exists := rl.limiters[tenantID]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		tl.lastAccess = time.Now()
		rl.mu.Unlock()
		return tl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// double-check under the write lock
	if tl, exists := rl.limiters[tenantID]; exists {
		tl.lastAccess = time.Now()
		return tl.limiter
	}

	limiter := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	rl.limiters[tenantID] = &tenantLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop periodically drops limiters for tenants that went quiet.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup removes entries whose last access exceeded MaxIdle.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.config.MaxIdle)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for tenantID, tl := range rl.limiters {
		if tl.lastAccess.Before(cutoff) {
			delete(rl.limiters, tenantID)
		}
	}
}

// writeRateLimitResponse writes the 429 response with a Retry-After hint
// derived from the refill rate.
func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	retryAfter := 1
	if limit > 0 {
		retryAfter = int(math.Ceil(1.0 / float64(limit)))
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:     "RATE_LIMITED",
		Message:  "too many requests",
		Category: "system",
		Action:   "Slow down and retry after the indicated delay.",
	})
}
