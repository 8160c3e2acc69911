package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/tenant-config-api/pkg/errors"
	"github.com/noah-isme/tenant-config-api/pkg/response"
)

// RateLimiterConfig tunes RateLimiter.
type RateLimiterConfig struct {
	RPS     float64
	Burst   int
	IdleTTL time.Duration
}

// RateLimiter keeps one token bucket per key. Buckets unused for IdleTTL are forgotten.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *ttlcache.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter constructs a RateLimiter.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		limiters: ttlcache.New(
			ttlcache.WithTTL[string, *rate.Limiter](cfg.IdleTTL),
		),
		limit: rate.Limit(cfg.RPS),
		burst: cfg.Burst,
	}
}

// Allow consumes a token for key and reports whether the call may proceed together with
// the tokens left.
func (r *RateLimiter) Allow(key string) (bool, float64) {
	limiter := r.limiter(key)
	allowed := limiter.Allow()
	return allowed, limiter.Tokens()
}

// Sweep releases idle buckets. Idle buckets are already ignored by Allow; this only frees
// their memory.
func (r *RateLimiter) Sweep() {
	r.limiters.DeleteExpired()
}

// Len returns the number of live buckets.
func (r *RateLimiter) Len() int {
	return r.limiters.Len()
}

func (r *RateLimiter) limiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item := r.limiters.Get(key); item != nil {
		return item.Value()
	}
	limiter := rate.NewLimiter(r.limit, r.burst)
	r.limiters.Set(key, limiter, ttlcache.DefaultTTL)
	return limiter
}

// RateLimit rejects callers over their budget with 429. Authenticated callers are keyed by
// user id, anonymous ones by client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if claims := Claims(c); claims != nil {
			key = "user:" + claims.UserID
		}
		allowed, remaining := limiter.Allow(key)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(remaining)))
		if !allowed {
			c.Header("Retry-After", "1")
			response.Error(c, appErrors.ErrRateLimited)
			c.Abort()
			return
		}
		SetMeta(c, "rate_limit_remaining", int(remaining))
		c.Next()
	}
}
