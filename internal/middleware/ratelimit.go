package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-authgate/coffeeshop/internal/config"
	"github.com/go-authgate/coffeeshop/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	RateLimitStoreMemory = config.RateLimitStoreMemory
	RateLimitStoreRedis  = config.RateLimitStoreRedis

	rateLimitPrefix = "ratelimit"
)

// RateLimitConfig configures the per-client request limiter.
type RateLimitConfig struct {
	RequestsPerMinute int
	StoreType         string
	CleanupInterval   time.Duration

	// Redis store settings; RedisClient takes precedence over the address.
	RedisClient   redis.UniversalClient
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Logger log.Logger
}

// NewRateLimiter returns a gin middleware limiting each client IP to
// RequestsPerMinute requests per minute.
func NewRateLimiter(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", cfg.RequestsPerMinute)
	}

	var (
		store limiter.Store
		err   error
	)
	switch cfg.StoreType {
	case RateLimitStoreMemory, "":
		interval := cfg.CleanupInterval
		if interval <= 0 {
			interval = limiter.DefaultCleanUpInterval
		}
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: interval,
		})
	case RateLimitStoreRedis:
		client := cfg.RedisClient
		if client == nil {
			client = redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix: rateLimitPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown rate limit store: %q", cfg.StoreType)
	}

	return newLimitMiddleware(store, cfg.RequestsPerMinute, cfg.Logger), nil
}

// newLimitMiddleware wraps store in the per-IP gin middleware. A store
// error is logged and the request proceeds to the next handler.
func newLimitMiddleware(store limiter.Store, requestsPerMinute int, l log.Logger) gin.HandlerFunc {
	rate := limiter.Rate{Period: time.Minute, Limit: int64(requestsPerMinute)}
	instance := limiter.New(store, rate, limiter.WithTrustForwardHeader(true))
	l = logger.OrNop(l)

	return mgin.NewMiddleware(
		instance,
		mgin.WithKeyGetter(func(c *gin.Context) string {
			return instance.GetIPKey(c.Request)
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   http.StatusTooManyRequests,
				"code":    "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
		}),
		// mgin aborts after the error handler returns, so the remaining
		// chain runs from here.
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			_ = level.Error(l).Log("msg", "rate limiter store failed, request not limited", "path", c.Request.URL.Path, "err", err)
			c.Next()
		}),
	)
}

// NewMemoryRateLimiter is a shorthand for an in-process store.
func NewMemoryRateLimiter(requestsPerMinute int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreMemory,
	})
}

// NewRedisRateLimiter shares limits across instances through Redis.
func NewRedisRateLimiter(requestsPerMinute int, addr, password string, db int) (gin.HandlerFunc, error) {
	return NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		StoreType:         RateLimitStoreRedis,
		RedisAddr:         addr,
		RedisPassword:     password,
		RedisDB:           db,
	})
}
