package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/NomadCrew/nomad-split-backend/config"
	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:write:"

// WriteRateLimiter limits mutating requests per authenticated user with a fixed
// window counter in Redis. Reads pass through. When Redis is unavailable the
// request is let through.
func WriteRateLimiter(redisClient redis.UniversalClient, cfg config.RateLimitConfig) gin.HandlerFunc {
	limit := cfg.RequestsPerMinute
	window := time.Duration(cfg.WindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	return func(c *gin.Context) {
		if isReadOnly(c.Request.Method) || limit <= 0 {
			c.Next()
			return
		}

		identifier := GetUserID(c)
		if identifier == "" {
			identifier = "ip:" + c.ClientIP()
		}
		key := rateLimitKeyPrefix + identifier
		ctx := c.Request.Context()

		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			logger.GetLogger().Warnw("Rate limit check failed, allowing request", "key", key, "error", err)
			c.Next()
			return
		}
		if count == 1 {
			// first hit opens the window
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		if count > int64(limit) {
			ttl, err := redisClient.TTL(ctx, key).Result()
			if err != nil || ttl <= 0 {
				ttl = window
			}
			retryAfter := int(ttl.Round(time.Second).Seconds())
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			_ = c.Error(apperrors.RateLimitExceeded("Too many requests. Please try again later.", retryAfter))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
		c.Next()
	}
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
