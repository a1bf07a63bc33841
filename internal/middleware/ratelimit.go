package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerWindow int           // Number of requests allowed per window
	Window            time.Duration // Length of each fixed window
	KeyPrefix         string        // Redis key prefix

	// Clock defaults to time.Now
	Clock func() time.Time
}

// RateLimitMiddleware counts requests per client in fixed windows aligned to
// Window. Each window has its own Redis key, e.g. "prefix:client:1700000000",
// which expires once the window has passed. Redis failures let the request
// through.
func RateLimitMiddleware(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	limit := strconv.Itoa(config.RequestsPerWindow)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientID := rateLimitClient(r)

			windowStart := clock().Truncate(config.Window)
			windowEnd := windowStart.Add(config.Window)
			key := fmt.Sprintf("%s:%s:%d", config.KeyPrefix, clientID, windowStart.Unix())

			pipe := redisClient.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireAt(ctx, key, windowEnd)
			if _, err := pipe.Exec(ctx); err != nil {
				logger.Error("Failed to increment rate limit counter",
					zap.Error(err),
					zap.String("key", key),
				)
				next.ServeHTTP(w, r)
				return
			}
			count := incr.Val()

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(windowEnd.Unix(), 10))

			if count > int64(config.RequestsPerWindow) {
				retryAfter := int(windowEnd.Sub(clock()).Seconds() + 0.5)
				if retryAfter < 1 {
					retryAfter = 1
				}

				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.Int64("count", count),
					zap.Int("limit", config.RequestsPerWindow),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(config.RequestsPerWindow)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitClient keys sessions by session id and anonymous callers by address
func rateLimitClient(r *http.Request) string {
	if sessionID, ok := GetSessionID(r.Context()); ok {
		return "session:" + sessionID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
