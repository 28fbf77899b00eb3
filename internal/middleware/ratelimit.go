package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/company-messenger/pkg/clientip"
)

const (
	// RateLimitWindow is 60 seconds
	RateLimitWindow = 60 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed per IP in the window
	RateLimitMaxRequests = 300
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 15 * time.Minute
)

// RedisRateLimit is a fixed-window per-IP limiter shared by every instance
// through Redis. An IP that exceeds the window is blocked for BlockedIPDuration.
// Redis failures let the request through.
func RedisRateLimit(client *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ipAddress := clientip.RealClientIP(r)
			blockedKey := BlockedIPKeyPrefix + ipAddress

			isBlocked, err := client.Exists(ctx, blockedKey).Result()
			if err == nil && isBlocked > 0 {
				writeError(w, http.StatusTooManyRequests, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
				return
			}

			rateLimitKey := RateLimitKeyPrefix + ipAddress
			n, err := client.Incr(ctx, rateLimitKey).Result()
			if err == nil && n == 1 {
				// First request in this window
				err = client.Expire(ctx, rateLimitKey, RateLimitWindow).Err()
			}
			if err != nil {
				// If Redis fails, allow the request (fail open)
				next.ServeHTTP(w, r)
				return
			}

			count := int(n)
			if count > RateLimitMaxRequests {
				client.Set(ctx, blockedKey, "1", BlockedIPDuration)
				w.Header().Set("Retry-After", strconv.Itoa(int(BlockedIPDuration.Seconds())))
				writeError(w, http.StatusTooManyRequests, fmt.Sprintf("Rate limit exceeded. Try again in %d minutes.", int(BlockedIPDuration.Minutes())))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(RateLimitMaxRequests-count))
			next.ServeHTTP(w, r)
		})
	}
}
