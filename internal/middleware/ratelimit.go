package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
)

const (
	// SubmissionWindow is the fixed window for public write endpoints
	SubmissionWindow = 120 * time.Second
	// SubmissionMaxRequests is the number of writes allowed per IP in the window
	SubmissionMaxRequests = 25
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = time.Hour
)

// SubmissionRateLimit caps POST/PUT/DELETE traffic per IP across instances using Redis
// counters, so click events, reviews and messages cannot be flooded. An IP that exceeds
// the window is blocked for BlockedIPDuration. Reads pass through; a nil client disables
// the limiter, and Redis errors fail open.
func SubmissionRateLimit(client *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			ip := clientip.RealClientIP(r)

			blocked, err := client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
			if err == nil && blocked > 0 {
				tooMany(w, `{"success":false,"message":"Your IP has been temporarily blocked due to excessive requests. Please try again later."}`)
				return
			}

			key := RateLimitKeyPrefix + ip
			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, key, SubmissionWindow)
			}

			if count > SubmissionMaxRequests {
				client.Set(ctx, BlockedIPKeyPrefix+ip, "1", BlockedIPDuration)
				tooMany(w, fmt.Sprintf(`{"success":false,"message":"Rate limit exceeded. Please try again later.","retry_after":%d}`, int(SubmissionWindow.Seconds())))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(SubmissionMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(SubmissionMaxRequests-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}

func tooMany(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(body))
}
