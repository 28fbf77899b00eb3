package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/company-messenger/pkg/clientip"
)

// Message send rate limit: per user when authenticated, per IP otherwise.
// 2 msg/s, burst 20. Lets people type fast while blocking floods.
const (
	sendMessageRPS   = 2
	sendMessageBurst = 20
)

var sendMessageLimiters = newIPLimiters(func() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(sendMessageRPS), sendMessageBurst)
})

func isSendMessage(r *http.Request) bool {
	return r.Method == http.MethodPost &&
		strings.HasPrefix(r.URL.Path, "/api/conversations/") &&
		strings.HasSuffix(r.URL.Path, "/messages")
}

// SendMessageRateLimit applies only to POST /api/conversations/{id}/messages.
// Returns 429 with rate limit headers when exceeded.
func SendMessageRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isSendMessage(r) {
			next.ServeHTTP(w, r)
			return
		}

		key := "ip:" + clientip.RealClientIP(r)
		if u, ok := CurrentUser(r.Context()); ok {
			key = "user:" + u.ID
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(sendMessageBurst))
		if !sendMessageLimiters.get(key).Allow() {
			w.Header().Set("X-RateLimit-Remaining", "0")
			writeError(w, http.StatusTooManyRequests, "You are sending messages too quickly. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
