package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AnshRaj112/company-messenger/internal/models"
)

// SessionValidator resolves a bearer token to a user id.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (string, bool, error)
}

// UserLookup finds a user by id.
type UserLookup interface {
	User(id string) (models.User, bool)
}

// DisabledChecker reports whether the administrator has switched the app off.
type DisabledChecker interface {
	AppDisabled() bool
}

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
)

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequestToken reads the session token from the Authorization header, falling
// back to the "token" query parameter for browser WebSocket clients.
func RequestToken(r *http.Request) string {
	if token := ExtractBearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

// RequireAuth rejects requests without a valid session and stores the session
// user in the request context.
func RequireAuth(sessions SessionValidator, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := RequestToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			userID, ok, err := sessions.Validate(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to validate session")
				return
			}
			if !ok {
				writeError(w, http.StatusUnauthorized, "Session expired. Please log in again.")
				return
			}
			user, ok := users.User(userID)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Session expired. Please log in again.")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok || !u.IsAdmin {
			writeError(w, http.StatusForbidden, "Administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AppDisabledGate answers 503 to non-admin users while the app is disabled.
// It must run after RequireAuth.
func AppDisabledGate(checker DisabledChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := CurrentUser(r.Context()); ok && u.IsAdmin {
				next.ServeHTTP(w, r)
				return
			}
			if checker.AppDisabled() {
				writeError(w, http.StatusServiceUnavailable, "The application is currently disabled by the administrator.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// SessionToken returns the token stored by RequireAuth.
func SessionToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// WithUser returns a context carrying u, as RequireAuth would.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
