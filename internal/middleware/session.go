package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/AnshRaj112/lebdoc-backend/internal/services"
	"github.com/gorilla/websocket"
)

// SessionCookie carries the token for browser clients that do not send Authorization.
const SessionCookie = "session_token"

type ctxKey struct{}

// SessionResolver turns a token into the signed-in user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, bool, error)
}

// TokenFromRequest reads "Authorization: Bearer <token>", then the session cookie.
// Browser WebSocket clients cannot set headers, so upgrades may pass ?token= instead.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	if websocket.IsWebSocketUpgrade(r) {
		return r.URL.Query().Get("token")
	}
	return ""
}

// UserFromContext returns nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxKey{}).(*models.User)
	return u
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// Session attaches the session user, if any, to the request context.
func Session(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, ok, err := resolver.Resolve(r.Context(), token)
			if err != nil || !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func deny(w http.ResponseWriter, status int, message, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  false,
		"message":  message,
		"redirect": redirect,
	})
}

// RequireRole lets through only the given roles. Anonymous callers get 401 and a redirect
// to the landing page; signed-in callers with another role get 403 and their own dashboard.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				deny(w, http.StatusUnauthorized, "Authentication required", "/")
				return
			}
			if !user.HasRole(roles...) {
				deny(w, http.StatusForbidden, "You do not have access to this page", services.Home(user.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
