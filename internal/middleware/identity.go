package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	userIDKey     contextKey = "user_id"
	loggedUserKey contextKey = "logged_user"
)

// SessionValidator resolves a session token to a user id.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (int64, error)
}

// Identity attaches the logged-in user id to the request context when the
// request carries a valid session cookie or Bearer token. Anonymous requests
// pass through untouched.
func Identity(sessions SessionValidator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			if id, err := sessions.Validate(r.Context(), token); err == nil {
				if p, ok := r.Context().Value(loggedUserKey).(*int64); ok {
					*p = id
				}
				r = r.WithContext(WithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects requests without a resolved user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// SessionToken reads the session cookie, falling back to an Authorization
// Bearer header for API clients.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
