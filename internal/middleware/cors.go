package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS is permissive by default ("*"). Credentials are only allowed when
// ALLOWED_ORIGINS names explicit origins, since browsers reject a wildcard
// origin on credentialed requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	wildcard := false
	for _, o := range allowedOrigins {
		if o == "*" {
			wildcard = true
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}
