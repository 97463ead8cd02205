package middleware

import (
	"net/http"
	"strings"

	"github.com/thejasondev/groundops/internal/common"
)

// AuthMiddleware gates mutating routes. Two credentials are accepted: the
// station API key configured at deploy time, or a short-lived dashboard token
// issued by the token signer.
func AuthMiddleware(apiKey string, signer *common.TokenSignerService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			requestKey := r.Header.Get("X-API-Key")

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				token := strings.TrimPrefix(authHeader, "Bearer ")
				if _, err := signer.ValidateToken(token); err != nil {
					http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
					return
				}

			case requestKey != "":
				if apiKey == "" || requestKey != apiKey {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
