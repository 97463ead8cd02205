package middleware

import (
	"context"
	"net/http"

	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/db"
)

const themeKey contextKey = "theme"

var validThemes = map[string]bool{
	"light":         true,
	"dark":          true,
	"high-contrast": true,
}

// ThemeMiddleware resolves the dashboard theme preference and injects it into
// the request context: cookie first, then the preference persisted in the KV
// store, then "light". The theme is explicit context state, not a process
// global.
func ThemeMiddleware(kv db.KVStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			theme := ""

			if cookie, err := r.Cookie("theme_preference"); err == nil && cookie.Value != "" {
				theme = cookie.Value
			}

			if theme == "" {
				if stored, found, err := kv.Get(r.Context(), string(constants.StorageKeyTheme)); err == nil && found {
					theme = stored
				}
			}

			if !validThemes[theme] {
				theme = "light"
			}

			ctx := context.WithValue(r.Context(), themeKey, theme)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Theme returns the resolved theme from the context, or "light".
func Theme(ctx context.Context) string {
	if theme, ok := ctx.Value(themeKey).(string); ok && theme != "" {
		return theme
	}
	return "light"
}

// IsValidTheme reports whether the name is an accepted theme.
func IsValidTheme(name string) bool {
	return validThemes[name]
}
