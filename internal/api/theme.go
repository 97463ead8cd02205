package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/middleware"
	"github.com/thejasondev/groundops/internal/models/dtos"
)

// GetTheme handles GET /api/v1/theme.
func (h *Handlers) GetTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "", dtos.ThemeDto{Theme: middleware.Theme(r.Context())})
	}
}

// SetTheme handles PUT /api/v1/theme: persists the preference through the
// same storage collaborator as everything else and echoes it as a cookie.
func (h *Handlers) SetTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ThemeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !middleware.IsValidTheme(req.Theme) {
			common.RespondError(w, initTime, nil, "Invalid theme", http.StatusBadRequest)
			return
		}

		if err := h.deps.KV.Set(r.Context(), string(constants.StorageKeyTheme), req.Theme); err != nil {
			common.RespondError(w, initTime, err, "Failed to persist theme")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:   "theme_preference",
			Value:  req.Theme,
			Path:   "/",
			MaxAge: int((365 * 24 * time.Hour).Seconds()),
		})
		common.RespondSuccess(w, initTime, "Theme updated", dtos.ThemeDto{Theme: req.Theme})
	}
}
