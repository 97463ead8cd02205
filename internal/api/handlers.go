package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/thejasondev/groundops/internal/common"
	"github.com/thejasondev/groundops/internal/models/dtos"
	"github.com/thejasondev/groundops/internal/services"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// GenerateDashboardLinkHandler issues a presigned dashboard token for an
// operator station.
func (h *Handlers) GenerateDashboardLinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.DashboardLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Station == "" {
			common.RespondError(w, initTime, nil, "Invalid station payload", http.StatusBadRequest)
			return
		}

		token, err := h.deps.Signer.GenerateDashboardToken(req.Station, 15*time.Minute)
		if err != nil {
			common.RespondError(w, initTime, err, "Failed to generate token")
			return
		}

		data := map[string]any{
			"url":        r.Host + "/?token=" + token,
			"expires_in": 900,
		}
		common.RespondSuccess(w, initTime, "Dashboard link generated", data)
	}
}

// httpStatusFor maps store errors onto HTTP status codes.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrFlightNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSwitchConfirmationRequired),
		errors.Is(err, services.ErrFlightCompleted),
		errors.Is(err, services.ErrFlightNotActive),
		errors.Is(err, services.ErrEndBeforeStart):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnknownTask),
		errors.Is(err, services.ErrUnknownCollection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
