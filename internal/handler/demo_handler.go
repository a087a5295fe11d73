package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkondo/nexttrack/internal/middleware"
	"github.com/mkondo/nexttrack/internal/model"
)

// DemoResetter resets the database to the demonstration data set.
type DemoResetter interface {
	// Reset clears and reseeds all data, returning the number of
	// opportunities created.
	Reset(ctx context.Context) (int, error)
}

// DemoHandler serves the demo control endpoint. Routed only when demo mode
// is enabled in the configuration.
type DemoHandler struct {
	resetter DemoResetter
}

// NewDemoHandler creates a DemoHandler.
func NewDemoHandler(resetter DemoResetter) *DemoHandler {
	return &DemoHandler{resetter: resetter}
}

// Reset restores the seed data for a repeatable demonstration.
// POST /api/v1/demo/reset
func (h *DemoHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.TenantIDFromContext(r.Context()); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingTenantError())
		return
	}

	count, err := h.resetter.Reset(r.Context())
	if err != nil {
		handleServiceError(w, model.NewStoreUnavailableError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(baseResponse{
		Success: true,
		Message: fmt.Sprintf("demo data reset: %d opportunities created", count),
	})
}
