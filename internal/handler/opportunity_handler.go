package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkondo/nexttrack/internal/middleware"
	"github.com/mkondo/nexttrack/internal/model"
)

// OpportunityServiceInterface is the service interface the opportunity
// handler depends on.
type OpportunityServiceInterface interface {
	// ListDue returns the tenant's due opportunities, oldest first.
	ListDue(ctx context.Context, tenantID string) ([]model.DueOpportunity, error)
	// CompleteAction atomically closes the current action and schedules the
	// next one.
	CompleteAction(ctx context.Context, tenantID, opportunityID string, nextActionAt time.Time, nextActionDetails string) error
}

// OpportunityHandler serves the opportunity workflow endpoints.
type OpportunityHandler struct {
	service OpportunityServiceInterface
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(service OpportunityServiceInterface) *OpportunityHandler {
	return &OpportunityHandler{service: service}
}

// --- request/response types ---

// dueOpportunityResponse is one entry of the due-action list.
type dueOpportunityResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Value             *int64    `json:"value"`
	Stage             string    `json:"stage"`
	NextActionAt      time.Time `json:"next_action_at"`
	NextActionDetails string    `json:"next_action_details"`
}

// completeActionRequest is the completion request body.
type completeActionRequest struct {
	NewNextActionAt      *time.Time `json:"new_next_action_at"`
	NewNextActionDetails string     `json:"new_next_action_details"`
}

// baseResponse is the success acknowledgment envelope.
type baseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// apiErrorResponse is the unified error response format.
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListDue returns the opportunities with actions due now or earlier.
// GET /api/v1/opportunities/due
func (h *OpportunityHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	tenantID, err := middleware.TenantIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingTenantError())
		return
	}

	due, err := h.service.ListDue(r.Context(), tenantID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]dueOpportunityResponse, len(due))
	for i, d := range due {
		resp[i] = dueOpportunityResponse{
			ID:                d.ID,
			Name:              d.Name,
			Value:             d.Value,
			Stage:             d.Stage,
			NextActionAt:      d.NextActionAt,
			NextActionDetails: d.NextActionDetails,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CompleteAction closes the opportunity's current action and schedules the
// next one. The body must declare the successor: the workflow never closes
// an action without one.
// POST /api/v1/opportunities/{id}/complete_action
func (h *OpportunityHandler) CompleteAction(w http.ResponseWriter, r *http.Request) {
	tenantID, err := middleware.TenantIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingTenantError())
		return
	}

	opportunityID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(opportunityID); err != nil {
		// A malformed id can never match a row; report it the same way.
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewOpportunityNotFoundError())
		return
	}

	var req completeActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("request body must be valid JSON"))
		return
	}
	if req.NewNextActionAt == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("new_next_action_at is required"))
		return
	}

	if err := h.service.CompleteAction(r.Context(), tenantID, opportunityID, *req.NewNextActionAt, req.NewNextActionDetails); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(baseResponse{
		Success: true,
		Message: "action completed and next action scheduled",
	})
}

// writeAPIErrorResponse writes an error response in the unified format.
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError maps a service-layer error to an HTTP response.
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// Anything outside the closed error set is an internal error.
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "an internal error occurred",
		Category: "system",
		Action:   "Wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus maps an APIError code to an HTTP status code.
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeMissingTenant, model.ErrCodeInvalidTenantFormat, model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeOpportunityNotFound:
		return http.StatusNotFound
	case model.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
