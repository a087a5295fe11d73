// Package middleware provides the HTTP middleware chain.
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkondo/nexttrack/internal/model"
)

// TenantHeader carries the caller-supplied tenant identifier.
const TenantHeader = "X-Tenant-ID"

// contextKey is a typed key for context values.
type contextKey string

// tenantIDContextKey stores the validated tenant id on the request context.
var tenantIDContextKey = contextKey("tenant_id")

// NewTenantMiddleware validates the X-Tenant-ID header and injects the
// normalized tenant id into the request context. It rejects requests before
// any business logic runs: a missing header yields MISSING_TENANT, a
// malformed one INVALID_TENANT_FORMAT. It deliberately does not check that
// the tenant exists — unknown tenants read as empty data downstream, since
// the system performs no authentication.
func NewTenantMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(TenantHeader)
			if header == "" {
				WriteErrorResponse(w, http.StatusBadRequest, model.NewMissingTenantError())
				return
			}

			tenantID, err := uuid.Parse(header)
			if err != nil {
				WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidTenantFormatError())
				return
			}

			ctx := context.WithValue(r.Context(), tenantIDContextKey, tenantID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TenantIDFromContext returns the validated tenant id from the request
// context. Only valid for requests that passed the tenant middleware.
func TenantIDFromContext(ctx context.Context) (string, error) {
	tenantID, ok := ctx.Value(tenantIDContextKey).(string)
	if !ok || tenantID == "" {
		return "", fmt.Errorf("tenant ID not found in context")
	}
	return tenantID, nil
}

// ContextWithTenantID injects a tenant id into the context.
// Used by tests and non-HTTP callers.
func ContextWithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDContextKey, tenantID)
}
