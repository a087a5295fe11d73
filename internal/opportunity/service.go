// Package opportunity provides the due-action query and action-completion
// domain logic.
package opportunity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mkondo/nexttrack/internal/model"
	"github.com/mkondo/nexttrack/internal/repository"
)

// Metrics receives domain-level counters. Satisfied by metrics.Collector.
type Metrics interface {
	RecordDueQuery(count int)
	RecordCompletion()
	RecordStoreError()
}

// noopMetrics is used when no collector is wired, e.g. in tests.
type noopMetrics struct{}

func (noopMetrics) RecordDueQuery(int) {}
func (noopMetrics) RecordCompletion()  {}
func (noopMetrics) RecordStoreError()  {}

// Service implements the tenant-scoped opportunity workflow: listing due
// actions and atomically completing one while scheduling its successor.
type Service struct {
	repo    repository.OpportunityRepository
	metrics Metrics
}

// NewService creates a Service. metrics may be nil.
func NewService(repo repository.OpportunityRepository, metrics Metrics) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{repo: repo, metrics: metrics}
}

// ListDue returns the tenant's due opportunities ordered ascending by
// next_action_at. An unknown tenant yields an empty list, identical to a
// tenant with no due actions: the system performs no authentication, so
// absence of data is not distinguished from absence of the tenant.
func (s *Service) ListDue(ctx context.Context, tenantID string) ([]model.DueOpportunity, error) {
	due, err := s.repo.ListDue(ctx, tenantID)
	if err != nil {
		slog.Error("failed to list due opportunities",
			slog.String("tenant_id", tenantID),
			slog.String("error", err.Error()),
		)
		s.metrics.RecordStoreError()
		return nil, model.NewStoreUnavailableError()
	}

	s.metrics.RecordDueQuery(len(due))
	return due, nil
}

// CompleteAction closes the opportunity's current action and schedules the
// next one. The workflow forbids closing an action without declaring its
// successor, so nextActionAt and nextActionDetails are both mandatory.
// Validation runs before any store access; the store transition itself is a
// single atomic row update.
func (s *Service) CompleteAction(ctx context.Context, tenantID, opportunityID string, nextActionAt time.Time, nextActionDetails string) error {
	if err := validateNextAction(nextActionAt, nextActionDetails); err != nil {
		return err
	}

	matched, err := s.repo.CompleteAction(ctx, tenantID, opportunityID, nextActionAt, nextActionDetails)
	if err != nil {
		slog.Error("failed to complete action",
			slog.String("tenant_id", tenantID),
			slog.String("opportunity_id", opportunityID),
			slog.String("error", err.Error()),
		)
		s.metrics.RecordStoreError()
		return model.NewStoreUnavailableError()
	}
	if !matched {
		// Wrong id, wrong tenant, or no such opportunity: one error for all
		// three, so the API never leaks another tenant's data through a
		// distinguishable response.
		return model.NewOpportunityNotFoundError()
	}

	slog.Info("action completed",
		slog.String("tenant_id", tenantID),
		slog.String("opportunity_id", opportunityID),
		slog.Time("next_action_at", nextActionAt),
	)
	s.metrics.RecordCompletion()
	return nil
}

// validateNextAction enforces the next-action pairing invariant on a
// completion payload.
func validateNextAction(at time.Time, details string) *model.APIError {
	if at.IsZero() {
		return model.NewValidationError("new_next_action_at is required")
	}
	if strings.TrimSpace(details) == "" {
		return model.NewValidationError("new_next_action_details must not be blank")
	}
	if len(details) > model.MaxDetailsLength {
		return model.NewValidationError(fmt.Sprintf("new_next_action_details must be at most %d characters", model.MaxDetailsLength))
	}
	return nil
}
