// Package repository defines the persistence interfaces.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/mkondo/nexttrack/internal/model"
)

// TenantRepository persists tenants.
type TenantRepository interface {
	// FindByID returns the tenant with the given id, or nil when not found.
	FindByID(ctx context.Context, id string) (*model.Tenant, error)

	// Create inserts a tenant.
	Create(ctx context.Context, tenant *model.Tenant) error
}

// OpportunityRepository persists opportunities. Every method that targets a
// single row takes both the opportunity id and the owning tenant id; an id
// alone never suffices.
type OpportunityRepository interface {
	// FindByID returns the opportunity matching (id, tenantID), or nil when
	// no such row exists for that tenant.
	FindByID(ctx context.Context, tenantID, id string) (*model.Opportunity, error)

	// Create inserts an opportunity.
	Create(ctx context.Context, opp *model.Opportunity) error

	// ListDue returns the tenant's opportunities whose next action is due,
	// i.e. next_action_at is set and not after the store's current time.
	// Ordered ascending by next_action_at with id as the tiebreak, so an
	// unchanged data set always yields the identical sequence.
	// An empty result is normal and returns an empty slice, not an error.
	ListDue(ctx context.Context, tenantID string) ([]model.DueOpportunity, error)

	// CompleteAction atomically closes the current action and schedules the
	// next one: next_action_at and next_action_details are replaced while
	// last_activity_at and updated_at refresh to the store's current time,
	// all in one guarded statement. Returns false when no row matched
	// (id, tenantID) — callers cannot tell a missing row from another
	// tenant's row, which is the point.
	CompleteAction(ctx context.Context, tenantID, id string, nextActionAt time.Time, nextActionDetails string) (bool, error)
}

// TxBeginner starts transactions. Used by operations that span multiple
// statements, such as the demo reset.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
