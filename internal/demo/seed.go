// Package demo seeds and resets demonstration data.
package demo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkondo/nexttrack/internal/model"
	"github.com/mkondo/nexttrack/internal/repository"
)

// Fixed tenant ids so demos and isolation tests are repeatable.
const (
	DemoTenantID   = "550e8400-e29b-41d4-a716-446655440000"
	SecondTenantID = "550e8400-e29b-41d4-a716-446655440001"
)

// Service resets the database to a known demonstration state.
// Not for production use: the reset deletes every row.
type Service struct {
	db repository.TxBeginner
}

// NewService creates a demo Service.
func NewService(db repository.TxBeginner) *Service {
	return &Service{db: db}
}

// Reset clears all tenants and opportunities and reseeds the demo data set
// within a single transaction, so a concurrent reader sees either the old
// data or the new data, never a half-cleared state.
// Returns the number of opportunities seeded.
func (s *Service) Reset(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM opportunities`); err != nil {
		return 0, fmt.Errorf("failed to clear opportunities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tenants`); err != nil {
		return 0, fmt.Errorf("failed to clear tenants: %w", err)
	}

	if err := seedTenants(ctx, tx); err != nil {
		return 0, err
	}

	opportunities := seedOpportunities(time.Now().UTC())
	for _, opp := range opportunities {
		if err := insertOpportunity(ctx, tx, opp); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reset transaction: %w", err)
	}

	slog.Info("demo data reset",
		slog.Int("tenants", 2),
		slog.Int("opportunities", len(opportunities)),
	)

	return len(opportunities), nil
}

func seedTenants(ctx context.Context, tx *sql.Tx) error {
	tenants := []model.Tenant{
		{ID: DemoTenantID, Name: "Demo Company"},
		{ID: SecondTenantID, Name: "Test Organization"},
	}

	for _, tenant := range tenants {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tenants (id, name) VALUES ($1, $2)`,
			tenant.ID, tenant.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to seed tenant %s: %w", tenant.Name, err)
		}
	}
	return nil
}

// seedOpportunities builds the demo data set relative to now: a spread of
// overdue, due-today and future actions, plus one row in the second tenant
// for demonstrating isolation.
func seedOpportunities(now time.Time) []model.Opportunity {
	day := 24 * time.Hour

	build := func(tenantID, name string, value int64, stage string, dueIn, lastActive time.Duration, details string) model.Opportunity {
		at := now.Add(dueIn)
		opp := model.Opportunity{
			ID:                uuid.NewString(),
			TenantID:          tenantID,
			Name:              name,
			Stage:             stage,
			NextActionAt:      &at,
			NextActionDetails: details,
			LastActivityAt:    now.Add(lastActive),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if value > 0 {
			opp.Value = &value
		}
		return opp
	}

	return []model.Opportunity{
		build(DemoTenantID, "Enterprise Deal - Acme Corp", 50000, "Proposal", -7*day, -8*day, "Follow up on proposal feedback"),
		build(DemoTenantID, "Mid-Market - TechStart Inc", 25000, "Negotiation", -2*day, -3*day, "Send revised pricing"),
		build(DemoTenantID, "SMB Deal - Local Business", 5000, "Discovery", 0, -6*time.Hour, "Schedule demo call"),
		build(DemoTenantID, "Renewal - Existing Customer", 15000, "Closed Won", -1*day, -2*day, "Send renewal contract"),
		build(DemoTenantID, "Future Opportunity", 30000, "Qualification", 3*day, -2*time.Hour, "Initial discovery call"),
		build(DemoTenantID, "Healthcare Solutions Inc", 120000, "Negotiation", -5*day, -6*day, "Review contract terms and prepare counter-proposal"),
		build(SecondTenantID, "Different Tenant Deal", 40000, "Discovery", -2*time.Hour, -3*time.Hour, "This should not appear for Demo Company tenant"),
	}
}

func insertOpportunity(ctx context.Context, tx *sql.Tx, opp model.Opportunity) error {
	var value sql.NullInt64
	if opp.Value != nil {
		value = sql.NullInt64{Int64: *opp.Value, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO opportunities (id, tenant_id, name, value, stage,
		                            next_action_at, next_action_details,
		                            last_activity_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		opp.ID, opp.TenantID, opp.Name, value, opp.Stage,
		opp.NextActionAt, opp.NextActionDetails,
		opp.LastActivityAt, opp.CreatedAt, opp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to seed opportunity %s: %w", opp.Name, err)
	}
	return nil
}
