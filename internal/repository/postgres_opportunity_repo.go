package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkondo/nexttrack/internal/model"
)

// PostgresOpportunityRepo is the PostgreSQL-backed opportunity repository.
type PostgresOpportunityRepo struct {
	db *sql.DB
}

// NewPostgresOpportunityRepo creates a PostgresOpportunityRepo.
func NewPostgresOpportunityRepo(db *sql.DB) *PostgresOpportunityRepo {
	return &PostgresOpportunityRepo{db: db}
}

// FindByID returns the opportunity matching (id, tenantID), or nil when no
// such row exists for that tenant.
func (r *PostgresOpportunityRepo) FindByID(ctx context.Context, tenantID, id string) (*model.Opportunity, error) {
	opp := &model.Opportunity{}
	var value sql.NullInt64
	var nextActionAt sql.NullTime
	var nextActionDetails sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, value, stage, next_action_at,
		        next_action_details, last_activity_at, created_at, updated_at
		 FROM opportunities WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(
		&opp.ID, &opp.TenantID, &opp.Name, &value, &opp.Stage,
		&nextActionAt, &nextActionDetails,
		&opp.LastActivityAt, &opp.CreatedAt, &opp.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find opportunity: %w", err)
	}

	if value.Valid {
		opp.Value = &value.Int64
	}
	if nextActionAt.Valid {
		t := nextActionAt.Time
		opp.NextActionAt = &t
	}
	opp.NextActionDetails = nullStringValue(nextActionDetails)

	return opp, nil
}

// Create inserts an opportunity.
func (r *PostgresOpportunityRepo) Create(ctx context.Context, opp *model.Opportunity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO opportunities (id, tenant_id, name, value, stage,
		                            next_action_at, next_action_details,
		                            last_activity_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		opp.ID, opp.TenantID, opp.Name, nullInt64(opp.Value), opp.Stage,
		nullTime(opp.NextActionAt), nullString(opp.NextActionDetails),
		opp.LastActivityAt, opp.CreatedAt, opp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}
	return nil
}

// ListDue returns the tenant's due opportunities ordered by next_action_at
// ascending, id as the tiebreak. Due-ness is evaluated against the store's
// clock (now()), boundary inclusive.
func (r *PostgresOpportunityRepo) ListDue(ctx context.Context, tenantID string) ([]model.DueOpportunity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, value, stage, next_action_at, next_action_details
		 FROM opportunities
		 WHERE tenant_id = $1
		   AND next_action_at IS NOT NULL
		   AND next_action_at <= now()
		 ORDER BY next_action_at ASC, id ASC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due opportunities: %w", err)
	}
	defer rows.Close()

	due := []model.DueOpportunity{}
	for rows.Next() {
		var d model.DueOpportunity
		var value sql.NullInt64
		var details sql.NullString

		if err := rows.Scan(&d.ID, &d.Name, &value, &d.Stage, &d.NextActionAt, &details); err != nil {
			return nil, fmt.Errorf("failed to read due opportunity: %w", err)
		}

		if value.Valid {
			d.Value = &value.Int64
		}
		d.NextActionDetails = nullStringValue(details)

		due = append(due, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan due opportunities: %w", err)
	}

	return due, nil
}

// CompleteAction replaces the scheduled action and refreshes
// last_activity_at and updated_at in a single guarded UPDATE. The statement
// is atomic at the row level, so a concurrent reader never observes the new
// action alongside the old activity timestamp. Returns false when no row
// matched (id, tenantID).
func (r *PostgresOpportunityRepo) CompleteAction(ctx context.Context, tenantID, id string, nextActionAt time.Time, nextActionDetails string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE opportunities
		 SET next_action_at = $1,
		     next_action_details = $2,
		     last_activity_at = now(),
		     updated_at = now()
		 WHERE id = $3 AND tenant_id = $4`,
		nextActionAt, nextActionDetails, id, tenantID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete action: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}

// nullString converts an empty string to a NULL sql.NullString.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue extracts the string from a sql.NullString.
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullInt64 converts a *int64 to a sql.NullInt64.
func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// nullTime converts a *time.Time to a sql.NullTime.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// compile-time interface check
var _ OpportunityRepository = (*PostgresOpportunityRepo)(nil)
