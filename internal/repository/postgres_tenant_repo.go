package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkondo/nexttrack/internal/model"
)

// PostgresTenantRepo is the PostgreSQL-backed tenant repository.
type PostgresTenantRepo struct {
	db *sql.DB
}

// NewPostgresTenantRepo creates a PostgresTenantRepo.
func NewPostgresTenantRepo(db *sql.DB) *PostgresTenantRepo {
	return &PostgresTenantRepo{db: db}
}

// FindByID returns the tenant with the given id, or nil when not found.
func (r *PostgresTenantRepo) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	tenant := &model.Tenant{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE id = $1`,
		id,
	).Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt, &tenant.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}

	return tenant, nil
}

// Create inserts a tenant.
func (r *PostgresTenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		tenant.ID, tenant.Name, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TenantRepository = (*PostgresTenantRepo)(nil)
