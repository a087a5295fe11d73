package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/mkondo/nexttrack/internal/model"
)

func TestPostgresTenantRepo_ImplementsInterface(t *testing.T) {
	var _ TenantRepository = (*PostgresTenantRepo)(nil)
}

func TestTenantFindByID_Found(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, name, created_at, updated_at FROM tenants WHERE id = \$1`).
		WithArgs(testTenantID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(testTenantID, "Demo Company", now, now))

	repo := NewPostgresTenantRepo(db)
	tenant, err := repo.FindByID(context.Background(), testTenantID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if tenant == nil {
		t.Fatal("expected non-nil tenant")
	}
	if tenant.Name != "Demo Company" {
		t.Errorf("Name = %q, want %q", tenant.Name, "Demo Company")
	}
}

func TestTenantFindByID_NotFoundReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, created_at, updated_at FROM tenants`).
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "updated_at"}))

	repo := NewPostgresTenantRepo(db)
	tenant, err := repo.FindByID(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if tenant != nil {
		t.Errorf("expected nil tenant, got %+v", tenant)
	}
}

func TestTenantCreate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	tenant := &model.Tenant{ID: testTenantID, Name: "Demo Company", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`INSERT INTO tenants`).
		WithArgs(tenant.ID, tenant.Name, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresTenantRepo(db)
	if err := repo.Create(context.Background(), tenant); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
