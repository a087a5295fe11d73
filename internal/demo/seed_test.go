package demo

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestSeedOpportunities_Shape(t *testing.T) {
	now := time.Now().UTC()
	opps := seedOpportunities(now)

	if len(opps) != 7 {
		t.Fatalf("len = %d, want 7", len(opps))
	}

	var demoCount, secondCount, dueCount int
	for _, opp := range opps {
		switch opp.TenantID {
		case DemoTenantID:
			demoCount++
		case SecondTenantID:
			secondCount++
		default:
			t.Errorf("unexpected tenant id %q", opp.TenantID)
		}

		if !opp.ValidateActionPairing() {
			t.Errorf("%s: seeded action violates the pairing invariant", opp.Name)
		}
		if opp.NextActionAt != nil && !opp.NextActionAt.After(now) {
			dueCount++
		}
	}

	if demoCount != 6 {
		t.Errorf("demo tenant opportunities = %d, want 6", demoCount)
	}
	if secondCount != 1 {
		t.Errorf("second tenant opportunities = %d, want 1", secondCount)
	}
	// Five demo-tenant rows plus the isolation row are due; one is future.
	if dueCount != 6 {
		t.Errorf("due opportunities = %d, want 6", dueCount)
	}
}

func TestSeedOpportunities_UniqueIDs(t *testing.T) {
	opps := seedOpportunities(time.Now().UTC())
	seen := map[string]bool{}
	for _, opp := range opps {
		if seen[opp.ID] {
			t.Errorf("duplicate id %q", opp.ID)
		}
		seen[opp.ID] = true
	}
}

func TestReset_RunsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM opportunities`).WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(`DELETE FROM tenants`).WillReturnResult(sqlmock.NewResult(0, 2))
	for i := 0; i < 2; i++ {
		mock.ExpectExec(`INSERT INTO tenants`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	for i := 0; i < 7; i++ {
		mock.ExpectExec(`INSERT INTO opportunities`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	svc := NewService(db)
	count, err := svc.Reset(context.Background())
	if err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReset_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM opportunities`).WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	svc := NewService(db)
	if _, err := svc.Reset(context.Background()); err == nil {
		t.Fatal("expected error when clear fails")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
