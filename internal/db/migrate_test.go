package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
)

func TestMigratePostgresAppliesSchema(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS events .* CREATE UNIQUE INDEX IF NOT EXISTS events_idempotency_key_idx ON events \(idempotency_key\)`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := MigratePostgres(context.Background(), mock); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrationCoversEventColumns(t *testing.T) {
	script, err := migrationFS.ReadFile("migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, col := range []string{"idempotency_key", "route_id", "disclaimer", "activity_difficulty", "location_point", "revoked_at"} {
		if !strings.Contains(string(script), col) {
			t.Fatalf("expected migration to define %s", col)
		}
	}
}

func TestMigratePostgresError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("permission denied"))

	if err := MigratePostgres(context.Background(), mock); err == nil || !strings.Contains(err.Error(), "0001_init.sql") {
		t.Fatalf("expected wrapped migration error, got %v", err)
	}
}
