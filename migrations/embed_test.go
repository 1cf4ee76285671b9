package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hearthd/hearth-core/internal/infrastructure/database"
)

// TestMigrate_AppliesEmbeddedSchema runs Migrate against the real embedded
// filesystem this package registers. The database package's own tests run
// without embedded migrations, so the "." MigrationsDir read path is only
// exercised here.
func TestMigrate_AppliesEmbeddedSchema(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// The initial schema must leave every table queryable.
	for _, table := range []string{"devices", "schedules", "schedule_runs"} {
		var count int
		if err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM "+table,
		).Scan(&count); err != nil {
			t.Errorf("querying %s after migration: %v", table, err)
		}
	}

	var applied int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations",
	).Scan(&applied); err != nil {
		t.Fatalf("querying schema_migrations: %v", err)
	}
	if applied == 0 {
		t.Error("no migrations recorded as applied")
	}

	// Re-running is a no-op.
	if err := db.Migrate(ctx); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}
