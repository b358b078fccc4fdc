package migration

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Migration is one schema step. Steps are applied in order and recorded in
// the schema_migrations table.
type Migration struct {
	Name string
	Up   string
	Down string
}

// Migrations is the result store schema.
var Migrations = []Migration{
	{
		Name: "001_create_runs",
		Up: `CREATE TABLE IF NOT EXISTS runs (
	run_id VARCHAR(36) NOT NULL PRIMARY KEY,
	mode VARCHAR(16) NOT NULL,
	target VARCHAR(255) NOT NULL,
	build VARCHAR(255) NOT NULL,
	simulator VARCHAR(16) NOT NULL,
	total INT NOT NULL,
	passed INT NOT NULL,
	warned INT NOT NULL,
	failed INT NOT NULL,
	duration_seconds DOUBLE NOT NULL,
	started_at VARCHAR(32) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		Down: `DROP TABLE IF EXISTS runs`,
	},
	{
		Name: "002_create_instances",
		Up: `CREATE TABLE IF NOT EXISTS instances (
	run_id VARCHAR(36) NOT NULL,
	position INT NOT NULL,
	bucket VARCHAR(255) NOT NULL,
	test VARCHAR(255) NOT NULL,
	seed INT UNSIGNED NOT NULL,
	dir VARCHAR(1024) NOT NULL,
	status VARCHAR(16) NOT NULL,
	finished BOOLEAN NOT NULL,
	log_path VARCHAR(1024) NOT NULL,
	lines_json MEDIUMTEXT NOT NULL,
	duration_ns BIGINT NOT NULL,
	error TEXT NOT NULL,
	resolved BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (run_id, position),
	INDEX idx_instances_test (test)
)`,
		Down: `DROP TABLE IF EXISTS instances`,
	},
}

const migrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name VARCHAR(255) NOT NULL PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SchemaMigrator applies Migrations to the result database.
type SchemaMigrator struct {
	databaseManager *DatabaseManager
	migrations      []Migration
}

// NewSchemaMigrator creates a new SchemaMigrator
func NewSchemaMigrator(dbManager *DatabaseManager) *SchemaMigrator {
	return &SchemaMigrator{databaseManager: dbManager, migrations: Migrations}
}

// Run creates the database if needed and applies pending migrations. With
// fresh set every table is dropped first.
func (m *SchemaMigrator) Run(ctx context.Context, fresh bool) error {
	color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
	color.Cyan("║               Running Database Migrations                  ║")
	color.Cyan("╚════════════════════════════════════════════════════════════╝\n")

	created, err := m.databaseManager.EnsureDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to check database: %w", err)
	}
	if created {
		color.Green("Created database")
	}

	db, err := m.databaseManager.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if fresh {
		if err := m.dropAll(ctx, db); err != nil {
			return err
		}
	}
	if _, err := db.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	pending := m.pending(applied)
	color.White("Applied: %d | Pending: %d\n\n", len(applied), len(pending))
	if len(pending) == 0 {
		color.Green("✓ Schema is up to date")
		return nil
	}

	bar := progressbar.NewOptions(len(pending),
		progressbar.OptionSetDescription(color.CyanString("Migrating")),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
	)
	for _, mig := range pending {
		if _, err := db.ExecContext(ctx, mig.Up); err != nil {
			return fmt.Errorf("migration %s: %w", mig.Name, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (name) VALUES (?)", mig.Name); err != nil {
			return fmt.Errorf("record migration %s: %w", mig.Name, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	color.Green("\n✓ Applied %d migration(s)", len(pending))
	return nil
}

func (m *SchemaMigrator) pending(applied map[string]bool) []Migration {
	var out []Migration
	for _, mig := range m.migrations {
		if !applied[mig.Name] {
			out = append(out, mig)
		}
	}
	return out
}

// dropAll reverts the migrations in reverse order.
func (m *SchemaMigrator) dropAll(ctx context.Context, db *sql.DB) error {
	for i := len(m.migrations) - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, m.migrations[i].Down); err != nil {
			return fmt.Errorf("revert %s: %w", m.migrations[i].Name, err)
		}
	}
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}
	return nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
