package migration

import (
	"context"

	"prodflow/internal/errors"

	"github.com/jmoiron/sqlx"
)

// DeliveryChildIndex is the partial unique index that allows at most one
// delivery-phase child per parent. Store adapters match on its name.
const DeliveryChildIndex = "idx_initiatives_delivery_child"

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createMembersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create members table")
	}

	if err := r.createInitiativesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create initiatives table")
	}

	if err := r.createAnnouncementsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create announcements table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createMembersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS members (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createInitiativesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS initiatives (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			problem_statement TEXT NOT NULL DEFAULT '',
			item_type VARCHAR(32) NOT NULL,
			phase VARCHAR(32) NOT NULL DEFAULT 'backlog',
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			rice_reach SMALLINT NOT NULL DEFAULT 5 CHECK (rice_reach BETWEEN 1 AND 10),
			rice_impact SMALLINT NOT NULL DEFAULT 5 CHECK (rice_impact BETWEEN 1 AND 10),
			rice_confidence SMALLINT NOT NULL DEFAULT 5 CHECK (rice_confidence BETWEEN 1 AND 10),
			rice_effort SMALLINT NOT NULL DEFAULT 5 CHECK (rice_effort BETWEEN 1 AND 10),
			owner_id TEXT,
			project_id TEXT,
			parent_id TEXT REFERENCES initiatives(id) ON DELETE SET NULL,
			period_type VARCHAR(16) NOT NULL DEFAULT '',
			period_value TEXT NOT NULL DEFAULT '',
			experiment_data JSONB,
			tags TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createAnnouncementsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS announcements (
			id BIGSERIAL PRIMARY KEY,
			initiative_id TEXT NOT NULL REFERENCES initiatives(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			body_html TEXT NOT NULL DEFAULT '',
			announced_on DATE NOT NULL,
			category VARCHAR(64) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_initiatives_phase_status ON initiatives(phase, status)`,
		`CREATE INDEX IF NOT EXISTS idx_initiatives_parent ON initiatives(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_initiatives_owner ON initiatives(owner_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + DeliveryChildIndex + `
			ON initiatives(parent_id) WHERE phase = 'delivery' AND parent_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_announcements_initiative ON announcements(initiative_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
