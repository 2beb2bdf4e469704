package migration

import (
	"context"

	"medibot/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

var _ Migrator = (*MigrationRunner)(nil)

// MigrationRunner handles the run archive schema
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

// Run executes all database migrations in order; every step is idempotent
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createEvaluationRunsTable(ctx, db); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to create evaluation_runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createEvaluationRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evaluation_runs (
			id            TEXT PRIMARY KEY,
			dataset       TEXT NOT NULL,
			seed          BIGINT NOT NULL,
			test_fraction DOUBLE PRECISION NOT NULL,
			accuracy      DOUBLE PRECISION NOT NULL,
			macro_f1      DOUBLE PRECISION NOT NULL,
			top3_recall   DOUBLE PRECISION NOT NULL,
			class_count   INTEGER NOT NULL,
			feature_count INTEGER NOT NULL,
			train_size    INTEGER NOT NULL,
			test_size     INTEGER NOT NULL,
			duration_ms   BIGINT NOT NULL,
			created_at    TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_evaluation_runs_created_at ON evaluation_runs (created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_evaluation_runs_dataset_seed ON evaluation_runs (dataset, seed);
	`)
	return err
}
