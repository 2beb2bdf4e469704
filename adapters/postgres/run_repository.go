package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"medibot/domain/metrics"
	"medibot/internal/errors"
	"medibot/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const defaultListLimit = 50

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// Connect opens and pings a PostgreSQL connection
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to connect to database")
	}
	return db, nil
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Save inserts a run record
func (r *runRepository) Save(ctx context.Context, record *metrics.RunRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO evaluation_runs (
			id, dataset, seed, test_fraction, accuracy, macro_f1, top3_recall,
			class_count, feature_count, train_size, test_size, duration_ms, created_at
		) VALUES (
			:id, :dataset, :seed, :test_fraction, :accuracy, :macro_f1, :top3_recall,
			:class_count, :feature_count, :train_size, :test_size, :duration_ms, :created_at
		)`, record)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), fmt.Sprintf("failed to save run %s", record.ID))
	}
	return nil
}

// GetByID retrieves a run by its ID
func (r *runRepository) GetByID(ctx context.Context, id string) (*metrics.RunRecord, error) {
	var record metrics.RunRecord
	err := r.db.GetContext(ctx, &record, `SELECT * FROM evaluation_runs WHERE id = $1`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("run " + id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to get run")
	}
	return &record, nil
}

// List returns the most recent runs first
func (r *runRepository) List(ctx context.Context, limit int) ([]*metrics.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var records []*metrics.RunRecord
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM evaluation_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to list runs")
	}
	return records, nil
}
