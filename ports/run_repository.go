package ports

import (
	"context"

	"medibot/domain/metrics"
)

// RunRepository archives evaluation run summaries
type RunRepository interface {
	Save(ctx context.Context, record *metrics.RunRecord) error
	GetByID(ctx context.Context, id string) (*metrics.RunRecord, error)
	List(ctx context.Context, limit int) ([]*metrics.RunRecord, error)
}
