package ports

import (
	"context"

	"medibot/domain/diagnosis"
)

// DiagnosisBackend is a remote predictor that assesses reported symptoms
type DiagnosisBackend interface {
	Predict(ctx context.Context, items []diagnosis.Item) (*diagnosis.Assessment, error)
}
