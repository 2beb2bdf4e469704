package metrics

import "time"

// RunRecord is the archived summary of one evaluation run.
type RunRecord struct {
	ID           string    `json:"id" db:"id"`
	Dataset      string    `json:"dataset" db:"dataset"`
	Seed         int64     `json:"seed" db:"seed"`
	TestFraction float64   `json:"test_fraction" db:"test_fraction"`
	Accuracy     float64   `json:"accuracy" db:"accuracy"`
	MacroF1      float64   `json:"macro_f1" db:"macro_f1"`
	Top3Recall   float64   `json:"top3_recall" db:"top3_recall"`
	ClassCount   int       `json:"class_count" db:"class_count"`
	FeatureCount int       `json:"feature_count" db:"feature_count"`
	TrainSize    int       `json:"train_size" db:"train_size"`
	TestSize     int       `json:"test_size" db:"test_size"`
	DurationMs   int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NewRunRecord copies the summary fields of report.
func NewRunRecord(id, dataset string, report *Report, duration time.Duration) *RunRecord {
	return &RunRecord{
		ID:           id,
		Dataset:      dataset,
		Seed:         report.Seed,
		TestFraction: report.TestFraction,
		Accuracy:     report.Summary.Accuracy,
		MacroF1:      report.Summary.MacroF1,
		Top3Recall:   report.Summary.Top3Recall,
		ClassCount:   report.Summary.ClassCount,
		FeatureCount: report.Summary.FeatureCount,
		TrainSize:    report.Summary.TrainSize,
		TestSize:     report.Summary.TestSize,
		DurationMs:   duration.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}
}
