package app

import (
	"context"
	"runtime"
	"time"

	"medibot/domain/metrics"
	"medibot/internal"
	"medibot/internal/errors"
	"medibot/internal/evaluation"
	"medibot/internal/tabular"
	"medibot/ports"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Sweep bounds applied unless SetSweepLimits overrides them
const (
	DefaultMaxSweepSeeds   = 100
	DefaultMaxSweepWorkers = 16
)

// EvaluationService runs the evaluation pipeline and archives run summaries
type EvaluationService struct {
	runs   ports.RunRepository // optional
	logger *internal.Logger

	maxSeeds   int
	maxWorkers int
}

// EvaluationRequest selects the dataset and options of one run.
// Table takes precedence over Text.
type EvaluationRequest struct {
	Dataset string
	Text    string
	Table   *tabular.Table
	Options evaluation.Options
}

// EvaluationResult is one archived (or archivable) run
type EvaluationResult struct {
	RunID      string          `json:"run_id"`
	Report     *metrics.Report `json:"report"`
	DurationMs int64           `json:"duration_ms"`
	Archived   bool            `json:"archived"`
}

// SweepRequest evaluates the same dataset over Seeds consecutive seeds
// starting at Options.Seed.
type SweepRequest struct {
	EvaluationRequest
	Seeds   int
	Workers int
}

// Spread is the mean and population standard deviation of a metric across seeds
type Spread struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// SweepRun is the summary of one seed
type SweepRun struct {
	Seed    int64           `json:"seed"`
	Summary metrics.Summary `json:"summary"`
}

// SweepResult aggregates a seed sweep; Runs are in seed order
type SweepResult struct {
	Runs       []SweepRun `json:"runs"`
	Accuracy   Spread     `json:"accuracy"`
	MacroF1    Spread     `json:"macro_f1"`
	Top3Recall Spread     `json:"top3_recall"`
	DurationMs int64      `json:"duration_ms"`
}

// NewEvaluationService creates the service; runs may be nil to disable archiving
func NewEvaluationService(runs ports.RunRepository) *EvaluationService {
	return &EvaluationService{
		runs:       runs,
		logger:     internal.DefaultLogger.With("EvaluationService"),
		maxSeeds:   DefaultMaxSweepSeeds,
		maxWorkers: DefaultMaxSweepWorkers,
	}
}

// SetSweepLimits bounds the seeds and workers a sweep may request.
// Non-positive values keep the current limit.
func (s *EvaluationService) SetSweepLimits(maxSeeds, maxWorkers int) {
	if maxSeeds > 0 {
		s.maxSeeds = maxSeeds
	}
	if maxWorkers > 0 {
		s.maxWorkers = maxWorkers
	}
}

// ArchiveEnabled reports whether runs are persisted
func (s *EvaluationService) ArchiveEnabled() bool {
	return s.runs != nil
}

// Runs exposes the archive, nil when disabled
func (s *EvaluationService) Runs() ports.RunRepository {
	return s.runs
}

// Evaluate runs the pipeline once. An archive failure is logged and leaves
// Archived false; it does not fail the run.
func (s *EvaluationService) Evaluate(ctx context.Context, req EvaluationRequest) (*EvaluationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := runOnce(req)
	if err != nil {
		s.logger.Warn("evaluation of %q failed: %v", req.Dataset, err)
		return nil, err
	}
	duration := time.Since(start)

	result := &EvaluationResult{
		RunID:      uuid.NewString(),
		Report:     report,
		DurationMs: duration.Milliseconds(),
	}
	s.logger.Info("run %s on %q: accuracy=%.4f macro_f1=%.4f top3=%.4f (%d train, %d test) in %s",
		result.RunID, req.Dataset, report.Summary.Accuracy, report.Summary.MacroF1,
		report.Summary.Top3Recall, report.Summary.TrainSize, report.Summary.TestSize, duration)

	if s.runs != nil {
		record := metrics.NewRunRecord(result.RunID, req.Dataset, report, duration)
		if err := s.runs.Save(ctx, record); err != nil {
			s.logger.Error("failed to archive run %s: %v", result.RunID, err)
		} else {
			result.Archived = true
		}
	}
	return result, nil
}

// Sweep evaluates seeds base..base+Seeds-1 concurrently. Each run is
// independent; results are ordered by seed regardless of completion order.
func (s *EvaluationService) Sweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	if req.Seeds <= 0 {
		return nil, errors.InvalidInput("sweep needs at least one seed")
	}
	if req.Seeds > s.maxSeeds {
		return nil, errors.Newf(errors.CodeInvalidInput, "sweep allows at most %d seeds, got %d", s.maxSeeds, req.Seeds)
	}
	if req.Workers > s.maxWorkers {
		return nil, errors.Newf(errors.CodeInvalidInput, "sweep allows at most %d workers, got %d", s.maxWorkers, req.Workers)
	}
	workers := req.Workers
	if workers <= 0 {
		workers = min(runtime.NumCPU(), s.maxWorkers)
	}

	// parse once and share the read-only table
	base := req.EvaluationRequest
	if base.Table == nil {
		table, err := tabular.Parse(base.Text, base.Options.Delimiter)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse dataset")
		}
		base.Table = table
	}

	start := time.Now()
	runs := make([]SweepRun, req.Seeds)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < req.Seeds; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := base
			r.Options.Seed = base.Options.Seed + int64(i)
			report, err := runOnce(r)
			if err != nil {
				return errors.Wrapf(err, "seed %d", r.Options.Seed)
			}
			runs[i] = SweepRun{Seed: r.Options.Seed, Summary: report.Summary}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	accuracy := make([]float64, len(runs))
	macroF1 := make([]float64, len(runs))
	top3 := make([]float64, len(runs))
	for i, r := range runs {
		accuracy[i] = r.Summary.Accuracy
		macroF1[i] = r.Summary.MacroF1
		top3[i] = r.Summary.Top3Recall
	}

	result := &SweepResult{Runs: runs, DurationMs: time.Since(start).Milliseconds()}
	var err error
	if result.Accuracy, err = spread(accuracy); err != nil {
		return nil, err
	}
	if result.MacroF1, err = spread(macroF1); err != nil {
		return nil, err
	}
	if result.Top3Recall, err = spread(top3); err != nil {
		return nil, err
	}

	s.logger.Info("sweep on %q over %d seeds from %d: accuracy %.4f±%.4f in %dms",
		req.Dataset, req.Seeds, req.Options.Seed, result.Accuracy.Mean, result.Accuracy.StdDev, result.DurationMs)
	return result, nil
}

func runOnce(req EvaluationRequest) (*metrics.Report, error) {
	if req.Table != nil {
		return evaluation.RunTable(req.Table, req.Options)
	}
	return evaluation.Run(req.Text, req.Options)
}

func spread(values []float64) (Spread, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return Spread{}, errors.Wrap(err, "failed to compute mean")
	}
	sd, err := stats.StandardDeviation(values)
	if err != nil {
		return Spread{}, errors.Wrap(err, "failed to compute standard deviation")
	}
	return Spread{Mean: mean, StdDev: sd}, nil
}
