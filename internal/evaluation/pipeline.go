package evaluation

import (
	"fmt"
	"math"

	"medibot/domain/metrics"
	"medibot/internal/classifier"
	"medibot/internal/errors"
	"medibot/internal/features"
	"medibot/internal/split"
	"medibot/internal/tabular"
)

// Options control one pipeline run.
type Options struct {
	TestFraction float64
	Seed         int64
	Delimiter    string
}

// DefaultOptions mirror the dataset tooling defaults.
func DefaultOptions() Options {
	return Options{TestFraction: 0.2, Seed: 42, Delimiter: tabular.DefaultDelimiter}
}

// Run parses raw dataset text and evaluates it end to end.
func Run(text string, opts Options) (*metrics.Report, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	table, err := tabular.Parse(text, opts.Delimiter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse dataset")
	}
	return RunTable(table, opts)
}

// RunTable evaluates an already parsed table: build features, split,
// train profiles on the train partition and score the test partition.
func RunTable(table *tabular.Table, opts Options) (*metrics.Report, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	matrix, err := features.Build(table)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build features")
	}

	partition, err := split.Stratified(matrix.Labels, matrix.Classes, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to split dataset")
	}

	model, err := classifier.Fit(matrix, partition.Train)
	if err != nil {
		return nil, errors.Wrap(err, "failed to train profiles")
	}

	testVectors := make([][]float64, len(partition.Test))
	testLabels := make([]string, len(partition.Test))
	for i, r := range partition.Test {
		testVectors[i] = matrix.Vectors[r]
		testLabels[i] = matrix.Labels[r]
	}

	result, err := Evaluate(model.Profiles, testVectors, testLabels)
	if err != nil {
		return nil, errors.Wrap(err, "failed to evaluate test partition")
	}

	return &metrics.Report{
		Summary: metrics.Summary{
			Accuracy:                 result.Accuracy,
			AccuracyInterval:         result.AccuracyInterval,
			MacroF1:                  result.MacroF1,
			Top3Recall:               result.Top3Recall,
			ExpectedCalibrationError: result.ExpectedCalibrationError,
			ClassCount:               len(matrix.Classes),
			FeatureCount:             len(matrix.Vocabulary),
			TrainSize:                len(partition.Train),
			TestSize:                 len(partition.Test),
			MissingProfiles:          model.Profiles.Missing(),
		},
		PerClass:     result.PerClass,
		Confusion:    result.Confusion,
		Calibration:  result.Calibration,
		Vocabulary:   matrix.Vocabulary,
		TrainIndices: partition.Train,
		TestIndices:  partition.Test,
		Seed:         opts.Seed,
		TestFraction: opts.TestFraction,
	}, nil
}

func validate(opts Options) error {
	if math.IsNaN(opts.TestFraction) || opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		return errors.InvalidInput(fmt.Sprintf("test fraction must be in (0,1), got %v", opts.TestFraction))
	}
	return nil
}
