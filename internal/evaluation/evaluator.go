// Package evaluation scores a held-out test partition with the profile
// classifier and aggregates classification-quality metrics.
package evaluation

import (
	"fmt"

	"medibot/domain/metrics"
	"medibot/internal/classifier"
	"medibot/internal/errors"

	"github.com/montanaflynn/stats"
)

// AccuracyLevel is the confidence level of the reported accuracy interval.
const AccuracyLevel = 0.95

// Result is the metric part of a report, produced from one test partition.
type Result struct {
	Accuracy                 float64
	AccuracyInterval         metrics.Interval
	Top3Recall               float64
	MacroF1                  float64
	ExpectedCalibrationError float64
	PerClass                 []metrics.ClassMetrics
	Confusion                metrics.ConfusionMatrix
	Calibration              []metrics.CalibrationBin
}

// Evaluate ranks every test vector against the profiles, predicts the top class
// and accumulates accuracy, top-3 recall, the confusion matrix, per-class
// precision/recall/F1, macro-F1 and a 10-bin calibration curve.
func Evaluate(profiles *classifier.Profiles, vectors [][]float64, labels []string) (*Result, error) {
	if profiles == nil || len(profiles.Classes) == 0 {
		return nil, errors.EvaluationFailed("no classes to evaluate")
	}
	if len(vectors) != len(labels) {
		return nil, errors.EvaluationFailed(fmt.Sprintf("got %d test vectors for %d labels", len(vectors), len(labels)))
	}
	if len(vectors) == 0 {
		return nil, errors.EvaluationFailed("test partition is empty")
	}

	classIndex := make(map[string]int, len(profiles.Classes))
	for i, c := range profiles.Classes {
		classIndex[c] = i
	}

	confusion := metrics.NewConfusionMatrix(profiles.Classes)
	confidences := make([]float64, len(vectors))
	correct := make([]bool, len(vectors))
	hits, topHits := 0, 0

	for i, x := range vectors {
		if dim := profiles.Dim(); dim >= 0 && len(x) != dim {
			return nil, errors.EvaluationFailed(fmt.Sprintf("test vector %d has length %d, want %d", i, len(x), dim))
		}
		truth, ok := classIndex[labels[i]]
		if !ok {
			return nil, errors.EvaluationFailed(fmt.Sprintf("test label %q is not in the class set", labels[i]))
		}

		ranking := profiles.Rank(x)
		best, ok := ranking.Best()
		if !ok {
			return nil, errors.EvaluationFailed("ranking is empty")
		}
		predicted := classIndex[best.Class]

		confidences[i] = best.Score
		correct[i] = predicted == truth
		if correct[i] {
			hits++
		}
		if ranking.Contains(labels[i], metrics.RecallK) {
			topHits++
		}
		confusion.Counts[truth][predicted]++
	}

	perClass := PerClass(confusion)
	macroF1, err := MacroF1(perClass)
	if err != nil {
		return nil, err
	}
	calibration := Calibrate(confidences, correct, metrics.CalibrationBins)

	n := float64(len(vectors))
	return &Result{
		Accuracy:                 float64(hits) / n,
		AccuracyInterval:         WilsonInterval(hits, len(vectors), AccuracyLevel),
		Top3Recall:               float64(topHits) / n,
		MacroF1:                  macroF1,
		ExpectedCalibrationError: ExpectedCalibrationError(calibration),
		PerClass:                 perClass,
		Confusion:                confusion,
		Calibration:              calibration,
	}, nil
}

// PerClass derives precision, recall, F1 and support from a confusion matrix.
// Any ratio with a zero denominator is reported as 0.
func PerClass(confusion metrics.ConfusionMatrix) []metrics.ClassMetrics {
	out := make([]metrics.ClassMetrics, len(confusion.Classes))
	for i, c := range confusion.Classes {
		tp := confusion.Counts[i][i]
		support := confusion.RowSum(i)
		fn := support - tp
		fp := confusion.ColumnSum(i) - tp

		precision := ratio(tp, tp+fp)
		recall := ratio(tp, tp+fn)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		out[i] = metrics.ClassMetrics{
			Class:     c,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		}
	}
	return out
}

// MacroF1 is the unweighted mean of per-class F1. Classes without test
// support still contribute their F1 of 0.
func MacroF1(perClass []metrics.ClassMetrics) (float64, error) {
	f1s := make([]float64, len(perClass))
	for i, m := range perClass {
		f1s[i] = m.F1
	}
	mean, err := stats.Mean(f1s)
	if err != nil {
		return 0, errors.Wrap(errors.EvaluationFailed(err.Error()), "failed to average per-class F1")
	}
	return mean, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
