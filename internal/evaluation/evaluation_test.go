package evaluation

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"medibot/domain/metrics"
	"medibot/internal/classifier"
	"medibot/internal/errors"
	"medibot/internal/split"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDataset = "symptom_1,symptom_2,prognosis\nfever,cough,flu\nfever,cough,flu\nrash,itching,allergy\n"

// syntheticDataset builds a noisy multi-class dataset: every class has a few
// core symptoms and rows draw extra symptoms from a shared pool.
func syntheticDataset(rowsPerClass map[string]int, seed int64) string {
	core := map[string][]string{
		"cold":        {"sneezing", "runny nose", "cough"},
		"flu":         {"fever", "cough", "fatigue"},
		"migraine":    {"headache", "nausea", "light sensitivity"},
		"gastritis":   {"abdominal pain", "nausea", "vomiting"},
		"allergy":     {"sneezing", "itching", "rash"},
		"dehydration": {"fatigue", "dizziness", "dry mouth"},
	}
	pool := []string{"fever", "cough", "fatigue", "nausea", "headache", "chills", "rash", "dizziness"}
	classes := []string{"allergy", "cold", "dehydration", "flu", "gastritis", "migraine"}

	rng := split.NewLCG(seed)
	var b strings.Builder
	b.WriteString("Symptom_1,Symptom_2,Symptom_3,Symptom_4,Disease\n")
	for _, c := range classes {
		for i := 0; i < rowsPerClass[c]; i++ {
			symptoms := core[c]
			cells := []string{
				symptoms[rng.Intn(len(symptoms))],
				symptoms[rng.Intn(len(symptoms))],
				pool[rng.Intn(len(pool))],
				"nan",
			}
			if rng.Float64() < 0.5 {
				cells[3] = symptoms[rng.Intn(len(symptoms))]
			}
			fmt.Fprintf(&b, "%s,%s\n", strings.Join(cells, ","), c)
		}
	}
	return b.String()
}

func TestRunScenarioWithMissingProfile(t *testing.T) {
	report, err := Run(scenarioDataset, Options{TestFraction: 0.34, Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.ClassCount)
	assert.Equal(t, 4, report.Summary.FeatureCount)
	assert.Equal(t, []string{"cough", "fever", "itching", "rash"}, report.Vocabulary)
	assert.Equal(t, 2, report.Summary.TestSize)
	assert.Equal(t, 1, report.Summary.TrainSize)
	assert.Equal(t, []string{"allergy"}, report.Summary.MissingProfiles)

	// allergy's test row ties at zero and wins on class order.
	assert.Equal(t, 1.0, report.Summary.Accuracy)
	assert.Equal(t, 1.0, report.Summary.Top3Recall)
	assert.Equal(t, [][]int{{1, 0}, {0, 1}}, report.Confusion.Counts)
	assert.Equal(t, []string{"allergy", "flu"}, report.Confusion.Classes)

	require.Len(t, report.Calibration, 2)
	assert.Equal(t, 0, report.Calibration[0].Index)
	assert.Equal(t, 0.0, report.Calibration[0].MeanConfidence)
	assert.Equal(t, 9, report.Calibration[1].Index)
	assert.Equal(t, 1.0, report.Calibration[1].MeanConfidence)
	assert.InDelta(t, 0.5, report.Summary.ExpectedCalibrationError, 1e-12)

	assert.InDelta(t, 1.0, report.Summary.AccuracyInterval.Upper, 1e-9)
	assert.InDelta(t, 0.342, report.Summary.AccuracyInterval.Lower, 1e-3)
}

func TestRunInvariants(t *testing.T) {
	text := syntheticDataset(map[string]int{
		"allergy": 12, "cold": 20, "dehydration": 7, "flu": 25, "gastritis": 9, "migraine": 1,
	}, 5)

	report, err := Run(text, Options{TestFraction: 0.2, Seed: 42})
	require.NoError(t, err)

	s := report.Summary
	assert.Equal(t, 74, s.TrainSize+s.TestSize)
	assert.Equal(t, 6, s.ClassCount)
	assert.Equal(t, []string{"migraine"}, s.MissingProfiles)

	assert.Equal(t, s.TestSize, report.Confusion.Total())
	f1Sum := 0.0
	for i, pc := range report.PerClass {
		assert.Equal(t, report.Confusion.RowSum(i), pc.Support)
		assert.Equal(t, split.CutSize(map[string]int{
			"allergy": 12, "cold": 20, "dehydration": 7, "flu": 25, "gastritis": 9, "migraine": 1,
		}[pc.Class], 0.2), pc.Support)
		for _, v := range []float64{pc.Precision, pc.Recall, pc.F1} {
			assert.True(t, v >= 0 && v <= 1)
		}
		f1Sum += pc.F1
	}
	assert.InDelta(t, f1Sum/float64(len(report.PerClass)), s.MacroF1, 1e-12)

	binned := 0
	for i, b := range report.Calibration {
		binned += b.Count
		assert.True(t, b.Count > 0)
		assert.True(t, b.MeanConfidence >= b.Lower-1e-9 && b.MeanConfidence <= b.Upper+1e-9)
		if i > 0 {
			assert.Greater(t, b.Index, report.Calibration[i-1].Index)
		}
	}
	assert.Equal(t, s.TestSize, binned)
	assert.True(t, s.Top3Recall >= s.Accuracy)
	assert.True(t, s.AccuracyInterval.Lower <= s.Accuracy && s.Accuracy <= s.AccuracyInterval.Upper)
}

func TestRunDeterministic(t *testing.T) {
	text := syntheticDataset(map[string]int{"allergy": 8, "cold": 8, "flu": 8, "gastritis": 8}, 11)

	first, err := Run(text, Options{TestFraction: 0.25, Seed: 3})
	require.NoError(t, err)
	second, err := Run(text, Options{TestFraction: 0.25, Seed: 3})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunErrors(t *testing.T) {
	_, err := Run("", DefaultOptions())
	assert.True(t, errors.HasCode(err, errors.CodeMalformedInput))

	_, err = Run("symptom_1,label\nfever,flu\n", DefaultOptions())
	assert.True(t, errors.HasCode(err, errors.CodeMalformedInput))

	_, err = Run("fever,prognosis\nfever,flu\n", DefaultOptions())
	assert.True(t, errors.HasCode(err, errors.CodeMalformedInput))

	for _, f := range []float64{0, 1, math.NaN()} {
		_, err = Run(scenarioDataset, Options{TestFraction: f, Seed: 1})
		assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	}
}

func TestPerClassFromConfusion(t *testing.T) {
	cm := metrics.ConfusionMatrix{
		Classes: []string{"a", "b", "c"},
		Counts: [][]int{
			{3, 1, 0},
			{2, 2, 0},
			{0, 0, 0},
		},
	}

	pc := PerClass(cm)
	require.Len(t, pc, 3)

	assert.InDelta(t, 0.6, pc[0].Precision, 1e-12)
	assert.InDelta(t, 0.75, pc[0].Recall, 1e-12)
	assert.InDelta(t, 2*0.6*0.75/1.35, pc[0].F1, 1e-12)
	assert.Equal(t, 4, pc[0].Support)

	assert.InDelta(t, 2.0/3.0, pc[1].Precision, 1e-12)
	assert.InDelta(t, 0.5, pc[1].Recall, 1e-12)

	assert.Equal(t, metrics.ClassMetrics{Class: "c"}, pc[2])

	macro, err := MacroF1(pc)
	require.NoError(t, err)
	assert.InDelta(t, (pc[0].F1+pc[1].F1)/3, macro, 1e-12, "zero-support class counts as F1 0")
}

func TestMacroF1Empty(t *testing.T) {
	_, err := MacroF1(nil)
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))
}

func TestEvaluateTopKUsesRankOrder(t *testing.T) {
	classes := []string{"a", "b", "c", "d"}
	profiles, err := classifier.Train(
		[][]float64{{1, 0, 0, 0}, {1, 1, 0, 0}, {1, 1, 1, 0}, {0, 0, 0, 1}},
		classes, classes,
	)
	require.NoError(t, err)

	// ranking for {1,0,0,0}: a 1, b .5, c .333, d 0
	result, err := Evaluate(profiles, [][]float64{{1, 0, 0, 0}, {1, 0, 0, 0}}, []string{"c", "d"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Accuracy)
	assert.Equal(t, 0.5, result.Top3Recall)
	assert.Equal(t, 2, result.Confusion.ColumnSum(0))
	assert.Equal(t, 0.0, result.MacroF1)
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	profiles, err := classifier.Train([][]float64{{1, 0}}, []string{"a"}, []string{"a"})
	require.NoError(t, err)

	_, err = Evaluate(profiles, nil, nil)
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))

	_, err = Evaluate(profiles, [][]float64{{1, 0}}, []string{"zzz"})
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))

	_, err = Evaluate(profiles, [][]float64{{1, 0, 1}}, []string{"a"})
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))

	_, err = Evaluate(nil, [][]float64{{1}}, []string{"a"})
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))
}

func TestCalibrate(t *testing.T) {
	bins := Calibrate(
		[]float64{0, 0.05, 0.35, 0.99, 1.0, 1.2, -0.1},
		[]bool{true, false, true, true, false, true, false},
		10,
	)
	require.Len(t, bins, 3)

	assert.Equal(t, 0, bins[0].Index)
	assert.Equal(t, 3, bins[0].Count)
	assert.InDelta(t, (0+0.05-0.1)/3, bins[0].MeanConfidence, 1e-12)
	assert.InDelta(t, 1.0/3, bins[0].Accuracy, 1e-12)
	assert.InDelta(t, 0.05, bins[0].Mid, 1e-12)

	assert.Equal(t, 3, bins[1].Index)
	assert.InDelta(t, 0.3, bins[1].Lower, 1e-12)
	assert.InDelta(t, 0.4, bins[1].Upper, 1e-12)

	assert.Equal(t, 9, bins[2].Index)
	assert.Equal(t, 3, bins[2].Count)
	assert.InDelta(t, 2.0/3, bins[2].Accuracy, 1e-12)
}

func TestBinIndex(t *testing.T) {
	tests := map[float64]int{0: 0, 0.0999: 0, 0.1: 1, 0.55: 5, 0.9: 9, 1: 9, 3: 9, -2: 0}
	for c, want := range tests {
		assert.Equal(t, want, BinIndex(c, 10), "confidence %v", c)
	}
}

func TestWilsonInterval(t *testing.T) {
	iv := WilsonInterval(50, 100, 0.95)
	assert.InDelta(t, 0.4038, iv.Lower, 1e-3)
	assert.InDelta(t, 0.5962, iv.Upper, 1e-3)
	assert.Equal(t, 0.95, iv.Level)

	empty := WilsonInterval(0, 0, 0.95)
	assert.Equal(t, 0.0, empty.Lower)
	assert.Equal(t, 1.0, empty.Upper)
}
