package metrics

// RecallK is the k used for the top-k recall summary metric.
const RecallK = 3

// CalibrationBins is the number of fixed-width confidence buckets over [0,1].
const CalibrationBins = 10

// Interval is a two-sided confidence interval.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// Summary holds the headline numbers of an evaluation run.
type Summary struct {
	Accuracy                 float64  `json:"accuracy"`
	AccuracyInterval         Interval `json:"accuracy_interval"`
	MacroF1                  float64  `json:"macro_f1"`
	Top3Recall               float64  `json:"top3_recall"`
	ExpectedCalibrationError float64  `json:"expected_calibration_error"`
	ClassCount               int      `json:"class_count"`
	FeatureCount             int      `json:"feature_count"`
	TrainSize                int      `json:"train_size"`
	TestSize                 int      `json:"test_size"`
	MissingProfiles          []string `json:"missing_profiles,omitempty"`
}

// ClassMetrics is one row of the per-class table.
type ClassMetrics struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ConfusionMatrix counts test samples by [true class][predicted class] in Classes order.
type ConfusionMatrix struct {
	Classes []string `json:"classes"`
	Counts  [][]int  `json:"counts"`
}

// NewConfusionMatrix allocates a zeroed square matrix.
func NewConfusionMatrix(classes []string) ConfusionMatrix {
	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	return ConfusionMatrix{Classes: classes, Counts: counts}
}

// RowSum is the true support of class i.
func (c ConfusionMatrix) RowSum(i int) int {
	total := 0
	for _, n := range c.Counts[i] {
		total += n
	}
	return total
}

// ColumnSum is the number of samples predicted as class j.
func (c ConfusionMatrix) ColumnSum(j int) int {
	total := 0
	for _, row := range c.Counts {
		total += row[j]
	}
	return total
}

// Total is the number of counted samples.
func (c ConfusionMatrix) Total() int {
	total := 0
	for i := range c.Counts {
		total += c.RowSum(i)
	}
	return total
}

// CalibrationBin summarizes samples whose top confidence fell in [Lower, Upper).
// The last bin also holds confidence 1.
type CalibrationBin struct {
	Index          int     `json:"index"`
	Lower          float64 `json:"lower"`
	Upper          float64 `json:"upper"`
	Mid            float64 `json:"bin_mid"`
	Count          int     `json:"n"`
	MeanConfidence float64 `json:"mean_pred"`
	Accuracy       float64 `json:"frac_pos"`
}

// Report is the read-only result of one evaluation run.
type Report struct {
	Summary      Summary          `json:"summary"`
	PerClass     []ClassMetrics   `json:"per_class"`
	Confusion    ConfusionMatrix  `json:"confusion"`
	Calibration  []CalibrationBin `json:"calibration"`
	Vocabulary   []string         `json:"vocabulary"`
	TrainIndices []int            `json:"train_indices"`
	TestIndices  []int            `json:"test_indices"`
	Seed         int64            `json:"seed"`
	TestFraction float64          `json:"test_fraction"`
}
