package evaluation

import (
	"math"

	"medibot/domain/metrics"

	"github.com/montanaflynn/stats"
)

// BinIndex maps a confidence to its bucket, clamped to [0, bins-1].
func BinIndex(confidence float64, bins int) int {
	b := int(math.Floor(confidence * float64(bins)))
	if b < 0 {
		return 0
	}
	if b > bins-1 {
		return bins - 1
	}
	return b
}

// Calibrate buckets each sample's top confidence into fixed-width bins and
// reports count, mean confidence and observed accuracy. Empty bins are omitted.
func Calibrate(confidences []float64, correct []bool, bins int) []metrics.CalibrationBin {
	grouped := make([][]float64, bins)
	hits := make([]int, bins)
	for i, c := range confidences {
		b := BinIndex(c, bins)
		grouped[b] = append(grouped[b], c)
		if correct[i] {
			hits[b]++
		}
	}

	var out []metrics.CalibrationBin
	for b, values := range grouped {
		if len(values) == 0 {
			continue
		}
		mean, _ := stats.Mean(values)
		out = append(out, metrics.CalibrationBin{
			Index:          b,
			Lower:          float64(b) / float64(bins),
			Upper:          float64(b+1) / float64(bins),
			Mid:            (float64(b) + 0.5) / float64(bins),
			Count:          len(values),
			MeanConfidence: mean,
			Accuracy:       float64(hits[b]) / float64(len(values)),
		})
	}
	return out
}

// ExpectedCalibrationError is the count-weighted mean gap between accuracy and
// mean confidence across bins.
func ExpectedCalibrationError(bins []metrics.CalibrationBin) float64 {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total == 0 {
		return 0
	}
	ece := 0.0
	for _, b := range bins {
		ece += float64(b.Count) / float64(total) * math.Abs(b.Accuracy-b.MeanConfidence)
	}
	return ece
}
