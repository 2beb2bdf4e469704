// Package triage produces the offline risk assessment used when no remote
// predictor answers.
package triage

import (
	"math"

	"medibot/domain/diagnosis"
)

// Severity-sum thresholds; sums above them raise the risk level.
const (
	HighRiskAbove   = 12
	MediumRiskAbove = 6
)

// SourceHeuristic tags assessments produced locally.
const SourceHeuristic = "heuristic"

var summaries = map[diagnosis.Risk]string{
	diagnosis.RiskHigh:   "Seek medical attention promptly.",
	diagnosis.RiskMedium: "Monitor symptoms and consider consulting a professional.",
	diagnosis.RiskLow:    "Likely mild. Hydrate and rest.",
}

var recommendations = []string{
	"Track temperature 2-3x daily",
	"Hydrate and rest",
	"If symptoms persist >48h, consult a physician",
}

// RiskFor maps a severity sum to a risk level.
func RiskFor(severitySum int) diagnosis.Risk {
	switch {
	case severitySum > HighRiskAbove:
		return diagnosis.RiskHigh
	case severitySum > MediumRiskAbove:
		return diagnosis.RiskMedium
	default:
		return diagnosis.RiskLow
	}
}

// Assess scores reported items by summed severity.
func Assess(items []diagnosis.Item) diagnosis.Assessment {
	sum := 0
	for _, it := range items {
		sum += it.Severity
	}
	risk := RiskFor(sum)

	count := len(items)
	if count == 0 {
		count = 1
	}

	recs := make([]string, len(recommendations))
	copy(recs, recommendations)

	return diagnosis.Assessment{
		Risk:    risk,
		Summary: summaries[risk],
		Differential: []diagnosis.Differential{
			{Label: "Viral Infection", Confidence: math.Min(0.9, float64(sum)/20)},
			{Label: "Allergic Reaction", Confidence: math.Min(0.6, float64(count)/10)},
			{Label: "Dehydration", Confidence: 0.25},
		},
		Recommendations: recs,
		Source:          SourceHeuristic,
	}
}
