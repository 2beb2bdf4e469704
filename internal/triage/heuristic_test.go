package triage

import (
	"testing"

	"medibot/domain/diagnosis"

	"github.com/stretchr/testify/assert"
)

func TestRiskFor(t *testing.T) {
	tests := []struct {
		sum  int
		want diagnosis.Risk
	}{
		{0, diagnosis.RiskLow},
		{6, diagnosis.RiskLow},
		{7, diagnosis.RiskMedium},
		{12, diagnosis.RiskMedium},
		{13, diagnosis.RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskFor(tt.sum), "sum %d", tt.sum)
	}
}

func TestAssess(t *testing.T) {
	a := Assess([]diagnosis.Item{
		{Name: "fever", Severity: 5},
		{Name: "cough", Severity: 4},
		{Name: "chills", Severity: 5},
	})

	assert.Equal(t, diagnosis.RiskHigh, a.Risk)
	assert.Equal(t, "Seek medical attention promptly.", a.Summary)
	assert.Equal(t, SourceHeuristic, a.Source)
	assert.Len(t, a.Recommendations, 3)
	assert.InDelta(t, 0.7, a.Differential[0].Confidence, 1e-12)
	assert.InDelta(t, 0.3, a.Differential[1].Confidence, 1e-12)
	assert.Equal(t, 0.25, a.Differential[2].Confidence)
}

func TestAssessCapsAndEmpty(t *testing.T) {
	var many []diagnosis.Item
	for i := 0; i < 8; i++ {
		many = append(many, diagnosis.Item{Name: "s", Severity: 5})
	}
	a := Assess(many)
	assert.Equal(t, 0.9, a.Differential[0].Confidence)
	assert.Equal(t, 0.6, a.Differential[1].Confidence)

	empty := Assess(nil)
	assert.Equal(t, diagnosis.RiskLow, empty.Risk)
	assert.Equal(t, 0.0, empty.Differential[0].Confidence)
	assert.InDelta(t, 0.1, empty.Differential[1].Confidence, 1e-12)
}
