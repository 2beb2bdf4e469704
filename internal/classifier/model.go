package classifier

import (
	"fmt"

	"medibot/internal/errors"
	"medibot/internal/features"
)

// Model answers diagnosis queries with the same ranking the evaluator uses.
type Model struct {
	Profiles *Profiles
	matrix   *features.Matrix
}

// Fit trains profiles on the given rows of m. A nil rows slice uses every row.
func Fit(m *features.Matrix, rows []int) (*Model, error) {
	if m == nil {
		return nil, errors.EvaluationFailed("cannot fit a model without a feature matrix")
	}
	if rows == nil {
		rows = make([]int, m.Len())
		for i := range rows {
			rows[i] = i
		}
	}

	vectors := make([][]float64, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		if r < 0 || r >= m.Len() {
			return nil, errors.EvaluationFailed(fmt.Sprintf("row index %d out of range [0,%d)", r, m.Len()))
		}
		vectors[i] = m.Vectors[r]
		labels[i] = m.Labels[r]
	}

	profiles, err := Train(vectors, labels, m.Classes)
	if err != nil {
		return nil, err
	}
	return &Model{Profiles: profiles, matrix: m}, nil
}

// Diagnose ranks every class for a list of reported symptoms.
// Matching is case-insensitive and unknown symptoms are ignored, so an
// empty or unrecognized query ranks every class at zero.
func (m *Model) Diagnose(symptoms []string) Ranking {
	return m.Profiles.Rank(m.matrix.Encode(symptoms))
}

// Recognized returns the query symptoms present in the vocabulary, normalized.
func (m *Model) Recognized(symptoms []string) []string {
	var known []string
	for _, s := range symptoms {
		if k, ok := m.matrix.SymptomIndex(s); ok {
			known = append(known, m.matrix.Vocabulary[k])
		}
	}
	return known
}

// Vocabulary lists the symptoms the model understands.
func (m *Model) Vocabulary() []string {
	return m.matrix.Vocabulary
}

// Classes lists the diagnoses in class-set order.
func (m *Model) Classes() []string {
	return m.matrix.Classes
}
