// Package features encodes parsed dataset rows as binary symptom-presence vectors.
package features

import (
	"fmt"
	"sort"

	"medibot/internal/errors"
	"medibot/internal/tabular"

	"gonum.org/v1/gonum/floats"
)

// Placeholder is the literal that marks a missing symptom cell.
const Placeholder = "nan"

// Matrix holds the encoded dataset. It is read-only once built.
type Matrix struct {
	Vocabulary     []string
	Classes        []string
	ClassIndex     map[string]int
	Vectors        [][]float64
	Labels         []string
	SymptomColumns []string
	TargetColumn   string

	symptomIndex map[string]int
}

// Build derives the sorted vocabulary and class set from table and encodes every row.
func Build(table *tabular.Table) (*Matrix, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, errors.MalformedInput("dataset has no rows")
	}

	target, err := table.TargetColumn()
	if err != nil {
		return nil, err
	}
	symptomCols := table.SymptomColumns()
	if len(symptomCols) == 0 {
		return nil, errors.MalformedInput(fmt.Sprintf("dataset has no columns starting with %q", tabular.SymptomPrefix))
	}

	vocabSet := make(map[string]struct{})
	classSet := make(map[string]struct{})
	for i, row := range table.Rows {
		for _, col := range symptomCols {
			if s := row.Get(col); isToken(s) {
				vocabSet[s] = struct{}{}
			}
		}
		label := row.Get(target)
		if label == "" {
			return nil, errors.MalformedInput(fmt.Sprintf("row %d has an empty %s", i+1, target))
		}
		classSet[label] = struct{}{}
	}

	m := &Matrix{
		Vocabulary:     sortedKeys(vocabSet),
		Classes:        sortedKeys(classSet),
		SymptomColumns: symptomCols,
		TargetColumn:   target,
	}
	m.symptomIndex = indexOf(m.Vocabulary)
	m.ClassIndex = indexOf(m.Classes)

	m.Vectors = make([][]float64, len(table.Rows))
	m.Labels = make([]string, len(table.Rows))
	for i, row := range table.Rows {
		v := make([]float64, len(m.Vocabulary))
		for _, col := range symptomCols {
			if k, ok := m.symptomIndex[row.Get(col)]; ok {
				v[k] = 1
			}
		}
		m.Vectors[i] = v
		m.Labels[i] = row.Get(target)
	}

	return m, nil
}

// Encode builds a presence vector for free-form symptom tokens.
// Tokens are trimmed and lower-cased; tokens outside the vocabulary are ignored.
func (m *Matrix) Encode(symptoms []string) []float64 {
	v := make([]float64, len(m.Vocabulary))
	for _, s := range symptoms {
		if k, ok := m.symptomIndex[tabular.NormalizeValue(s)]; ok {
			v[k] = 1
		}
	}
	return v
}

// SymptomIndex returns the vocabulary position of symptom.
func (m *Matrix) SymptomIndex(symptom string) (int, bool) {
	k, ok := m.symptomIndex[tabular.NormalizeValue(symptom)]
	return k, ok
}

// Len is the number of encoded rows.
func (m *Matrix) Len() int {
	return len(m.Vectors)
}

// ActiveCount is the number of symptoms present in v.
func ActiveCount(v []float64) int {
	if len(v) == 0 {
		return 0
	}
	return int(floats.Sum(v))
}

func isToken(s string) bool {
	return s != "" && s != Placeholder
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(values []string) map[string]int {
	index := make(map[string]int, len(values))
	for i, v := range values {
		index[v] = i
	}
	return index
}
