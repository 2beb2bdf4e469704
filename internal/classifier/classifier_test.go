package classifier

import (
	"testing"

	"medibot/internal/errors"
	"medibot/internal/features"
	"medibot/internal/split"
	"medibot/internal/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDataset = "symptom_1,symptom_2,prognosis\nfever,cough,flu\nfever,cough,flu\nrash,itching,allergy\n"

func buildMatrix(t *testing.T, text string) *features.Matrix {
	t.Helper()
	table, err := tabular.Parse(text, ",")
	require.NoError(t, err)
	m, err := features.Build(table)
	require.NoError(t, err)
	return m
}

func TestTrainUnionsVectors(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0, 1},
		{0, 1, 0, 1},
		{0, 0, 1, 0},
	}
	labels := []string{"a", "a", "b"}

	p, err := Train(vectors, labels, []string{"a", "b", "c"})
	require.NoError(t, err)

	a, ok := p.Profile("a")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1, 0, 1}, a)
	assert.Equal(t, []int{2, 1, 0}, p.Counts)
	assert.Equal(t, []string{"c"}, p.Missing())
	assert.Equal(t, 4, p.Dim())

	_, ok = p.Profile("c")
	assert.False(t, ok, "class without training rows has no profile")
	_, ok = p.Profile("zzz")
	assert.False(t, ok)

	assert.Equal(t, []float64{1, 0, 0, 1}, vectors[0], "training input must not be mutated")
}

func TestTrainRejectsInconsistentInput(t *testing.T) {
	_, err := Train([][]float64{{1}}, []string{"a", "b"}, []string{"a", "b"})
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))

	_, err = Train([][]float64{{1}}, []string{"z"}, []string{"a"})
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))

	_, err = Train([][]float64{{1, 0}, {1}}, []string{"a", "a"}, []string{"a"})
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))
}

func TestOverlapScore(t *testing.T) {
	assert.Equal(t, 0.5, OverlapScore([]float64{1, 0, 0, 0}, []float64{1, 1, 0, 0}))
	assert.Equal(t, 1.0, OverlapScore([]float64{1, 1, 1, 0}, []float64{1, 1, 0, 0}))
	assert.Equal(t, 0.0, OverlapScore([]float64{0, 0}, []float64{0, 0}), "empty profile divides by one")
	assert.Equal(t, 0.0, OverlapScore([]float64{1, 1}, nil))
}

func TestRankSortsDescendingAndStableOnTies(t *testing.T) {
	p, err := Train(
		[][]float64{{1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		[]string{"b", "d", "c", "e"},
		[]string{"a", "b", "c", "d", "e"},
	)
	require.NoError(t, err)

	r := p.Rank([]float64{1, 0, 0})
	classes := make([]string, len(r))
	for i, s := range r {
		classes[i] = s.Class
	}
	assert.Equal(t, []string{"b", "d", "e", "a", "c"}, classes)
	assert.Equal(t, 1.0, r[0].Score)
	assert.Equal(t, 0.5, r.Score("e"))
	assert.Equal(t, 0.0, r.Score("a"))

	assert.True(t, r.Contains("e", 3))
	assert.False(t, r.Contains("a", 3))
	assert.Len(t, r.Top(10), 5)
	assert.Len(t, r.Top(-1), 0)

	best, ok := r.Best()
	assert.True(t, ok)
	assert.Equal(t, "b", best.Class)
}

func TestRankEmptyQueryIsAllZero(t *testing.T) {
	p, err := Train([][]float64{{1, 0}, {0, 1}}, []string{"x", "y"}, []string{"x", "y"})
	require.NoError(t, err)

	r := p.Rank([]float64{0, 0})
	require.Len(t, r, 2)
	for _, s := range r {
		assert.Equal(t, 0.0, s.Score)
	}
	assert.Equal(t, "x", r[0].Class)
}

func TestDiagnoseScenario(t *testing.T) {
	m := buildMatrix(t, scenarioDataset)
	s, err := split.Stratified(m.Labels, m.Classes, 0.34, 1)
	require.NoError(t, err)

	model, err := Fit(m, s.Train)
	require.NoError(t, err)
	assert.Equal(t, []string{"allergy"}, model.Profiles.Missing())

	r := model.Diagnose([]string{"fever"})
	require.Len(t, r, 2)
	assert.Equal(t, "flu", r[0].Class)
	assert.Greater(t, r[0].Score, 0.0)
	assert.Equal(t, "allergy", r[1].Class)
	assert.Equal(t, 0.0, r[1].Score)
}

func TestDiagnoseFullDataIsCaseInsensitive(t *testing.T) {
	model, err := Fit(buildMatrix(t, scenarioDataset), nil)
	require.NoError(t, err)

	r := model.Diagnose([]string{"RASH", " Itching", "unknown"})
	assert.Equal(t, "allergy", r[0].Class)
	assert.Equal(t, 1.0, r[0].Score)
	assert.Equal(t, []string{"rash", "itching"}, model.Recognized([]string{"RASH", " Itching", "unknown"}))
	assert.Equal(t, []string{"cough", "fever", "itching", "rash"}, model.Vocabulary())
	assert.Equal(t, []string{"allergy", "flu"}, model.Classes())
}

func TestFitRejectsBadRows(t *testing.T) {
	_, err := Fit(buildMatrix(t, scenarioDataset), []int{0, 7})
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))

	_, err = Fit(nil, nil)
	assert.True(t, errors.HasCode(err, errors.CodeEvaluation))
}
