// Package split partitions dataset rows into train and test sets.
package split

import (
	"fmt"
	"math"

	"medibot/internal/errors"
)

// Split holds disjoint train/test row indices covering every row once.
// Indices are grouped by class (class-set order) and shuffled within each class.
type Split struct {
	Train        []int          `json:"train"`
	Test         []int          `json:"test"`
	TestPerClass map[string]int `json:"test_per_class"`
	Seed         int64          `json:"seed"`
	TestFraction float64        `json:"test_fraction"`
}

// CutSize is the number of a class's samples that go to the test partition.
// A single-sample class yields 1, which leaves it without training data.
func CutSize(classSize int, testFraction float64) int {
	cut := int(math.Round(float64(classSize) * testFraction))
	if cut < 1 {
		cut = 1
	}
	return cut
}

// Stratified groups row indices by label, shuffles each group with one LCG seeded
// from seed (classes visited in the given order) and cuts the front of every group
// into the test partition.
func Stratified(labels []string, classes []string, testFraction float64, seed int64) (*Split, error) {
	if testFraction <= 0 || testFraction >= 1 || math.IsNaN(testFraction) {
		return nil, errors.InvalidInput(fmt.Sprintf("test fraction must be in (0,1), got %v", testFraction))
	}

	byClass := make(map[string][]int, len(classes))
	for _, c := range classes {
		byClass[c] = nil
	}
	for i, label := range labels {
		if _, ok := byClass[label]; !ok {
			return nil, errors.EvaluationFailed(fmt.Sprintf("row %d has label %q outside the class set", i, label))
		}
		byClass[label] = append(byClass[label], i)
	}

	rng := NewLCG(seed)
	result := &Split{
		Train:        make([]int, 0, len(labels)),
		Test:         make([]int, 0, len(labels)),
		TestPerClass: make(map[string]int, len(classes)),
		Seed:         seed,
		TestFraction: testFraction,
	}

	for _, c := range classes {
		members := byClass[c]
		if len(members) == 0 {
			continue
		}
		shuffled := make([]int, len(members))
		copy(shuffled, members)
		rng.Shuffle(shuffled)

		cut := CutSize(len(shuffled), testFraction)
		result.Test = append(result.Test, shuffled[:cut]...)
		result.Train = append(result.Train, shuffled[cut:]...)
		result.TestPerClass[c] = cut
	}

	return result, nil
}
