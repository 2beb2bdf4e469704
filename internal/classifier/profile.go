// Package classifier implements the nearest-profile overlap classifier.
//
// Training collapses every class's training vectors into one binary profile
// (element-wise OR). Scoring ranks classes by the share of each profile's own
// mass that overlaps a query vector. There is no iterative optimization.
package classifier

import (
	"fmt"

	"medibot/internal/errors"
)

// Profiles holds one representative vector per class, indexed by class-set order.
// A class without training rows has no profile and always scores zero.
type Profiles struct {
	Classes []string
	Counts  []int

	vectors    [][]float64
	classIndex map[string]int
	dim        int
}

// Train builds profiles from training vectors and their parallel labels.
func Train(vectors [][]float64, labels []string, classes []string) (*Profiles, error) {
	if len(vectors) != len(labels) {
		return nil, errors.EvaluationFailed(fmt.Sprintf("got %d training vectors for %d labels", len(vectors), len(labels)))
	}

	p := &Profiles{
		Classes:    classes,
		Counts:     make([]int, len(classes)),
		vectors:    make([][]float64, len(classes)),
		classIndex: make(map[string]int, len(classes)),
		dim:        -1,
	}
	for i, c := range classes {
		p.classIndex[c] = i
	}

	for i, x := range vectors {
		k, ok := p.classIndex[labels[i]]
		if !ok {
			return nil, errors.EvaluationFailed(fmt.Sprintf("training label %q is not in the class set", labels[i]))
		}
		if p.dim < 0 {
			p.dim = len(x)
		} else if len(x) != p.dim {
			return nil, errors.EvaluationFailed(fmt.Sprintf("training vector %d has length %d, want %d", i, len(x), p.dim))
		}

		if p.vectors[k] == nil {
			p.vectors[k] = make([]float64, len(x))
			copy(p.vectors[k], x)
		} else {
			union(p.vectors[k], x)
		}
		p.Counts[k]++
	}

	return p, nil
}

// Profile returns the class profile; ok is false for an absent profile or unknown class.
func (p *Profiles) Profile(class string) (profile []float64, ok bool) {
	k, known := p.classIndex[class]
	if !known || p.vectors[k] == nil {
		return nil, false
	}
	return p.vectors[k], true
}

// Missing lists classes that received no training rows.
func (p *Profiles) Missing() []string {
	var missing []string
	for i, v := range p.vectors {
		if v == nil {
			missing = append(missing, p.Classes[i])
		}
	}
	return missing
}

// Dim is the profile length, or -1 when no class was trained.
func (p *Profiles) Dim() int {
	return p.dim
}

// union stores the element-wise maximum of dst and x in dst.
func union(dst, x []float64) {
	for i, v := range x {
		if v > dst[i] {
			dst[i] = v
		}
	}
}
