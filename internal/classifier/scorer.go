package classifier

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ClassScore pairs a class with its overlap score.
type ClassScore struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
}

// Ranking is ordered by descending score; ties keep class-set order.
type Ranking []ClassScore

// OverlapScore is dot(x, profile) / max(1, dot(profile, profile)).
// It lies in [0,1] for binary vectors but is not a probability.
func OverlapScore(x, profile []float64) float64 {
	if profile == nil {
		return 0
	}
	mass := math.Max(1, floats.Dot(profile, profile))
	return floats.Dot(x, profile) / mass
}

// Rank scores x against every class. Classes without a profile score zero.
// x must have the profiles' dimension.
func (p *Profiles) Rank(x []float64) Ranking {
	ranking := make(Ranking, len(p.Classes))
	for i, c := range p.Classes {
		ranking[i] = ClassScore{Class: c, Score: OverlapScore(x, p.vectors[i])}
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Score > ranking[b].Score
	})
	return ranking
}

// Top returns at most k leading entries.
func (r Ranking) Top(k int) Ranking {
	if k < 0 {
		k = 0
	}
	if k > len(r) {
		k = len(r)
	}
	return r[:k]
}

// Contains reports whether class is among the first k entries.
func (r Ranking) Contains(class string, k int) bool {
	for _, s := range r.Top(k) {
		if s.Class == class {
			return true
		}
	}
	return false
}

// Best returns the leading entry; ok is false for an empty ranking.
func (r Ranking) Best() (best ClassScore, ok bool) {
	if len(r) == 0 {
		return ClassScore{}, false
	}
	return r[0], true
}

// Score returns the score recorded for class, or zero.
func (r Ranking) Score(class string) float64 {
	for _, s := range r {
		if s.Class == class {
			return s.Score
		}
	}
	return 0
}
