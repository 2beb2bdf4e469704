// Package catalog keeps the per-diagnosis symptom lists derived from the
// dataset and matches pick lists against them with an order boost.
package catalog

import (
	"sort"

	"medibot/domain/diagnosis"
	"medibot/internal/features"
	"medibot/internal/tabular"
)

// DefaultOrderBoost is the extra weight per later pick for earlier picks.
const DefaultOrderBoost = 0.1

// Catalog maps each diagnosis to its sorted, distinct symptoms.
type Catalog struct {
	Diseases []string
	symptoms map[string][]string
}

// MatchOptions tune Match.
type MatchOptions struct {
	OrderBoost float64
	Normalize  bool
}

// DefaultMatchOptions boosts earlier picks by 0.1 and normalizes by list size.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{OrderBoost: DefaultOrderBoost, Normalize: true}
}

// FromMatrix builds the catalog from an encoded dataset.
func FromMatrix(m *features.Matrix) *Catalog {
	sets := make(map[string]map[int]struct{}, len(m.Classes))
	for i, label := range m.Labels {
		set, ok := sets[label]
		if !ok {
			set = make(map[int]struct{})
			sets[label] = set
		}
		for k, v := range m.Vectors[i] {
			if v > 0 {
				set[k] = struct{}{}
			}
		}
	}

	c := &Catalog{
		Diseases: m.Classes,
		symptoms: make(map[string][]string, len(m.Classes)),
	}
	for _, disease := range m.Classes {
		list := make([]string, 0, len(sets[disease]))
		for k := range sets[disease] {
			list = append(list, m.Vocabulary[k])
		}
		sort.Strings(list)
		c.symptoms[disease] = list
	}
	return c
}

// Symptoms returns the known symptoms of disease.
func (c *Catalog) Symptoms(disease string) []string {
	return c.symptoms[disease]
}

// Match scores picks against every disease. A pick at position pos of n adds
// 1 + max(0, n-pos-1)*OrderBoost when the disease lists it. Zero scores are
// dropped; the rest are sorted descending, ties in disease order.
func (c *Catalog) Match(picks []string, opts MatchOptions) []diagnosis.CatalogMatch {
	position := make(map[string]int, len(picks))
	normalized := make([]string, 0, len(picks))
	for _, p := range picks {
		p = tabular.NormalizeValue(p)
		if _, dup := position[p]; dup {
			continue
		}
		position[p] = len(normalized)
		normalized = append(normalized, p)
	}
	n := len(normalized)

	var matches []diagnosis.CatalogMatch
	for _, disease := range c.Diseases {
		list := c.symptoms[disease]
		score := 0.0
		for _, s := range list {
			pos, ok := position[s]
			if !ok {
				continue
			}
			later := n - pos - 1
			if later < 0 {
				later = 0
			}
			score += 1 + float64(later)*opts.OrderBoost
		}
		if opts.Normalize && len(list) > 0 {
			score /= float64(len(list))
		}
		if score > 0 {
			matches = append(matches, diagnosis.CatalogMatch{Disease: disease, Score: score})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches
}
