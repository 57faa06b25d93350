package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// maxTopCategories bounds CategoricalStats.Top.
const maxTopCategories = 8

// CategoryCount is one entry of a frequency ranking.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalStats summarizes the valid values of a categorical column.
type CategoricalStats struct {
	Count        int                `json:"count"`
	MissingCount int                `json:"missingCount"`
	Unique       int                `json:"unique"`
	Frequencies  map[string]int     `json:"frequencies"`
	Distribution map[string]float64 `json:"distribution"`
	Entropy      float64            `json:"entropy"`
	Mode         string             `json:"mode"`
	Top          []CategoryCount    `json:"top"`
}

// ComputeCategorical counts values exactly as given (case-sensitive). Mode ties
// go to the value seen first; entropy is in bits.
func ComputeCategorical(values []string, total int) CategoricalStats {
	n := len(values)
	if total < n {
		total = n
	}
	s := CategoricalStats{
		Count:        n,
		MissingCount: total - n,
		Frequencies:  make(map[string]int),
		Distribution: make(map[string]float64),
		Top:          []CategoryCount{},
	}
	if n == 0 {
		return s
	}

	var order []string
	for _, v := range values {
		if _, ok := s.Frequencies[v]; !ok {
			order = append(order, v)
		}
		s.Frequencies[v]++
	}
	s.Unique = len(order)

	probs := make([]float64, len(order))
	best := 0
	for i, v := range order {
		c := s.Frequencies[v]
		p := float64(c) / float64(n)
		probs[i] = p
		s.Distribution[v] = p
		if c > best {
			best = c
			s.Mode = v
		}
	}
	if s.Unique > 1 {
		if h := stat.Entropy(probs) / math.Ln2; h > 0 && !math.IsInf(h, 0) {
			s.Entropy = h
		}
	}

	ranked := make([]CategoryCount, 0, len(order))
	for _, v := range order {
		ranked = append(ranked, CategoryCount{Value: v, Count: s.Frequencies[v]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Value < ranked[j].Value
	})
	if len(ranked) > maxTopCategories {
		ranked = ranked[:maxTopCategories]
	}
	s.Top = ranked
	return s
}
