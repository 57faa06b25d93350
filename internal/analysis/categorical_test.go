package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCategorical_BalancedSplit(t *testing.T) {
	vals := make([]string, 0, 100)
	for i := 0; i < 50; i++ {
		vals = append(vals, "Fêmea", "Macho")
	}
	s := ComputeCategorical(vals, 100)

	assert.Equal(t, 2, s.Unique)
	assert.Equal(t, 100, s.Count)
	assert.Equal(t, 0, s.MissingCount)
	assert.InDelta(t, 1.0, s.Entropy, 1e-9)
	assert.Equal(t, "Fêmea", s.Mode, "ties go to the first value seen")
	assert.Equal(t, map[string]int{"Fêmea": 50, "Macho": 50}, s.Frequencies)
	assert.InDelta(t, 0.5, s.Distribution["Macho"], 1e-12)
	assert.Equal(t, []CategoryCount{{"Fêmea", 50}, {"Macho", 50}}, s.Top)
}

func TestComputeCategorical_FrequenciesSumAndEntropy(t *testing.T) {
	cases := [][]string{
		{"a"},
		{"a", "a", "a"},
		{"a", "A", "a", "b"},
		{"Nelore", "Angus", "Nelore", "Brahman", "Nelore", "Angus"},
	}
	for _, vals := range cases {
		s := ComputeCategorical(vals, len(vals)+2)
		sum := 0
		for _, c := range s.Frequencies {
			sum += c
		}
		assert.Equal(t, s.Count, sum)
		assert.Equal(t, len(vals), s.Count)
		assert.Equal(t, 2, s.MissingCount)
		assert.GreaterOrEqual(t, s.Entropy, 0.0)
		if s.Unique == 1 {
			assert.Equal(t, 0.0, s.Entropy)
		} else {
			assert.Greater(t, s.Entropy, 0.0)
		}
	}
}

func TestComputeCategorical_CaseSensitive(t *testing.T) {
	s := ComputeCategorical([]string{"macho", "Macho", "Macho"}, 3)
	assert.Equal(t, 2, s.Unique)
	assert.Equal(t, "Macho", s.Mode)
}

func TestComputeCategorical_Empty(t *testing.T) {
	s := ComputeCategorical(nil, 4)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 4, s.MissingCount)
	assert.Equal(t, 0.0, s.Entropy)
	assert.Equal(t, "", s.Mode)
	assert.NotNil(t, s.Frequencies)
	assert.NotNil(t, s.Top)
}

func TestComputeCategorical_TopIsBounded(t *testing.T) {
	var vals []string
	for i := 0; i < 12; i++ {
		for j := 0; j <= i; j++ {
			vals = append(vals, fmt.Sprintf("cat%02d", i))
		}
	}
	s := ComputeCategorical(vals, len(vals))
	assert.Equal(t, 12, s.Unique)
	assert.Len(t, s.Top, maxTopCategories)
	assert.Equal(t, "cat11", s.Top[0].Value)
	assert.Equal(t, 12, s.Top[0].Count)
	assert.Equal(t, "cat11", s.Mode)
}
