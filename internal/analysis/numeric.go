package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// NumericStats summarizes the valid values of a numeric column.
type NumericStats struct {
	Count        int       `json:"count"`
	ValidCount   int       `json:"validCount"`
	MissingCount int       `json:"missingCount"`
	Mean         float64   `json:"mean"`
	Median       float64   `json:"median"`
	Mode         *float64  `json:"mode,omitempty"`
	StdDev       float64   `json:"stdDev"`
	Variance     float64   `json:"variance"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	Range        float64   `json:"range"`
	Q1           float64   `json:"q1"`
	Q3           float64   `json:"q3"`
	IQR          float64   `json:"iqr"`
	CV           float64   `json:"cv"`
	Skewness     *float64  `json:"skewness,omitempty"`
	Outliers     []float64 `json:"outliers"`
	OutlierCount int       `json:"outlierCount"`
}

// ComputeNumeric computes descriptive statistics over values, the parsed valid
// cells of a column with total rows. Quartiles and the median use linear
// interpolation at p*(n-1) over the sorted sample. Non-finite inputs are
// ignored and no non-finite value is ever returned.
func ComputeNumeric(values []float64, total int) NumericStats {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	n := len(clean)
	if total < n {
		total = n
	}
	s := NumericStats{Count: total, ValidCount: n, MissingCount: total - n, Outliers: []float64{}}
	if n == 0 {
		return s
	}

	data := stats.Float64Data(clean)
	if mean, err := stats.Mean(data); err == nil {
		s.Mean = finite(mean)
	}
	if min, err := stats.Min(data); err == nil {
		s.Min = min
	}
	if max, err := stats.Max(data); err == nil {
		s.Max = max
	}
	s.Range = finite(s.Max - s.Min)
	if n >= 2 {
		if v, err := stats.PopulationVariance(data); err == nil && v > 0 {
			s.Variance = finite(v)
			s.StdDev = finite(math.Sqrt(s.Variance))
		}
	}

	sorted := append([]float64(nil), clean...)
	sort.Float64s(sorted)
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	s.IQR = s.Q3 - s.Q1
	if s.Mean != 0 {
		s.CV = finite(s.StdDev / math.Abs(s.Mean) * 100)
	}
	s.Mode = numericMode(sorted)
	if n >= 3 && s.Max > s.Min {
		s.Skewness = skewness(clean)
	}

	lo, hi := s.Q1-1.5*s.IQR, s.Q3+1.5*s.IQR
	for _, v := range clean {
		if v < lo || v > hi {
			s.Outliers = append(s.Outliers, v)
		}
	}
	s.OutlierCount = len(s.Outliers)
	return s
}

// numericMode returns the most frequent value, preferring the smallest on ties,
// or nil when every value occurs once.
func numericMode(sorted []float64) *float64 {
	best, bestCount := 0.0, 1
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	if bestCount < 2 {
		return nil
	}
	return &best
}

// skewness is the Fisher-Pearson coefficient g1 = m3 / m2^1.5.
func skewness(values []float64) *float64 {
	m2 := stat.Moment(2, values, nil)
	if !(m2 > 0) {
		return nil
	}
	g := stat.Moment(3, values, nil) / math.Pow(m2, 1.5)
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return nil
	}
	return &g
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
