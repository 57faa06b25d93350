package zootech

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Range is the literature reference range of one indicator.
type Range struct {
	Min      float64  `yaml:"min" json:"min"`
	IdealMin *float64 `yaml:"ideal_min,omitempty" json:"idealMin,omitempty"`
	IdealMax *float64 `yaml:"ideal_max,omitempty" json:"idealMax,omitempty"`
	Max      float64  `yaml:"max" json:"max"`
	Source   string   `yaml:"source" json:"source"`
	Label    string   `yaml:"label,omitempty" json:"label,omitempty"`
	Unit     string   `yaml:"unit,omitempty" json:"unit,omitempty"`
}

// HasIdeal reports whether both ideal bounds are set.
func (r Range) HasIdeal() bool { return r.IdealMin != nil && r.IdealMax != nil }

func (r Range) clone() Range {
	if r.IdealMin != nil {
		v := *r.IdealMin
		r.IdealMin = &v
	}
	if r.IdealMax != nil {
		v := *r.IdealMax
		r.IdealMax = &v
	}
	return r
}

func (r Range) validate() error {
	vals := []float64{r.Min, r.Max}
	if r.IdealMin != nil {
		vals = append(vals, *r.IdealMin)
	}
	if r.IdealMax != nil {
		vals = append(vals, *r.IdealMax)
	}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("bounds must be finite")
		}
	}
	if r.Min > r.Max {
		return fmt.Errorf("min %g > max %g", r.Min, r.Max)
	}
	if (r.IdealMin == nil) != (r.IdealMax == nil) {
		return errors.New("ideal_min and ideal_max must be set together")
	}
	if r.HasIdeal() && !(r.Min <= *r.IdealMin && *r.IdealMin <= *r.IdealMax && *r.IdealMax <= r.Max) {
		return fmt.Errorf("want min <= ideal_min <= ideal_max <= max, got %g/%g/%g/%g", r.Min, *r.IdealMin, *r.IdealMax, r.Max)
	}
	return nil
}

// CVThresholds are the coefficient-of-variation cutoffs (percent) used to judge
// herd uniformity when a column has no reference range.
type CVThresholds struct {
	Excellent float64 `yaml:"excellent" json:"excellent"`
	Good      float64 `yaml:"good" json:"good"`
	Regular   float64 `yaml:"regular" json:"regular"`
	Source    string  `yaml:"source" json:"source"`
}

// Table is an immutable set of reference ranges. A *Table is safe for
// concurrent use.
type Table struct {
	ranges map[Indicator]Range
	cv     CVThresholds
}

func ptr(f float64) *float64 { return &f }

// DefaultTable returns the EMBRAPA/NRC reference values.
func DefaultTable() *Table {
	return &Table{
		ranges: map[Indicator]Range{
			BirthWeight: {
				Min: 28, IdealMin: ptr(30), IdealMax: ptr(38), Max: 45,
				Source: "EMBRAPA Gado de Corte (2020)", Label: "Peso ao nascimento", Unit: "kg",
			},
			WeaningWeight: {
				Min: 160, IdealMin: ptr(180), IdealMax: ptr(250), Max: 280,
				Source: "Manual Brasileiro de Boas Práticas Agropecuárias", Label: "Peso ao desmame (210 dias)", Unit: "kg",
			},
			DailyGain: {
				Min: 0.4, IdealMin: ptr(0.8), IdealMax: ptr(1.4), Max: 1.8,
				Source: "NRC - Nutrient Requirements of Beef Cattle", Label: "Ganho de peso diário", Unit: "kg/dia",
			},
			FeedConversion: {
				Min: 5, IdealMin: ptr(6), IdealMax: ptr(9), Max: 12,
				Source: "Manual de Confinamento ASBIA", Label: "Conversão alimentar", Unit: "kg MS/kg PV",
			},
			BirthRate: {
				Min: 70, IdealMin: ptr(85), IdealMax: ptr(95), Max: 100,
				Source: "EMBRAPA - Índices Reprodutivos", Label: "Taxa de nascimento", Unit: "%",
			},
		},
		cv: CVThresholds{Excellent: 15, Good: 25, Regular: 35, Source: "Análise Estatística Aplicada à Zootecnia"},
	}
}

// NewTable validates and copies ranges and cv into a new Table.
func NewTable(ranges map[Indicator]Range, cv CVThresholds) (*Table, error) {
	t := &Table{ranges: make(map[Indicator]Range, len(ranges)), cv: cv}
	for k, r := range ranges {
		if !k.Valid() {
			return nil, fmt.Errorf("unknown indicator %q", k)
		}
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("indicator %s: %w", k, err)
		}
		t.ranges[k] = r.clone()
	}
	if !(cv.Excellent > 0 && cv.Excellent <= cv.Good && cv.Good <= cv.Regular) || math.IsInf(cv.Regular, 0) {
		return nil, fmt.Errorf("cv thresholds must satisfy 0 < excellent <= good <= regular, got %g/%g/%g", cv.Excellent, cv.Good, cv.Regular)
	}
	return t, nil
}

// Lookup returns a copy of the range for ind.
func (t *Table) Lookup(ind Indicator) (Range, bool) {
	r, ok := t.ranges[ind]
	if !ok {
		return Range{}, false
	}
	return r.clone(), true
}

// CV returns the uniformity thresholds.
func (t *Table) CV() CVThresholds { return t.cv }

// Indicators returns the indicators that have a range, in matching priority order.
func (t *Table) Indicators() []Indicator {
	var out []Indicator
	for _, k := range Indicators {
		if _, ok := t.ranges[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// tableFile is the YAML layout of a reference table.
type tableFile struct {
	Indicators map[Indicator]Range `yaml:"indicators"`
	CV         *CVThresholds       `yaml:"cv,omitempty"`
}

// LoadTable reads a YAML reference table. Indicators present in the file
// replace the defaults; absent ones keep their default range. Omitted CV
// fields keep their defaults.
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read references: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse references %s: %w", path, err)
	}
	def := DefaultTable()
	ranges := def.ranges
	for k, r := range f.Indicators {
		ranges[k] = r
	}
	cv := def.cv
	if f.CV != nil {
		if f.CV.Excellent != 0 {
			cv.Excellent = f.CV.Excellent
		}
		if f.CV.Good != 0 {
			cv.Good = f.CV.Good
		}
		if f.CV.Regular != 0 {
			cv.Regular = f.CV.Regular
		}
		if f.CV.Source != "" {
			cv.Source = f.CV.Source
		}
	}
	t, err := NewTable(ranges, cv)
	if err != nil {
		return nil, fmt.Errorf("references %s: %w", path, err)
	}
	return t, nil
}

// WriteYAML encodes the table in the format LoadTable reads.
func (t *Table) WriteYAML(w io.Writer) error {
	cv := t.cv
	f := tableFile{Indicators: make(map[Indicator]Range, len(t.ranges)), CV: &cv}
	for k, r := range t.ranges {
		f.Indicators[k] = r.clone()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// Sources returns every citation the table can produce, sorted.
func (t *Table) Sources() []string {
	set := map[string]struct{}{t.cv.Source: {}}
	for _, r := range t.ranges {
		set[r.Source] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		if s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
