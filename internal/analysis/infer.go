package analysis

import (
	"math"

	"github.com/KaramelBytes/agroinsight-cli/internal/zootech"
)

// Options controls analysis behavior for tabular data.
type Options struct {
	// NumericThreshold is the share of valid cells that must parse as numbers for
	// a column to be numeric. 1.0 requires every value. Default 0.9.
	NumericThreshold float64
	// Number parsing locale. Zero separators are auto-detected per value.
	Number NumberFormat
	// SampleValues is how many distinct example values VariableInfo keeps.
	SampleValues int
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{NumericThreshold: 0.9, SampleValues: 5}
}

func (o Options) normalized() Options {
	if o.NumericThreshold <= 0 || o.NumericThreshold > 1 || math.IsNaN(o.NumericThreshold) {
		o.NumericThreshold = 0.9
	}
	if o.SampleValues <= 0 {
		o.SampleValues = 5
	}
	return o
}

// VariableType is the semantic classification of a column.
type VariableType string

const (
	QuantitativeContinuous VariableType = "Quantitativa Contínua"
	QuantitativeDiscrete   VariableType = "Quantitativa Discreta"
	QualitativeNominal     VariableType = "Qualitativa Nominal"
	// QualitativeOrdinal is never inferred automatically.
	QualitativeOrdinal VariableType = "Qualitativa Ordinal"
)

// Quantitative reports whether t is one of the numeric classifications.
func (t VariableType) Quantitative() bool {
	return t == QuantitativeContinuous || t == QuantitativeDiscrete
}

// DetectedType is the primitive type observed in a column's values.
type DetectedType string

const (
	DetectedNumber  DetectedType = "number"
	DetectedString  DetectedType = "string"
	DetectedBoolean DetectedType = "boolean"
	DetectedDate    DetectedType = "date"
)

// VariableInfo is the per-column classification result.
type VariableInfo struct {
	Name           string            `json:"name"`
	Type           VariableType      `json:"type"`
	DetectedType   DetectedType      `json:"detectedType"`
	HasDecimals    bool              `json:"hasDecimals,omitempty"`
	UniqueValues   int               `json:"uniqueValues"`
	NullCount      int               `json:"nullCount"`
	ValidCount     int               `json:"validCount"`
	MalformedCount int               `json:"malformedCount,omitempty"`
	IsZootechnical bool              `json:"isZootechnical"`
	Indicator      zootech.Indicator `json:"indicator,omitempty"`
	Category       string            `json:"category,omitempty"`
	Unit           string            `json:"unit,omitempty"`
	SampleValues   []Cell            `json:"sampleValues,omitempty"`
}

// InferVariable classifies one column from all of its cells. Every cell is
// inspected; it never fails.
func InferVariable(name string, cells []Cell, opt Options) VariableInfo {
	info, _, _ := inferColumn(name, cells, opt.normalized())
	return info
}

// inferColumn classifies a column and returns the values to feed the matching
// calculator: parsed numbers for numeric columns, raw text otherwise.
func inferColumn(name string, cells []Cell, opt Options) (VariableInfo, []float64, []string) {
	info := VariableInfo{Name: name, Indicator: zootech.Identify(name)}
	info.IsZootechnical = info.Indicator != zootech.None
	info.Category = info.Indicator.Category()
	if !info.IsZootechnical {
		info.Indicator = ""
	}
	_, info.Unit = splitUnits(name)

	valid := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if !c.IsMissing() {
			valid = append(valid, c)
		}
	}

	nums := make([]float64, 0, len(valid))
	for _, c := range valid {
		if f, ok := cellNumber(c, opt.Number); ok {
			nums = append(nums, f)
		}
	}

	if len(valid) > 0 && meetsThreshold(len(nums), len(valid), opt.NumericThreshold) {
		info.DetectedType = DetectedNumber
		info.ValidCount = len(nums)
		info.NullCount = len(cells) - len(nums)
		info.MalformedCount = len(valid) - len(nums)
		seen := make(map[float64]struct{}, len(nums))
		for _, f := range nums {
			if f != math.Trunc(f) {
				info.HasDecimals = true
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			if len(info.SampleValues) < opt.SampleValues {
				info.SampleValues = append(info.SampleValues, Number(f))
			}
		}
		info.UniqueValues = len(seen)
		info.Type = QuantitativeDiscrete
		if info.HasDecimals {
			info.Type = QuantitativeContinuous
		}
		return info, nums, nil
	}

	info.Type = QualitativeNominal
	info.ValidCount = len(valid)
	info.NullCount = len(cells) - len(valid)
	info.DetectedType = detectNonNumeric(valid, opt)

	texts := make([]string, 0, len(valid))
	seen := make(map[string]struct{}, len(valid))
	for _, c := range valid {
		raw := c.Raw()
		texts = append(texts, raw)
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}
		if len(info.SampleValues) < opt.SampleValues {
			if c.Kind == KindBool {
				info.SampleValues = append(info.SampleValues, c)
			} else {
				info.SampleValues = append(info.SampleValues, Text(raw))
			}
		}
	}
	info.UniqueValues = len(seen)
	return info, nil, texts
}

func detectNonNumeric(valid []Cell, opt Options) DetectedType {
	if len(valid) == 0 {
		return DetectedString
	}
	allBool := true
	dates := 0
	for _, c := range valid {
		switch c.Kind {
		case KindBool:
		case KindText:
			if _, ok := parseBoolWord(c.Str); !ok {
				allBool = false
			}
			if _, ok := parseTimeMaybe(c.Str); ok {
				dates++
			}
		default:
			allBool = false
		}
	}
	if allBool {
		return DetectedBoolean
	}
	if meetsThreshold(dates, len(valid), opt.NumericThreshold) {
		return DetectedDate
	}
	return DetectedString
}

// meetsThreshold reports whether hits/total >= share, tolerating float rounding.
func meetsThreshold(hits, total int, share float64) bool {
	return total > 0 && float64(hits) >= share*float64(total)-1e-9
}

func cellNumber(c Cell, nf NumberFormat) (float64, bool) {
	switch c.Kind {
	case KindNumber:
		return c.Num, true
	case KindText:
		return ParseNumber(c.Str, nf)
	default:
		return 0, false
	}
}
