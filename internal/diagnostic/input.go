package diagnostic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

// Decimal is a statistic that may arrive as a JSON number or as a
// pre-formatted string such as "1,25". Values that do not parse are kept as
// text and marked invalid.
type Decimal struct {
	Value float64
	Text  string
	Valid bool
}

// D wraps a finite float as a valid Decimal.
func D(f float64) Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}
	}
	return Decimal{Value: f, Valid: true}
}

// ParseDecimal parses a locale-formatted decimal string.
func ParseDecimal(s string) Decimal {
	d := Decimal{Text: strings.TrimSpace(s)}
	if f, ok := analysis.ParseNumber(s, analysis.NumberFormat{}); ok {
		d.Value, d.Valid = f, true
	}
	return d
}

// String formats the value the way reports display it: the original text when
// there was one, otherwise two decimal places.
func (d Decimal) String() string {
	if d.Text != "" {
		return d.Text
	}
	if !d.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(d.Value, 'f', 2, 64)
}

// UnmarshalJSON never fails: anything that is not a number or a numeric
// string yields an invalid Decimal.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*d = Decimal{}
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*d = ParseDecimal(s)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(b, &f); err == nil {
			*d = D(f)
		}
	}
	return nil
}

// MarshalJSON emits a number when valid, else the original text or null.
func (d Decimal) MarshalJSON() ([]byte, error) {
	switch {
	case d.Valid:
		return json.Marshal(d.Value)
	case d.Text != "":
		return json.Marshal(d.Text)
	default:
		return []byte("null"), nil
	}
}

// NumericInput is what the engine reads from a numeric column's statistics.
type NumericInput struct {
	Mean Decimal `json:"mean"`
	CV   Decimal `json:"cv"`
}

// CategoricalInput is what the engine reads from a categorical column's statistics.
type CategoricalInput struct {
	Unique int    `json:"unique"`
	Mode   string `json:"mode"`
}

// Input is everything the engine needs about one dataset.
type Input struct {
	DatasetName string
	TotalRows   int
	// Order fixes the report order of columns; unlisted columns follow, sorted.
	Order       []string
	Numeric     map[string]NumericInput
	Categorical map[string]CategoricalInput
}

// InputFromResult adapts a fresh analysis result.
func InputFromResult(name string, r *analysis.Result) Input {
	in := Input{
		DatasetName: name,
		Numeric:     map[string]NumericInput{},
		Categorical: map[string]CategoricalInput{},
	}
	if r == nil {
		return in
	}
	in.TotalRows = r.TotalRows
	in.Order = append([]string(nil), r.Columns...)
	for k, s := range r.NumericStats {
		in.Numeric[k] = NumericInput{Mean: D(s.Mean), CV: D(s.CV)}
	}
	for k, s := range r.CategoricalStats {
		in.Categorical[k] = CategoricalInput{Unique: s.Unique, Mode: s.Mode}
	}
	return in
}

// storedCategorical accepts both the current and the legacy field names.
type storedCategorical struct {
	Unique       *Decimal        `json:"unique"`
	UniqueValues *Decimal        `json:"uniqueValues"`
	Mode         json.RawMessage `json:"mode"`
}

type storedAnalysis struct {
	Columns          []string                     `json:"columns"`
	NumericStats     map[string]NumericInput      `json:"numericStats"`
	CategoricalStats map[string]storedCategorical `json:"categoricalStats"`
}

// DecodeInput reads a persisted analysis blob, tolerating statistics stored as
// formatted strings. Only a blob that is not a JSON object is an error.
func DecodeInput(name string, totalRows int, blob []byte) (Input, error) {
	var s storedAnalysis
	if err := json.Unmarshal(blob, &s); err != nil {
		return Input{}, fmt.Errorf("decode analysis: %w", err)
	}
	in := Input{
		DatasetName: name,
		TotalRows:   totalRows,
		Order:       s.Columns,
		Numeric:     map[string]NumericInput{},
		Categorical: map[string]CategoricalInput{},
	}
	for k, v := range s.NumericStats {
		in.Numeric[k] = v
	}
	for k, v := range s.CategoricalStats {
		var c CategoricalInput
		var mode analysis.Cell
		if len(v.Mode) > 0 && json.Unmarshal(v.Mode, &mode) == nil {
			c.Mode = mode.Raw()
		}
		switch {
		case v.Unique != nil && v.Unique.Valid:
			c.Unique = int(v.Unique.Value)
		case v.UniqueValues != nil && v.UniqueValues.Valid:
			c.Unique = int(v.UniqueValues.Value)
		}
		in.Categorical[k] = c
	}
	return in, nil
}
