package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Cell.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "missing"
	}
}

// Cell is one raw value of a tabular dataset. The zero value is Missing.
type Cell struct {
	Kind Kind
	Num  float64
	Str  string
	Flag bool
}

// Missing returns an empty cell.
func Missing() Cell { return Cell{} }

// Number wraps a numeric value. Non-finite values become Missing.
func Number(f float64) Cell {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Cell{}
	}
	return Cell{Kind: KindNumber, Num: f}
}

// Text wraps a raw string. Blank strings become Missing.
func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Str: s}
}

// Bool wraps a boolean value.
func Bool(b bool) Cell { return Cell{Kind: KindBool, Flag: b} }

// IsMissing reports whether the cell carries no usable value. Text cells holding
// a conventional missing marker (NA, null, ...) count as missing.
func (c Cell) IsMissing() bool {
	switch c.Kind {
	case KindMissing:
		return true
	case KindText:
		return isMissingMarker(c.Str)
	default:
		return false
	}
}

// Raw returns the cell formatted as it would appear in a CSV file.
func (c Cell) Raw() string {
	switch c.Kind {
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindText:
		return strings.TrimSpace(c.Str)
	case KindBool:
		return strconv.FormatBool(c.Flag)
	default:
		return ""
	}
}

func (c Cell) String() string { return c.Raw() }

// MarshalJSON encodes numbers, strings and booleans natively and Missing as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case KindNumber:
		return json.Marshal(c.Num)
	case KindText:
		return json.Marshal(c.Str)
	case KindBool:
		return json.Marshal(c.Flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar. Arrays and objects are rejected.
func (c *Cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = Missing()
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Text(s)
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*c = Bool(v)
	case '{', '[':
		return fmt.Errorf("cell: unsupported JSON value %.20s", b)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*c = Number(f)
	}
	return nil
}

// Row maps column names to cells. Rows of a dataset need not share keys.
type Row map[string]Cell

// Table is a parsed dataset. Header only fixes the preferred column order;
// columns missing from Header but present in rows are still analyzed.
type Table struct {
	Header []string
	Rows   []Row
}

// Columns returns Header followed by every other key present in any row, sorted.
func (t Table) Columns() []string {
	seen := make(map[string]struct{}, len(t.Header))
	cols := make([]string, 0, len(t.Header))
	for _, h := range t.Header {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		cols = append(cols, h)
	}
	var extra []string
	for _, r := range t.Rows {
		for k := range r {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

var missingMarkers = map[string]struct{}{
	"na": {}, "n/a": {}, "null": {}, "nan": {}, "-": {}, "none": {},
}

func isMissingMarker(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return true
	}
	_, ok := missingMarkers[v]
	return ok
}
