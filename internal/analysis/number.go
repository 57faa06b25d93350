package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NumberFormat controls how text cells are parsed as numbers. Zero separators
// are auto-detected per value.
type NumberFormat struct {
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// ParseNumber parses a locale-formatted number such as "1.234,5", "1,234.5",
// "12,5%" or "3e2". Only finite values are accepted.
func ParseNumber(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := nf.DecimalSeparator
	thou := nf.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	if !numericText.MatchString(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numericText rejects hex floats, "inf" and "nan", which strconv would accept.
var numericText = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006", "02-01-2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "02/01/2006 15:04", "02/01/2006 15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var boolWords = map[string]bool{
	"true": true, "false": false,
	"sim": true, "nao": false, "não": false,
	"yes": true, "no": false,
	"verdadeiro": true, "falso": false,
}

func parseBoolWord(s string) (bool, bool) {
	v, ok := boolWords[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Peso (kg)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Altura [cm]
	{regexp.MustCompile(`(?i)^(.*?)[_\s-]+(kg|g|cm|m|mm|dias|meses|kg/dia|%)$`), 2},
}

// splitUnits separates a trailing unit annotation from a column header.
func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// quantile interpolates linearly between closest ranks at position q*(n-1)
// over sorted data (Hyndman-Fan type 7). The result is monotone in q and stays
// within the bracketing ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	v := sorted[lo] + w*(sorted[hi]-sorted[lo])
	return math.Min(math.Max(v, sorted[lo]), sorted[hi])
}
