// Package zootech holds the zootechnical indicator vocabulary and the
// literature reference ranges used to judge livestock datasets.
package zootech

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/stoewer/go-strcase"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Indicator identifies a recognized zootechnical indicator family.
type Indicator string

const (
	None           Indicator = "none"
	BirthWeight    Indicator = "peso_nascimento"
	WeaningWeight  Indicator = "peso_desmame_210d"
	DailyGain      Indicator = "gpd"
	FeedConversion Indicator = "conversao_alimentar"
	BirthRate      Indicator = "taxa_nascimento"
)

// Indicators lists every recognized indicator in matching priority order.
var Indicators = []Indicator{DailyGain, BirthWeight, WeaningWeight, FeedConversion, BirthRate}

func (i Indicator) String() string { return string(i) }

// Valid reports whether i is one of the recognized indicators.
func (i Indicator) Valid() bool {
	for _, k := range Indicators {
		if i == k {
			return true
		}
	}
	return false
}

// Category is the coarse grouping reported alongside zootechnical variables.
func (i Indicator) Category() string {
	switch i {
	case BirthWeight, WeaningWeight:
		return "Peso"
	case DailyGain:
		return "Desempenho"
	case FeedConversion:
		return "Eficiência alimentar"
	case BirthRate:
		return "Reprodução"
	default:
		return ""
	}
}

// Identify maps a column name to an indicator, or None. Matching ignores case,
// diacritics, camelCase boundaries and separators, so "Peso Nascimento (kg)",
// "pesoNascimento" and "PESO_NASCIMENTO_KG" all match BirthWeight.
func Identify(name string) Indicator {
	n := Normalize(name)
	if n == "" {
		return None
	}
	tokens := make(map[string]struct{})
	for _, t := range strings.Split(n, "_") {
		tokens[t] = struct{}{}
	}
	has := func(s string) bool { return strings.Contains(n, s) }
	token := func(s string) bool { _, ok := tokens[s]; return ok }

	switch {
	case has("gpd") || (has("ganho") && has("peso")) || has("daily_gain") || token("adg"):
		return DailyGain
	case has("peso") && (has("nasc") || has("birth")):
		return BirthWeight
	case has("peso") && (has("desmame") || has("wean")):
		return WeaningWeight
	case has("conversao") || has("feed_conversion") || token("ca") || token("fcr"):
		return FeedConversion
	case (has("taxa") && has("nasc")) || has("birth_rate"):
		return BirthRate
	}
	return None
}

// IsZootechnical reports whether name matches a recognized indicator.
func IsZootechnical(name string) bool { return Identify(name) != None }

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize folds a column name to lowercase ASCII snake_case.
func Normalize(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	s := strcase.SnakeCase(strings.TrimSpace(folded))
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), "_")
	return strings.Trim(s, "_")
}
