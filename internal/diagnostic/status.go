package diagnostic

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/agroinsight-cli/internal/zootech"
)

// Status is the four-level outcome of a classification, ordered from best to worst.
type Status string

const (
	Excellent  Status = "Excelente"
	Good       Status = "Bom"
	Regular    Status = "Regular"
	Concerning Status = "Preocupante"
)

// Statuses lists every band from best to worst.
var Statuses = []Status{Excellent, Good, Regular, Concerning}

const needsAnalysis = "Valor requer análise mais detalhada."

// Classify places v in the reference range r:
//
//	idealMin <= v <= idealMax  Excellent
//	min <= v < idealMin        Good
//	idealMax < v <= max        Regular
//	v < min or v > max         Concerning
//
// A range without ideal bounds or a non-finite v yields Regular.
func Classify(v float64, r zootech.Range) (Status, string) {
	if !r.HasIdeal() || math.IsNaN(v) || math.IsInf(v, 0) {
		return Regular, needsAnalysis
	}
	lo, hi := *r.IdealMin, *r.IdealMax
	ideal := fmt.Sprintf("(%s-%s)", num(lo), num(hi))
	switch {
	case v >= lo && v <= hi:
		return Excellent, "Valor dentro da faixa ideal " + ideal + "."
	case v >= r.Min && v < lo:
		return Good, "Valor aceitável, mas abaixo do ideal " + ideal + "."
	case v > hi && v <= r.Max:
		return Regular, "Valor acima do ideal, mas ainda aceitável " + ideal + "."
	case v < r.Min || v > r.Max:
		return Concerning, fmt.Sprintf("Valor fora dos limites aceitáveis (%s-%s).", num(r.Min), num(r.Max))
	}
	return Regular, needsAnalysis
}

// ClassifyCV bands a coefficient of variation (percent) by uniformity.
func ClassifyCV(cv float64, t zootech.CVThresholds) Status {
	switch {
	case math.IsNaN(cv):
		return Regular
	case cv < t.Excellent:
		return Excellent
	case cv < t.Good:
		return Good
	case cv < t.Regular:
		return Regular
	default:
		return Concerning
	}
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
