// Package synth generates realistic cattle herd datasets for demos and tests.
package synth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

var (
	breeds     = []string{"Nelore", "Angus", "Brahman", "Simental", "Hereford", "Gir", "Guzerá", "Caracu"}
	sexes      = []string{"Macho", "Fêmea"}
	states     = []string{"MT", "MS", "GO", "SP", "MG", "RS", "PR", "BA"}
	categories = []string{"Bezerro", "Recria", "Terminação", "Reprodução"}
	months     = []string{"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho", "Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"}
)

// Column groups in output order.
var (
	idColumns          = []string{"ID", "ANIMAL"}
	categoricalColumns = []string{"RACA", "SEXO", "CATEGORIA", "ESTADO", "MES", "TRIMESTRE"}
	numericColumns     = []string{
		"ANO", "PESO_NASCIMENTO_KG", "PESO_DESMAME_KG", "PESO_ATUAL_KG", "IDADE_MESES",
		"GPD", "CA", "RENDIMENTO_CARCACA", "ESCORE_CORPORAL", "ALTURA_GARUPA_CM",
	}
)

// DefaultMissingProb is the share of blanked cells when missing values are requested.
const DefaultMissingProb = 0.05

// Config controls the generated herd.
type Config struct {
	Rows        int
	Numeric     bool
	Categorical bool
	// MissingProb blanks each categorical or numeric cell with this probability.
	MissingProb float64
	Seed        int64
}

// DefaultConfig is 100 rows with every column and no missing values.
func DefaultConfig() Config {
	return Config{Rows: 100, Numeric: true, Categorical: true, Seed: 1}
}

type weights struct {
	birth, weaning, current [2]float64
	age                     [2]float64
}

// Weight ranges per category; Reprodução males are heavier.
var categoryWeights = map[string]weights{
	"Bezerro":    {birth: [2]float64{28, 38}, weaning: [2]float64{160, 200}, current: [2]float64{200, 280}, age: [2]float64{3, 8}},
	"Recria":     {birth: [2]float64{28, 38}, weaning: [2]float64{180, 220}, current: [2]float64{280, 380}, age: [2]float64{8, 18}},
	"Terminação": {birth: [2]float64{30, 40}, weaning: [2]float64{190, 230}, current: [2]float64{450, 550}, age: [2]float64{18, 30}},
	"Reprodução": {birth: [2]float64{30, 38}, weaning: [2]float64{180, 220}, current: [2]float64{450, 550}, age: [2]float64{30, 72}},
}

// Generate builds a table with cfg.Rows animals. The output depends only on cfg.
func Generate(cfg Config) analysis.Table {
	rng := rand.New(rand.NewSource(cfg.Seed))
	g := gen{rng: rng, missing: cfg.MissingProb}

	header := append([]string{}, idColumns...)
	if cfg.Categorical {
		header = append(header, categoricalColumns...)
	}
	if cfg.Numeric {
		header = append(header, numericColumns...)
	}
	t := analysis.Table{Header: header}

	for i := 1; i <= cfg.Rows; i++ {
		sexo := g.choice(sexes)
		raca := g.choice(breeds)
		categoria := g.choice(categories)
		w := categoryWeights[categoria]
		if categoria == "Reprodução" && sexo == "Macho" {
			w.current = [2]float64{700, 900}
		}
		birth := g.between(w.birth, 1)
		weaning := g.between(w.weaning, 1)
		current := g.between(w.current, 1)
		age := g.between(w.age, 0)
		gpd := g.between([2]float64{0.6, 1.3}, 3)
		ca := g.between([2]float64{6, 10}, 2)
		carcass := g.between([2]float64{48, 56}, 1)

		row := analysis.Row{
			"ID":     analysis.Text(fmt.Sprintf("A%05d", i)),
			"ANIMAL": analysis.Text(fmt.Sprintf("BOV%04d", i)),
		}
		if cfg.Categorical {
			row["RACA"] = g.maybe(analysis.Text(raca))
			row["SEXO"] = g.maybe(analysis.Text(sexo))
			row["CATEGORIA"] = g.maybe(analysis.Text(categoria))
			row["ESTADO"] = g.maybe(analysis.Text(g.choice(states)))
			row["MES"] = g.maybe(analysis.Text(g.choice(months)))
			row["TRIMESTRE"] = g.maybe(analysis.Text(fmt.Sprintf("Q%d", 1+rng.Intn(4))))
		}
		if cfg.Numeric {
			row["ANO"] = g.maybe(analysis.Number(g.between([2]float64{2023, 2025}, 0)))
			row["PESO_NASCIMENTO_KG"] = g.maybe(analysis.Number(birth))
			row["PESO_DESMAME_KG"] = g.maybe(analysis.Number(weaning))
			row["PESO_ATUAL_KG"] = g.maybe(analysis.Number(current))
			row["IDADE_MESES"] = g.maybe(analysis.Number(age))
			row["GPD"] = g.maybe(analysis.Number(gpd))
			row["CA"] = g.maybe(analysis.Number(ca))
			row["RENDIMENTO_CARCACA"] = g.maybe(analysis.Number(carcass))
			row["ESCORE_CORPORAL"] = g.maybe(analysis.Number(g.between([2]float64{2.5, 4.5}, 1)))
			row["ALTURA_GARUPA_CM"] = g.maybe(analysis.Number(g.between([2]float64{120, 150}, 1)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

type gen struct {
	rng     *rand.Rand
	missing float64
}

func (g gen) choice(xs []string) string { return xs[g.rng.Intn(len(xs))] }

func (g gen) between(r [2]float64, decimals int) float64 {
	v := r[0] + g.rng.Float64()*(r[1]-r[0])
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func (g gen) maybe(c analysis.Cell) analysis.Cell {
	if g.missing > 0 && g.rng.Float64() < g.missing {
		return analysis.Missing()
	}
	return c
}
