// Package diagnostic turns dataset statistics into a rule-based zootechnical
// report: each numeric column is classified against literature reference
// ranges, or against uniformity thresholds when no range applies.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/agroinsight-cli/internal/zootech"
)

// NumericAnalysis is the verdict on one numeric column.
type NumericAnalysis struct {
	Variable             string            `json:"variavel"`
	Interpretation       string            `json:"interpretacao"`
	LiteratureComparison string            `json:"comparacaoLiteratura"`
	Status               Status            `json:"status"`
	Indicator            zootech.Indicator `json:"indicador,omitempty"`
}

// CategoricalAnalysis summarizes one categorical column.
type CategoricalAnalysis struct {
	Variable       string `json:"variavel"`
	Interpretation string `json:"interpretacao"`
	Distribution   string `json:"distribuicao"`
}

// Recommendation is one prioritized action, 1 being the most urgent.
type Recommendation struct {
	Priority      int    `json:"prioridade"`
	Title         string `json:"titulo"`
	Description   string `json:"descricao"`
	Justification string `json:"justificativa"`
}

// Diagnostico is the generated report. It is derived on demand and never stored.
type Diagnostico struct {
	DatasetName     string                `json:"-"`
	Summary         string                `json:"resumoExecutivo"`
	Numeric         []NumericAnalysis     `json:"analiseNumericas"`
	Categorical     []CategoricalAnalysis `json:"analiseCategoricas"`
	Strengths       []string              `json:"pontosFortes"`
	Concerns        []string              `json:"pontosAtencao"`
	Recommendations []Recommendation      `json:"recomendacoesPrioritarias"`
	Conclusion      string                `json:"conclusao"`
	Sources         []string              `json:"fontes"`
}

// StatusCounts tallies numeric verdicts per band.
func (d *Diagnostico) StatusCounts() map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, n := range d.Numeric {
		out[n.Status]++
	}
	return out
}

// Engine applies a reference table. It holds no mutable state, so one Engine
// may serve any number of goroutines.
type Engine struct {
	refs *zootech.Table
}

// NewEngine returns an engine over refs, or over the default table when refs is nil.
func NewEngine(refs *zootech.Table) *Engine {
	if refs == nil {
		refs = zootech.DefaultTable()
	}
	return &Engine{refs: refs}
}

// References returns the table the engine classifies against.
func (e *Engine) References() *zootech.Table { return e.refs }

// Generate builds the report for in. It never fails.
func (e *Engine) Generate(in Input) *Diagnostico {
	d := &Diagnostico{
		DatasetName:     in.DatasetName,
		Numeric:         []NumericAnalysis{},
		Categorical:     []CategoricalAnalysis{},
		Strengths:       []string{},
		Concerns:        []string{},
		Recommendations: []Recommendation{},
	}
	sources := make(map[string]struct{})
	excellent, concerning := 0, 0
	cvRef := e.refs.CV()

	for _, name := range columnOrder(in.Order, keys(in.Numeric)) {
		stats := in.Numeric[name]
		na := NumericAnalysis{Variable: name, Status: Regular}
		mean := stats.Mean.String()
		ind := zootech.Identify(name)
		ref, recognized := e.refs.Lookup(ind)

		switch {
		case !stats.Mean.Valid:
			na.Interpretation = needsAnalysis
		case recognized:
			status, text := Classify(stats.Mean.Value, ref)
			na.Status = status
			na.Indicator = ind
			na.Interpretation = fmt.Sprintf("Média de %s: %s", mean, text)
			na.LiteratureComparison = "Referência: " + ref.Source
			sources[ref.Source] = struct{}{}
			switch status {
			case Excellent:
				d.Strengths = append(d.Strengths, fmt.Sprintf("%s: %s (Excelente)", name, mean))
				excellent++
			case Concerning:
				d.Concerns = append(d.Concerns, fmt.Sprintf("%s: %s (Necessita atenção)", name, mean))
				concerning++
			}
		case !stats.CV.Valid:
			na.Interpretation = needsAnalysis
		default:
			cv := stats.CV.String()
			na.Status = ClassifyCV(stats.CV.Value, cvRef)
			switch na.Status {
			case Excellent:
				na.Interpretation = fmt.Sprintf("Média de %s com excelente uniformidade (CV=%s%%).", mean, cv)
				na.LiteratureComparison = fmt.Sprintf("CV%% < %s%% indica lote muito uniforme.", num(cvRef.Excellent))
			case Good:
				na.Interpretation = fmt.Sprintf("Média de %s com boa uniformidade (CV=%s%%).", mean, cv)
				na.LiteratureComparison = fmt.Sprintf("CV%% < %s%% é aceitável.", num(cvRef.Good))
			case Regular:
				na.Interpretation = fmt.Sprintf("Média de %s com variação moderada (CV=%s%%).", mean, cv)
				na.LiteratureComparison = fmt.Sprintf("CV%% entre %s-%s%% sugere lote heterogêneo.", num(cvRef.Good), num(cvRef.Regular))
				d.Concerns = append(d.Concerns, fmt.Sprintf("%s: alta variação (CV=%s%%)", name, cv))
			default:
				na.Interpretation = fmt.Sprintf("Média de %s com variação muito alta (CV=%s%%).", mean, cv)
				na.LiteratureComparison = fmt.Sprintf("CV%% > %s%% indica problemas de uniformidade.", num(cvRef.Regular))
				d.Concerns = append(d.Concerns, fmt.Sprintf("%s: variação crítica (CV=%s%%)", name, cv))
				concerning++
			}
			sources[cvRef.Source] = struct{}{}
		}
		d.Numeric = append(d.Numeric, na)
	}

	for _, name := range columnOrder(in.Order, keys(in.Categorical)) {
		c := in.Categorical[name]
		mode := c.Mode
		if mode == "" {
			mode = "N/A"
		}
		d.Categorical = append(d.Categorical, CategoricalAnalysis{
			Variable:       name,
			Interpretation: fmt.Sprintf("Identificadas %d categorias distintas.", c.Unique),
			Distribution:   "Categoria mais frequente: " + mode,
		})
	}

	if concerning > 0 {
		d.Recommendations = append(d.Recommendations, Recommendation{
			Priority:      1,
			Title:         "Corrigir Indicadores Críticos",
			Description:   `Focar nas variáveis identificadas como "Preocupante" na análise.`,
			Justification: fmt.Sprintf("%d indicador(es) estão fora dos padrões recomendados.", concerning),
		})
	}
	if mentionsGrowth(d.Concerns) {
		d.Recommendations = append(d.Recommendations, Recommendation{
			Priority:      2,
			Title:         "Revisar Programa Nutricional",
			Description:   "Avaliar qualidade e quantidade de alimentos fornecidos.",
			Justification: "Indicadores de peso/ganho abaixo do esperado sugerem deficiências nutricionais.",
		})
	}
	d.Recommendations = append(d.Recommendations, Recommendation{
		Priority:      len(d.Recommendations) + 1,
		Title:         "Estabelecer Protocolo de Monitoramento",
		Description:   "Realizar avaliações periódicas dos principais indicadores.",
		Justification: "Acompanhamento contínuo permite ajustes rápidos.",
	})

	ptBR := message.NewPrinter(language.BrazilianPortuguese)
	d.Summary = ptBR.Sprintf("Análise técnica de %d registros do dataset \"%s\". Avaliadas %d variáveis numéricas com base em referências zootécnicas. Resultado: %d excelente(s), %d necessita(m) intervenção.",
		in.TotalRows, in.DatasetName, len(in.Numeric), excellent, concerning)
	if excellent > 2*concerning {
		d.Conclusion = fmt.Sprintf("O sistema/rebanho avaliado (n=%d) apresenta desempenho satisfatório. As boas práticas atuais devem ser mantidas.", in.TotalRows)
	} else {
		d.Conclusion = fmt.Sprintf("O sistema/rebanho avaliado (n=%d) apresenta indicadores dentro da média. Implementar as recomendações pode resultar em ganhos de produtividade.", in.TotalRows)
	}

	if len(d.Strengths) == 0 {
		d.Strengths = []string{"Dados organizados e analisáveis"}
	}
	if len(d.Concerns) == 0 {
		d.Concerns = []string{"Continuar monitoramento dos indicadores"}
	}
	d.Sources = make([]string, 0, len(sources))
	for s := range sources {
		d.Sources = append(d.Sources, s)
	}
	sort.Strings(d.Sources)
	return d
}

func mentionsGrowth(items []string) bool {
	for _, it := range items {
		s := strings.ToLower(it)
		if strings.Contains(s, "peso") || strings.Contains(s, "gpd") || strings.Contains(s, "ganho") {
			return true
		}
	}
	return false
}

func keys[V any](m map[string]V) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

// columnOrder lists the members of present following order, then the rest sorted.
func columnOrder(order []string, present map[string]struct{}) []string {
	out := make([]string, 0, len(present))
	done := make(map[string]struct{}, len(present))
	for _, c := range order {
		if _, ok := present[c]; !ok {
			continue
		}
		if _, dup := done[c]; dup {
			continue
		}
		done[c] = struct{}{}
		out = append(out, c)
	}
	var rest []string
	for c := range present {
		if _, ok := done[c]; !ok {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
