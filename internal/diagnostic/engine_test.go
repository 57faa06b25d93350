package diagnostic

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
	"github.com/KaramelBytes/agroinsight-cli/internal/zootech"
)

func birthWeight(t *testing.T) zootech.Range {
	t.Helper()
	r, ok := zootech.DefaultTable().Lookup(zootech.BirthWeight)
	require.True(t, ok)
	return r
}

func TestClassify(t *testing.T) {
	r := birthWeight(t)
	cases := []struct {
		v    float64
		want Status
	}{
		{34, Excellent},
		{30, Excellent},
		{38, Excellent},
		{29, Good},
		{28, Good},
		{40, Regular},
		{45, Regular},
		{20, Concerning},
		{50, Concerning},
	}
	for _, c := range cases {
		got, text := Classify(c.v, r)
		assert.Equal(t, c.want, got, "value %v", c.v)
		assert.NotEmpty(t, text)
	}

	_, text := Classify(34, r)
	assert.Equal(t, "Valor dentro da faixa ideal (30-38).", text)
	_, text = Classify(50, r)
	assert.Equal(t, "Valor fora dos limites aceitáveis (28-45).", text)

	got, text := Classify(math.NaN(), r)
	assert.Equal(t, Regular, got)
	assert.Equal(t, needsAnalysis, text)

	got, _ = Classify(34, zootech.Range{Min: 0, Max: 100})
	assert.Equal(t, Regular, got)
}

func TestClassifyCV(t *testing.T) {
	cv := zootech.DefaultTable().CV()
	assert.Equal(t, Excellent, ClassifyCV(10, cv))
	assert.Equal(t, Good, ClassifyCV(20, cv))
	assert.Equal(t, Regular, ClassifyCV(30, cv))
	assert.Equal(t, Concerning, ClassifyCV(40, cv))
	assert.Equal(t, Good, ClassifyCV(15, cv), "boundaries are exclusive upper limits")
	assert.Equal(t, Concerning, ClassifyCV(35, cv))
}

func TestGenerate_DailyGainEndToEnd(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tbl := analysis.Table{Header: []string{"GPD", "SEXO"}}
	for i := 0; i < 100; i++ {
		sexo := "Macho"
		if i%2 == 1 {
			sexo = "Fêmea"
		}
		tbl.Rows = append(tbl.Rows, analysis.Row{
			"GPD":  analysis.Number(0.8 + 0.6*rng.Float64()),
			"SEXO": analysis.Text(sexo),
		})
	}
	res := analysis.Analyze(tbl, analysis.DefaultOptions())
	gpd := res.NumericStats["GPD"]
	require.GreaterOrEqual(t, gpd.Mean, 0.8)
	require.LessOrEqual(t, gpd.Mean, 1.4)

	d := NewEngine(nil).Generate(InputFromResult("rebanho.csv", res))
	require.Len(t, d.Numeric, 1)
	assert.Equal(t, "GPD", d.Numeric[0].Variable)
	assert.Equal(t, Excellent, d.Numeric[0].Status)
	assert.Equal(t, zootech.DailyGain, d.Numeric[0].Indicator)
	assert.Equal(t, []string{"NRC - Nutrient Requirements of Beef Cattle"}, d.Sources)
	assert.Len(t, d.Strengths, 1)
	assert.Equal(t, []string{"Continuar monitoramento dos indicadores"}, d.Concerns)

	require.Len(t, d.Categorical, 1)
	assert.Equal(t, "Identificadas 2 categorias distintas.", d.Categorical[0].Interpretation)
	assert.Equal(t, "Categoria mais frequente: Macho", d.Categorical[0].Distribution)

	require.Len(t, d.Recommendations, 1)
	assert.Equal(t, 1, d.Recommendations[0].Priority)
	assert.Contains(t, d.Summary, "100 registros")
	assert.Contains(t, d.Summary, "1 excelente(s), 0 necessita(m)")
	assert.Contains(t, d.Conclusion, "desempenho satisfatório")
	assert.Equal(t, map[Status]int{Excellent: 1}, d.StatusCounts())
}

func TestGenerate_ConcerningIndicators(t *testing.T) {
	in := Input{
		DatasetName: "lote",
		TotalRows:   1234,
		Order:       []string{"PESO_NASCIMENTO_KG", "ESCORE_CORPORAL", "ALTURA_GARUPA_CM"},
		Numeric: map[string]NumericInput{
			"PESO_NASCIMENTO_KG": {Mean: D(20), CV: D(12)},
			"ESCORE_CORPORAL":    {Mean: D(3), CV: D(30)},
			"ALTURA_GARUPA_CM":   {Mean: D(130), CV: D(40)},
			"CA":                 {Mean: ParseDecimal("7,5"), CV: D(10)},
		},
	}
	d := NewEngine(zootech.DefaultTable()).Generate(in)

	names := make([]string, len(d.Numeric))
	for i, n := range d.Numeric {
		names[i] = n.Variable
	}
	assert.Equal(t, []string{"PESO_NASCIMENTO_KG", "ESCORE_CORPORAL", "ALTURA_GARUPA_CM", "CA"}, names)
	assert.Equal(t, Concerning, d.Numeric[0].Status)
	assert.Equal(t, "Média de 20.00: Valor fora dos limites aceitáveis (28-45).", d.Numeric[0].Interpretation)
	assert.Equal(t, Regular, d.Numeric[1].Status)
	assert.Equal(t, Concerning, d.Numeric[2].Status)
	assert.Equal(t, Excellent, d.Numeric[3].Status)
	assert.Equal(t, "Média de 7,5: Valor dentro da faixa ideal (6-9).", d.Numeric[3].Interpretation)

	assert.Equal(t, []string{"CA: 7,5 (Excelente)"}, d.Strengths)
	assert.Equal(t, []string{
		"PESO_NASCIMENTO_KG: 20.00 (Necessita atenção)",
		"ESCORE_CORPORAL: alta variação (CV=30.00%)",
		"ALTURA_GARUPA_CM: variação crítica (CV=40.00%)",
	}, d.Concerns)

	require.Len(t, d.Recommendations, 3)
	assert.Equal(t, "Corrigir Indicadores Críticos", d.Recommendations[0].Title)
	assert.Equal(t, "2 indicador(es) estão fora dos padrões recomendados.", d.Recommendations[0].Justification)
	assert.Equal(t, "Revisar Programa Nutricional", d.Recommendations[1].Title)
	assert.Equal(t, 3, d.Recommendations[2].Priority)

	assert.Contains(t, d.Summary, "1.234 registros")
	assert.Contains(t, d.Summary, "Avaliadas 4 variáveis numéricas")
	assert.Contains(t, d.Conclusion, "dentro da média")
	assert.Equal(t, []string{
		"Análise Estatística Aplicada à Zootecnia",
		"EMBRAPA Gado de Corte (2020)",
		"Manual de Confinamento ASBIA",
	}, d.Sources)
}

func TestGenerate_EmptyDataset(t *testing.T) {
	res := analysis.Analyze(analysis.Table{}, analysis.DefaultOptions())
	d := NewEngine(nil).Generate(InputFromResult("vazio.csv", res))

	assert.Contains(t, d.Summary, "0 registros")
	assert.Contains(t, d.Summary, "Avaliadas 0 variáveis numéricas")
	assert.Empty(t, d.Numeric)
	assert.Empty(t, d.Sources)
	assert.NotNil(t, d.Sources)
	assert.Equal(t, []string{"Dados organizados e analisáveis"}, d.Strengths)
	require.Len(t, d.Recommendations, 1)
	assert.Equal(t, "Estabelecer Protocolo de Monitoramento", d.Recommendations[0].Title)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"resumoExecutivo"`)
	assert.Contains(t, d.Markdown(), "# Diagnóstico Zootécnico: vazio.csv")

	assert.NotPanics(t, func() { NewEngine(nil).Generate(Input{}) })
}

func TestGenerate_UnparseableStats(t *testing.T) {
	in := Input{
		TotalRows: 10,
		Numeric: map[string]NumericInput{
			"GPD":  {Mean: ParseDecimal("abc"), CV: D(10)},
			"peso": {Mean: D(300), CV: ParseDecimal("--")},
		},
	}
	d := NewEngine(nil).Generate(in)
	require.Len(t, d.Numeric, 2)
	for _, n := range d.Numeric {
		assert.Equal(t, Regular, n.Status)
		assert.Equal(t, needsAnalysis, n.Interpretation)
	}
	assert.Empty(t, d.Sources)
	assert.Contains(t, d.Summary, "0 excelente(s), 0 necessita(m)")
}

func TestDecodeInput_StoredStrings(t *testing.T) {
	blob := []byte(`{
		"rawData": [{"GPD": "1,1"}],
		"columns": ["SEXO", "GPD"],
		"numericStats": {"GPD": {"mean": "1,10", "cv": "12.5"}, "X": {"mean": 3, "cv": {"bad": true}}},
		"categoricalStats": {"SEXO": {"uniqueValues": 2, "mode": "Macho"}, "LOTE": {"unique": "3", "mode": 7}}
	}`)
	in, err := DecodeInput("stored", 1, blob)
	require.NoError(t, err)

	assert.Equal(t, []string{"SEXO", "GPD"}, in.Order)
	assert.True(t, in.Numeric["GPD"].Mean.Valid)
	assert.InDelta(t, 1.1, in.Numeric["GPD"].Mean.Value, 1e-12)
	assert.Equal(t, "1,10", in.Numeric["GPD"].Mean.String())
	assert.False(t, in.Numeric["X"].CV.Valid)
	assert.Equal(t, CategoricalInput{Unique: 2, Mode: "Macho"}, in.Categorical["SEXO"])
	assert.Equal(t, CategoricalInput{Unique: 3, Mode: "7"}, in.Categorical["LOTE"])

	d := NewEngine(nil).Generate(in)
	assert.Equal(t, Excellent, d.Numeric[0].Status)
	assert.Equal(t, "Média de 1,10: Valor dentro da faixa ideal (0.8-1.4).", d.Numeric[0].Interpretation)

	_, err = DecodeInput("bad", 0, []byte(`[1,2]`))
	assert.Error(t, err)
}

func TestDecimal_JSON(t *testing.T) {
	var ds []Decimal
	require.NoError(t, json.Unmarshal([]byte(`[1.5, "2,5", "x", null, true]`), &ds))
	require.Len(t, ds, 5)
	assert.Equal(t, D(1.5), ds[0])
	assert.True(t, ds[1].Valid)
	assert.Equal(t, 2.5, ds[1].Value)
	assert.False(t, ds[2].Valid)
	assert.Equal(t, "x", ds[2].String())
	assert.False(t, ds[3].Valid)
	assert.Equal(t, "N/A", ds[3].String())
	assert.False(t, ds[4].Valid)

	out, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, 2.5, "x", null, null]`, string(out))
}

func TestDiagnostico_Markdown(t *testing.T) {
	in := Input{
		DatasetName: "fazenda.csv",
		TotalRows:   3,
		Numeric:     map[string]NumericInput{"GPD": {Mean: D(1.0), CV: D(5)}},
		Categorical: map[string]CategoricalInput{"RACA": {Unique: 2, Mode: "Nelore"}},
	}
	md := NewEngine(nil).Generate(in).Markdown()
	assert.Contains(t, md, "# Diagnóstico Zootécnico: fazenda.csv")
	assert.Contains(t, md, "| GPD | Excelente |")
	assert.Contains(t, md, "- **RACA**: Identificadas 2 categorias distintas.")
	assert.Contains(t, md, "## Fontes")
	assert.Contains(t, md, "1. **Estabelecer Protocolo de Monitoramento**")
}
