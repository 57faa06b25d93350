package diagnostic

import (
	"fmt"
	"strings"
)

// Markdown renders the report as a standalone document.
func (d *Diagnostico) Markdown() string {
	var b strings.Builder
	title := "Diagnóstico Zootécnico"
	if d.DatasetName != "" {
		title += ": " + d.DatasetName
	}
	b.WriteString("# " + title + "\n\n")
	b.WriteString("## Resumo Executivo\n\n")
	b.WriteString(d.Summary + "\n")

	if len(d.Numeric) > 0 {
		b.WriteString("\n## Variáveis Numéricas\n\n")
		b.WriteString("| Variável | Status | Interpretação | Referência |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, n := range d.Numeric {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", cell(n.Variable), n.Status, cell(n.Interpretation), cell(n.LiteratureComparison)))
		}
	}
	if len(d.Categorical) > 0 {
		b.WriteString("\n## Variáveis Categóricas\n\n")
		for _, c := range d.Categorical {
			b.WriteString(fmt.Sprintf("- **%s**: %s %s\n", c.Variable, c.Interpretation, c.Distribution))
		}
	}
	list(&b, "Pontos Fortes", d.Strengths)
	list(&b, "Pontos de Atenção", d.Concerns)

	b.WriteString("\n## Recomendações Prioritárias\n\n")
	for _, r := range d.Recommendations {
		b.WriteString(fmt.Sprintf("%d. **%s**: %s _%s_\n", r.Priority, r.Title, r.Description, r.Justification))
	}
	b.WriteString("\n## Conclusão\n\n")
	b.WriteString(d.Conclusion + "\n")
	list(&b, "Fontes", d.Sources)
	return b.String()
}

func list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n## " + title + "\n\n")
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
}

func cell(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
