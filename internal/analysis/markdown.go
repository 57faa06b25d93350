package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Result) Markdown(name string) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d (valid %d)\n", r.TotalRows, r.ValidRows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", r.TotalColumns))
	if len(r.ZootechnicalVariables) > 0 {
		b.WriteString(fmt.Sprintf("Zootechnical: %s\n", strings.Join(r.ZootechnicalVariables, ", ")))
	}
	b.WriteString("\n[SCHEMA]\n")
	for _, col := range r.Columns {
		v := r.VariablesInfo[col]
		total := v.NullCount + v.ValidCount
		missPct := 0.0
		if total > 0 {
			missPct = float64(v.NullCount) * 100.0 / float64(total)
		}
		label := safeName(col)
		if v.Unit != "" && !strings.Contains(label, v.Unit) {
			label = fmt.Sprintf("%s [%s]", label, v.Unit)
		}
		b.WriteString(fmt.Sprintf("- %s: %s/%s (valid %d, missing %.1f%%)", label, v.Type, v.DetectedType, v.ValidCount, missPct))
		if ns, ok := r.NumericStats[col]; ok && ns.ValidCount > 0 {
			b.WriteString(fmt.Sprintf(": mean %.4g, median %.4g, std %.4g, cv %.1f%%, min %.4g, max %.4g, q1 %.4g, q3 %.4g",
				ns.Mean, ns.Median, ns.StdDev, ns.CV, ns.Min, ns.Max, ns.Q1, ns.Q3))
			if ns.OutlierCount > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d outside 1.5×IQR", ns.OutlierCount))
			}
		}
		if cs, ok := r.CategoricalStats[col]; ok && len(cs.Top) > 0 {
			b.WriteString(": top ")
			for i, kv := range cs.Top {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			b.WriteString(fmt.Sprintf("; unique=%d, entropy=%.3f", cs.Unique, cs.Entropy))
		}
		if v.IsZootechnical {
			b.WriteString(fmt.Sprintf(" {%s}", v.Category))
		}
		if v.MalformedCount > 0 {
			b.WriteString(fmt.Sprintf(" (malformed %d)", v.MalformedCount))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
