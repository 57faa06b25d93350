// Package analysis profiles tabular zootechnical datasets: it infers the
// semantic type of each column and computes numeric or categorical statistics.
// Everything here is pure; the same table always yields the same Result.
package analysis

// Result is the analysis of one dataset. It is immutable once returned and is
// persisted verbatim as JSON.
type Result struct {
	VariablesInfo         map[string]VariableInfo     `json:"variablesInfo"`
	NumericStats          map[string]NumericStats     `json:"numericStats"`
	CategoricalStats      map[string]CategoricalStats `json:"categoricalStats"`
	Columns               []string                    `json:"columns"`
	TotalRows             int                         `json:"totalRows"`
	TotalColumns          int                         `json:"totalColumns"`
	ValidRows             int                         `json:"validRows"`
	ZootechnicalVariables []string                    `json:"zootechnicalVariables"`
}

// Analyze profiles every column found in t. Columns follow the header order,
// then any extra keys present in rows, sorted. Malformed cells count as missing.
func Analyze(t Table, opt Options) *Result {
	opt = opt.normalized()
	cols := t.Columns()
	res := &Result{
		VariablesInfo:         make(map[string]VariableInfo, len(cols)),
		NumericStats:          make(map[string]NumericStats),
		CategoricalStats:      make(map[string]CategoricalStats),
		Columns:               cols,
		TotalRows:             len(t.Rows),
		TotalColumns:          len(cols),
		ZootechnicalVariables: []string{},
	}

	for _, r := range t.Rows {
		for _, c := range r {
			if !c.IsMissing() {
				res.ValidRows++
				break
			}
		}
	}

	cells := make([]Cell, len(t.Rows))
	for _, col := range cols {
		for i, r := range t.Rows {
			cells[i] = r[col]
		}
		info, nums, texts := inferColumn(col, cells, opt)
		res.VariablesInfo[col] = info
		if info.DetectedType == DetectedNumber {
			res.NumericStats[col] = ComputeNumeric(nums, len(t.Rows))
		} else {
			res.CategoricalStats[col] = ComputeCategorical(texts, len(t.Rows))
		}
		if info.IsZootechnical {
			res.ZootechnicalVariables = append(res.ZootechnicalVariables, col)
		}
	}
	return res
}

// NumericColumns returns the numeric columns in column order.
func (r *Result) NumericColumns() []string {
	var out []string
	for _, c := range r.Columns {
		if _, ok := r.NumericStats[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// CategoricalColumns returns the categorical columns in column order.
func (r *Result) CategoricalColumns() []string {
	var out []string
	for _, c := range r.Columns {
		if _, ok := r.CategoricalStats[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
