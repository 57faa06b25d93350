package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

type jsonLoader struct{}

func (jsonLoader) CanLoad(filename string) bool {
	return hasExt(filename, ".json")
}

// Load reads an array of flat objects. The header follows the key order of the
// first object; keys first seen later are appended in order of appearance.
func (jsonLoader) Load(r io.Reader, opt Options) (analysis.Table, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return analysis.Table{}, fmt.Errorf("decode json rows: %w", err)
	}
	t := analysis.Table{}
	seen := map[string]struct{}{}
	for i, raw := range raws {
		if opt.MaxRows > 0 && len(t.Rows) >= opt.MaxRows {
			break
		}
		var row analysis.Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return analysis.Table{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		keys, err := objectKeys(raw)
		if err != nil {
			return analysis.Table{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				t.Header = append(t.Header, k)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		k, _ := tok.(string)
		keys = append(keys, k)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
