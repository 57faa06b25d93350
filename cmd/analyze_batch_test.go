package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestAnalyzeBatch_OrderedOutputAndSave(t *testing.T) {
	home := isolateHome(t)

	dir := filepath.Join(home, "lotes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		"c.csv": "PESO_DESMAME_KG,SEXO\n180,Macho\n200,Fêmea\n",
		"a.csv": "GPD\n1.0\n1.1\n0.9\n",
		"b.csv": "CA;RACA\n7,5;Nelore\n8,0;Angus\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	runCmd(t, "init", "lotes")
	out, errOut, err := execCmd(t, "analyze-batch", filepath.Join(dir, "*.csv"), "-p", "lotes", "--workers", "2", "--json", "--diagnose")
	if err != nil {
		t.Fatalf("analyze-batch: %v\n%s", err, errOut)
	}
	var reps []struct {
		File        string          `json:"file"`
		DatasetID   string          `json:"datasetId"`
		Diagnostico json.RawMessage `json:"diagnostico"`
	}
	if err := json.Unmarshal([]byte(out), &reps); err != nil {
		t.Fatalf("decode batch json: %v\n%s", err, out)
	}
	var names []string
	for _, r := range reps {
		names = append(names, r.File)
		if r.DatasetID == "" || len(r.Diagnostico) == 0 {
			t.Fatalf("report %s not saved or not diagnosed", r.File)
		}
	}
	if !reflect.DeepEqual(names, []string{"a.csv", "b.csv", "c.csv"}) {
		t.Fatalf("reports out of order: %v", names)
	}
	if !strings.Contains(errOut, "[3/3] Processing c.csv...") {
		t.Fatalf("progress missing: %q", errOut)
	}

	out = runCmd(t, "list", "--datasets", "--json")
	var listed []map[string]any
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 saved datasets, got %d", len(listed))
	}
}

func TestAnalyzeBatch_QuietMarkdownNoSave(t *testing.T) {
	home := isolateHome(t)
	p1 := filepath.Join(home, "x.csv")
	p2 := filepath.Join(home, "y.json")
	if err := os.WriteFile(p1, []byte("GPD\n1.0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(p2, []byte(`[{"PESO_NASCIMENTO_KG": 33}, {"PESO_NASCIMENTO_KG": 31}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, errOut, err := execCmd(t, "analyze-batch", p2, p1, p1, "--quiet")
	if err != nil {
		t.Fatalf("analyze-batch: %v", err)
	}
	if errOut != "" {
		t.Fatalf("--quiet should suppress progress, got %q", errOut)
	}
	ix, iy := strings.Index(out, "x.csv"), strings.Index(out, "y.json")
	if ix < 0 || iy < 0 || ix > iy {
		t.Fatalf("expected x.csv before y.json once each:\n%s", out)
	}
	if strings.Count(out, "Dataset ID:") != 0 {
		t.Fatalf("batch without --save must not persist")
	}
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := isolateHome(t)
	_, _, err := execCmd(t, "analyze-batch", filepath.Join(home, "*.csv"))
	if err == nil || !strings.Contains(err.Error(), "no input files matched") {
		t.Fatalf("expected no match error, got %v", err)
	}
}

func TestExpandInputs_Dedup(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.csv")
	if err := os.WriteFile(p, []byte("x\n1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := expandInputs([]string{p, filepath.Join(dir, "*.csv")})
	if err != nil {
		t.Fatalf("expandInputs: %v", err)
	}
	if len(got) != 1 || got[0] != p {
		t.Fatalf("unexpected inputs: %v", got)
	}
}
