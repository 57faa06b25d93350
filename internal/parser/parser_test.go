package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
	"github.com/KaramelBytes/agroinsight-cli/internal/parser"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadCSV_SemicolonDecimalComma(t *testing.T) {
	p := writeFile(t, "rebanho.csv", "\ufeffANIMAL;PESO_NASCIMENTO_KG;SEXO\n"+
		"BR001;32,5;Macho\n"+
		"BR002;30,1;Fêmea\n"+
		";;\n"+
		"BR003;NA\n")
	tbl, err := parser.Load(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := strings.Join(tbl.Header, ","); got != "ANIMAL,PESO_NASCIMENTO_KG,SEXO" {
		t.Fatalf("unexpected header: %q", got)
	}
	if len(tbl.Rows) != 3 {
		t.Fatalf("expected 3 rows (blank line skipped), got %d", len(tbl.Rows))
	}
	if c := tbl.Rows[2]["SEXO"]; !c.IsMissing() {
		t.Fatalf("short row should be padded with missing, got %#v", c)
	}
	res := analysis.Analyze(tbl, analysis.DefaultOptions())
	ns, ok := res.NumericStats["PESO_NASCIMENTO_KG"]
	if !ok {
		t.Fatalf("expected numeric stats for PESO_NASCIMENTO_KG")
	}
	if ns.ValidCount != 2 || ns.Mean < 31.29 || ns.Mean > 31.31 {
		t.Fatalf("unexpected stats: %+v", ns)
	}
}

func TestLoadCSV_HeaderNormalization(t *testing.T) {
	p := writeFile(t, "dup.csv", "peso, ,peso,peso\n1,2,3,4,5\n")
	tbl, err := parser.Load(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := "peso,coluna_2,peso_2,peso_3,coluna_5"
	if got := strings.Join(tbl.Header, ","); got != want {
		t.Fatalf("header = %q, want %q", got, want)
	}
	if tbl.Rows[0]["coluna_5"].Raw() != "5" {
		t.Fatalf("extra field lost: %#v", tbl.Rows[0])
	}
}

func TestLoadTSVAndMaxRows(t *testing.T) {
	p := writeFile(t, "gpd.tsv", "GPD\tLOTE\n0.9\tA\n1.1\tB\n1.3\tC\n")
	tbl, err := parser.Load(p, parser.Options{MaxRows: 2})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Header) != 2 || len(tbl.Rows) != 2 {
		t.Fatalf("unexpected shape: header=%v rows=%d", tbl.Header, len(tbl.Rows))
	}
}

func TestLoadJSON_KeepsKeyOrder(t *testing.T) {
	p := writeFile(t, "rows.json", `[{"SEXO":"Macho","GPD":1.2,"VIVO":true},{"GPD":null,"OBS":"x"}]`)
	tbl, err := parser.Load(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := strings.Join(tbl.Header, ","); got != "SEXO,GPD,VIVO,OBS" {
		t.Fatalf("unexpected header: %q", got)
	}
	if tbl.Rows[0]["GPD"] != analysis.Number(1.2) || !tbl.Rows[1]["GPD"].IsMissing() {
		t.Fatalf("unexpected cells: %#v", tbl.Rows)
	}
	if _, err := parser.Load(writeFile(t, "bad.json", `{"a":1}`), parser.Options{}); err == nil {
		t.Fatalf("expected error for non-array json")
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetRow("Sheet1", "A1", &[]interface{}{"GPD", "RACA"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]interface{}{1.05, "Nelore"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if _, err := f.NewSheet("Pesagens"); err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if err := f.SetSheetRow("Pesagens", "A1", &[]interface{}{"PESO_DESMAME_KG"}); err != nil {
		t.Fatalf("row: %v", err)
	}
	if err := f.SetSheetRow("Pesagens", "A2", &[]interface{}{210}); err != nil {
		t.Fatalf("row: %v", err)
	}
	p := filepath.Join(t.TempDir(), "fazenda.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	tbl, err := parser.Load(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0]["RACA"].Raw() != "Nelore" {
		t.Fatalf("unexpected first sheet: %#v", tbl)
	}
	if v, ok := analysis.ParseNumber(tbl.Rows[0]["GPD"].Raw(), analysis.NumberFormat{}); !ok || v != 1.05 {
		t.Fatalf("unexpected GPD cell: %#v", tbl.Rows[0]["GPD"])
	}

	byName, err := parser.Load(p, parser.Options{Sheet: "pesagens"})
	if err != nil {
		t.Fatalf("load by name: %v", err)
	}
	if byName.Header[0] != "PESO_DESMAME_KG" {
		t.Fatalf("unexpected sheet header: %v", byName.Header)
	}
	byIndex, err := parser.Load(p, parser.Options{SheetIndex: 2})
	if err != nil || byIndex.Header[0] != "PESO_DESMAME_KG" {
		t.Fatalf("load by index: %v %v", byIndex.Header, err)
	}
	if _, err := parser.Load(p, parser.Options{Sheet: "nope"}); err == nil || !strings.Contains(err.Error(), "Available sheets") {
		t.Fatalf("expected missing sheet error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := parser.Validate("dados.CSV", 1024); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if err := parser.Validate("dados.pdf", 10); !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	err := parser.Validate("dados.csv", parser.MaxFileSize+1)
	if !errors.Is(err, parser.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), "50 MB") {
		t.Fatalf("expected readable limit in %q", err)
	}
	if _, err := parser.Load(writeFile(t, "notes.md", "# hi"), parser.Options{}); !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{0: "0 Bytes", 512: "512 Bytes", 1536: "1.5 KB", 50 << 20: "50 MB"}
	for in, want := range cases {
		if got := parser.FormatBytes(in); got != want {
			t.Fatalf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
