package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/agroinsight-cli/internal/config"
	"github.com/KaramelBytes/agroinsight-cli/internal/diagnostic"
	"github.com/KaramelBytes/agroinsight-cli/internal/parser"
	"github.com/KaramelBytes/agroinsight-cli/internal/project"
	"github.com/KaramelBytes/agroinsight-cli/internal/service"
	"github.com/KaramelBytes/agroinsight-cli/internal/utils"
	"github.com/KaramelBytes/agroinsight-cli/internal/zootech"
)

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Default()
	}
	return cfg
}

func defaultProjectsDir() (string, error) {
	dir := currentConfig().ProjectsDir
	if dir == "" {
		dir = "~/.agroinsight/projects"
	}
	dir, err := utils.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	dir = filepath.Clean(dir)
	if err := utils.EnsureProjectDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context) (project.Store, func(), error) {
	c := currentConfig()
	switch c.Storage {
	case cfgpkg.StoragePG:
		s, err := project.OpenPostgres(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		dir, err := defaultProjectsDir()
		if err != nil {
			return nil, nil, err
		}
		s := project.NewFileStore(dir)
		log.Debug().Str("root", s.Root()).Msg("using file store")
		return s, func() {}, nil
	}
}

func loadReferences() (*zootech.Table, error) {
	path := currentConfig().ReferencesFile
	if path == "" {
		return zootech.DefaultTable(), nil
	}
	path, err := utils.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	t, err := zootech.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}
	return t, nil
}

// newService wires the analysis service for one command invocation.
func newService(ctx context.Context) (*service.AnalysisService, func(), error) {
	refs, err := loadReferences()
	if err != nil {
		return nil, nil, err
	}
	store, closeFn, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	var metrics *service.Metrics
	if registry != nil {
		metrics = service.NewMetrics(registry)
	}
	svc := service.New(store, diagnostic.NewEngine(refs), currentConfig().AnalysisOptions(), metrics)
	return svc, closeFn, nil
}

// tableFlags are the input options shared by analyze, analyze-batch and diagnose --file.
type tableFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process (0 = config max_rows or unlimited)")
}

func (f *tableFlags) options() (parser.Options, error) {
	opt := parser.Options{Sheet: f.sheetName, SheetIndex: f.sheetIndex, MaxRows: currentConfig().MaxRows}
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

// readTable validates and loads one input file.
func readTable(path string, opt parser.Options) (tableInput, error) {
	info, err := os.Stat(path)
	if err != nil {
		return tableInput{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := parser.Validate(path, info.Size()); err != nil {
		return tableInput{}, err
	}
	t, err := parser.Load(path, opt)
	if err != nil {
		return tableInput{}, err
	}
	return tableInput{Name: filepath.Base(path), Size: info.Size(), Table: t}, nil
}

// writeOutput prints markdown or indented JSON, or writes it to path.
func writeOutput(w io.Writer, path string, asJSON bool, markdown string, payload any) error {
	content := markdown
	if asJSON {
		b, err := utils.PrettyJSON(payload)
		if err != nil {
			return err
		}
		content = string(b)
	}
	if path == "" {
		fmt.Fprintln(w, content)
		return nil
	}
	if err := utils.SafeWriteFile(path, []byte(content+"\n")); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(w, "✓ Wrote %s\n", path)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var statusColors = map[diagnostic.Status]*color.Color{
	diagnostic.Excellent:  color.New(color.FgGreen, color.Bold),
	diagnostic.Good:       color.New(color.FgCyan),
	diagnostic.Regular:    color.New(color.FgYellow),
	diagnostic.Concerning: color.New(color.FgRed, color.Bold),
}

// printStatusBands writes one colored line per status band with its count.
func printStatusBands(w io.Writer, d *diagnostic.Diagnostico) {
	counts := d.StatusCounts()
	parts := make([]string, 0, len(diagnostic.Statuses))
	for _, s := range diagnostic.Statuses {
		parts = append(parts, statusColors[s].Sprintf("%s: %d", s, counts[s]))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}
