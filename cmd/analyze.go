package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
	"github.com/KaramelBytes/agroinsight-cli/internal/diagnostic"
	"github.com/KaramelBytes/agroinsight-cli/internal/service"
)

var (
	anaProject    string
	anaOutputPath string
	anaJSON       bool
	anaDiagnose   bool
	anaTable      tableFlags
)

type tableInput struct {
	Name  string
	Size  int64
	Table analysis.Table
}

// analyzeReport is the --json shape of analyze and analyze-batch.
type analyzeReport struct {
	File        string                  `json:"file"`
	DatasetID   string                  `json:"datasetId,omitempty"`
	Analysis    *analysis.Result        `json:"analysis"`
	Diagnostico *diagnostic.Diagnostico `json:"diagnostico,omitempty"`
}

func (r analyzeReport) markdown() string {
	var sb strings.Builder
	sb.WriteString(r.Analysis.Markdown(r.File))
	if r.DatasetID != "" {
		sb.WriteString(fmt.Sprintf("\nDataset ID: %s\n", r.DatasetID))
	}
	if r.Diagnostico != nil {
		sb.WriteString("\n")
		sb.WriteString(r.Diagnostico.Markdown())
	}
	return sb.String()
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX/JSON dataset and summarize every column",
	Example: `  agroinsight analyze rebanho.csv
  agroinsight analyze rebanho.xlsx --sheet-name Pesagens --diagnose
  agroinsight analyze rebanho.csv -p "Fazenda Boa Vista" --json -o analise.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := anaTable.options()
		if err != nil {
			return err
		}
		in, err := readTable(args[0], opt)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		svc, done, err := newService(ctx)
		if err != nil {
			return err
		}
		defer done()

		persist := cmd.Flags().Changed("project")
		rep, err := analyzeOne(cmd, svc, in, persist, anaProject, anaDiagnose)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := writeOutput(out, anaOutputPath, anaJSON, rep.markdown(), rep); err != nil {
			return err
		}
		if rep.DatasetID != "" && (anaJSON || anaOutputPath != "") {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved dataset %s\n", rep.DatasetID)
		}
		if rep.Diagnostico != nil && !anaJSON {
			printStatusBands(cmd.ErrOrStderr(), rep.Diagnostico)
		}
		return nil
	},
}

// analyzeOne analyzes in and, when persist is set, stores it in projectName
// (or the default project when empty).
func analyzeOne(cmd *cobra.Command, svc *service.AnalysisService, in tableInput, persist bool, projectName string, diagnose bool) (analyzeReport, error) {
	rep := analyzeReport{File: in.Name}
	if persist {
		d, err := svc.CreateAnalysis(cmd.Context(), service.CreateRequest{
			OwnerID:     currentConfig().UserID,
			ProjectName: projectName,
			FileName:    in.Name,
			FileSize:    in.Size,
			Table:       in.Table,
		})
		if err != nil {
			return rep, err
		}
		data, err := d.Analysis()
		if err != nil {
			return rep, err
		}
		rep.DatasetID = d.ID
		rep.Analysis = &data.Result
	} else {
		rep.Analysis = svc.Analyze(in.Table)
	}
	if diagnose {
		rep.Diagnostico = svc.Diagnose(diagnostic.InputFromResult(in.Name, rep.Analysis))
	}
	return rep, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaProject, "project", "p", "", "save the analysis into this project (\"\" = default project)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit JSON instead of Markdown")
	analyzeCmd.Flags().BoolVar(&anaDiagnose, "diagnose", false, "append the zootechnical diagnostic")
	anaTable.register(analyzeCmd)
}
