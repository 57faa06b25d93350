package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agroinsight-cli/internal/diagnostic"
	"github.com/KaramelBytes/agroinsight-cli/internal/service"
)

var (
	diagFile       string
	diagOutputPath string
	diagJSON       bool
	diagTable      tableFlags
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [dataset-id]",
	Short: "Generate the zootechnical diagnostic of a saved dataset or a file",
	Example: `  agroinsight diagnose 3f2c9a4e-...
  agroinsight diagnose --file rebanho.csv --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 1) == (diagFile != "") {
			return errors.New("specify exactly one of <dataset-id> or --file")
		}
		ctx := cmd.Context()
		svc, done, err := newService(ctx)
		if err != nil {
			return err
		}
		defer done()

		var resp *service.DiagnosticResponse
		if diagFile != "" {
			opt, err := diagTable.options()
			if err != nil {
				return err
			}
			in, err := readTable(diagFile, opt)
			if err != nil {
				return err
			}
			res := svc.Analyze(in.Table)
			resp = &service.DiagnosticResponse{
				Diagnostico: svc.Diagnose(diagnostic.InputFromResult(in.Name, res)),
				GeradoEm:    time.Now().UTC(),
				Metodo:      service.Method,
			}
		} else {
			resp, err = svc.GenerateDiagnostic(ctx, args[0], currentConfig().UserID)
			if err != nil {
				if service.IsNotFound(err) {
					return fmt.Errorf("dataset %s not found", args[0])
				}
				return err
			}
		}

		if err := writeOutput(cmd.OutOrStdout(), diagOutputPath, diagJSON, resp.Diagnostico.Markdown(), resp); err != nil {
			return err
		}
		if !diagJSON {
			printStatusBands(cmd.ErrOrStderr(), resp.Diagnostico)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().StringVarP(&diagFile, "file", "f", "", "diagnose a dataset file without saving it")
	diagnoseCmd.Flags().StringVarP(&diagOutputPath, "output", "o", "", "optional path to write the diagnostic")
	diagnoseCmd.Flags().BoolVar(&diagJSON, "json", false, "emit JSON ({diagnostico, geradoEm, metodo})")
	diagTable.register(diagnoseCmd)
}
