package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals over the saved datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, done, err := newService(ctx)
		if err != nil {
			return err
		}
		defer done()
		st, err := svc.UserStats(ctx, currentConfig().UserID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if statsJSON {
			return printJSON(out, st)
		}
		fmt.Fprintf(out, "Analyses: %d\n", st.TotalAnalyses)
		fmt.Fprintf(out, "Datasets: %d\n", st.TotalDatasets)
		fmt.Fprintf(out, "Average rows per dataset: %d\n", st.AverageRowsPerDataset)
		if st.MostRecentAnalysis != nil {
			fmt.Fprintf(out, "Most recent: %s\n", st.MostRecentAnalysis.Local().Format("2006-01-02 15:04"))
		} else {
			fmt.Fprintln(out, "Most recent: -")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit JSON")
}
