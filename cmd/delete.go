package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agroinsight-cli/internal/service"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <dataset-id>",
	Short: "Delete a saved dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, done, err := newService(ctx)
		if err != nil {
			return err
		}
		defer done()
		if err := svc.DeleteAnalysis(ctx, args[0], currentConfig().UserID); err != nil {
			if service.IsNotFound(err) {
				return fmt.Errorf("dataset %s not found or not owned by %s", args[0], currentConfig().UserID)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted dataset %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
