package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agroinsight-cli/internal/project"
)

var (
	listProjects bool
	listDatasets bool
	listStatus   string
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects or saved datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		if listProjects == listDatasets { // either both true or both false
			return fmt.Errorf("specify exactly one of --projects or --datasets")
		}
		ctx := cmd.Context()
		store, done, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer done()
		owner := currentConfig().UserID
		out := cmd.OutOrStdout()

		if listProjects {
			ps, err := store.ListProjects(ctx, owner)
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(out, ps)
			}
			if len(ps) == 0 {
				fmt.Fprintln(out, "(no projects)")
				return nil
			}
			for _, p := range ps {
				fmt.Fprintf(out, "- %s (%s)\n", p.Name, p.ID)
			}
			return nil
		}

		status := project.Status(strings.ToUpper(strings.TrimSpace(listStatus)))
		ds, err := store.ListDatasets(ctx, owner, status)
		if err != nil {
			return err
		}
		if listJSON {
			return printJSON(out, datasetSummaries(ds))
		}
		if len(ds) == 0 {
			fmt.Fprintln(out, "(no datasets)")
			return nil
		}
		for _, d := range ds {
			fmt.Fprintf(out, "- %s: %s [%s] %d rows, %d columns, %s\n",
				d.ID, d.Name, d.Status, d.Metadata.TotalRows, d.Metadata.TotalColumns,
				d.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// datasetSummary is a dataset without its analysis blob.
type datasetSummary struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"projectId"`
	Name      string           `json:"name"`
	Status    project.Status   `json:"status"`
	Metadata  project.Metadata `json:"metadata"`
	CreatedAt string           `json:"createdAt"`
}

func datasetSummaries(ds []*project.Dataset) []datasetSummary {
	out := make([]datasetSummary, len(ds))
	for i, d := range ds {
		out[i] = datasetSummary{
			ID: d.ID, ProjectID: d.ProjectID, Name: d.Name, Status: d.Status,
			Metadata: d.Metadata, CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listProjects, "projects", false, "list projects")
	listCmd.Flags().BoolVar(&listDatasets, "datasets", false, "list saved datasets, newest first")
	listCmd.Flags().StringVar(&listStatus, "status", string(project.StatusValidated), "dataset status filter (empty = all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "emit JSON")
}
