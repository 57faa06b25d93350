package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agroinsight-cli/internal/project"
)

var (
	initDescription string
)

var initCmd = &cobra.Command{
	Use:   "init <project-name>",
	Short: "Initialize a new AgroInsight project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, done, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer done()

		p := project.NewProject(args[0], initDescription, currentConfig().UserID, "")
		if p.Name == "" {
			return errors.New("project name is required")
		}
		if err := store.CreateProject(ctx, p); err != nil {
			if errors.Is(err, project.ErrExists) {
				return fmt.Errorf("project %q already exists", p.Name)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Project initialized: %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "project description")
}
