package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	abProject  string
	abSave     bool
	abWorkers  int
	abJSON     bool
	abDiagnose bool
	abQuiet    bool
	abTable    tableFlags
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files/globs...>",
	Short: "Analyze many datasets concurrently and print the reports in input order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		opt, err := abTable.options()
		if err != nil {
			return err
		}
		workers := abWorkers
		if workers <= 0 {
			workers = currentConfig().BatchWorkers
		}
		if workers <= 0 {
			workers = 1
		}

		ctx := cmd.Context()
		svc, done, err := newService(ctx)
		if err != nil {
			return err
		}
		defer done()

		persist := abSave || cmd.Flags().Changed("project")
		if persist {
			// Resolve the project once so concurrent uploads do not race to create it.
			if _, err := svc.EnsureProject(ctx, currentConfig().UserID, abProject); err != nil {
				return err
			}
		}

		reports := make([]analyzeReport, len(files))
		var progressMu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				if !abQuiet {
					progressMu.Lock()
					fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, len(files), filepath.Base(path))
					progressMu.Unlock()
				}
				in, err := readTable(path, opt)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				rep, err := analyzeOne(cmd, svc, in, persist, abProject, abDiagnose)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				reports[i] = rep
				log.Debug().Str("file", path).Int("rows", rep.Analysis.TotalRows).Msg("batch item analyzed")
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if abJSON {
			return printJSON(out, reports)
		}
		for _, rep := range reports {
			fmt.Fprintln(out, rep.markdown())
		}
		if !abQuiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Analyzed %d file(s)\n", len(reports))
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// duplicates. The result is sorted.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched: %s", strings.Join(args, ", "))
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abProject, "project", "p", "", "save every analysis into this project")
	analyzeBatchCmd.Flags().BoolVar(&abSave, "save", false, "save analyses into the default project")
	analyzeBatchCmd.Flags().IntVarP(&abWorkers, "workers", "w", 0, "concurrent analyses (0 = config batch_workers)")
	analyzeBatchCmd.Flags().BoolVar(&abJSON, "json", false, "emit a JSON array instead of Markdown")
	analyzeBatchCmd.Flags().BoolVar(&abDiagnose, "diagnose", false, "append the zootechnical diagnostic to each report")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	abTable.register(analyzeBatchCmd)
}
