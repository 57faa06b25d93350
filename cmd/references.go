package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/agroinsight-cli/internal/utils"
	"github.com/KaramelBytes/agroinsight-cli/internal/zootech"
)

var (
	refExport string
	refJSON   bool
)

type referenceEntry struct {
	Indicator zootech.Indicator `json:"indicator"`
	Category  string            `json:"category"`
	zootech.Range
}

var referencesCmd = &cobra.Command{
	Use:   "references",
	Short: "Show or export the zootechnical reference ranges",
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := loadReferences()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if refExport != "" {
			var buf bytes.Buffer
			if err := refs.WriteYAML(&buf); err != nil {
				return fmt.Errorf("encode references: %w", err)
			}
			if err := utils.SafeWriteFile(refExport, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Exported references to %s\n", refExport)
			return nil
		}

		var entries []referenceEntry
		for _, ind := range refs.Indicators() {
			r, _ := refs.Lookup(ind)
			entries = append(entries, referenceEntry{Indicator: ind, Category: ind.Category(), Range: r})
		}
		if refJSON {
			return printJSON(out, map[string]any{"indicators": entries, "cv": refs.CV()})
		}
		for _, e := range entries {
			ideal := "-"
			if e.HasIdeal() {
				ideal = fmtNum(*e.IdealMin) + "-" + fmtNum(*e.IdealMax)
			}
			fmt.Fprintf(out, "- %s (%s): aceitável %s-%s, ideal %s %s [%s]\n",
				e.Label, e.Category, fmtNum(e.Min), fmtNum(e.Max), ideal, e.Unit, e.Source)
		}
		cv := refs.CV()
		fmt.Fprintf(out, "- CV%%: excelente < %s, bom < %s, regular < %s [%s]\n",
			fmtNum(cv.Excellent), fmtNum(cv.Good), fmtNum(cv.Regular), cv.Source)
		return nil
	},
}

func fmtNum(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func init() {
	rootCmd.AddCommand(referencesCmd)
	referencesCmd.Flags().StringVar(&refExport, "export", "", "write the active table as YAML (editable, loadable with --references)")
	referencesCmd.Flags().BoolVar(&refJSON, "json", false, "emit JSON")
}
