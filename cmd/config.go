package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/agroinsight-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set AgroInsight configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		for _, k := range cfgpkg.Keys() {
			fmt.Fprintf(out, "%s: %s\n", k, configValue(cfg, k))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) string {
	switch key {
	case "user_id":
		return c.UserID
	case "projects_dir":
		return c.ProjectsDir
	case "storage":
		return c.Storage
	case "database_url":
		return mask(c.DatabaseURL)
	case "references_file":
		return c.ReferencesFile
	case "log_dir":
		return c.LogDir
	case "numeric_threshold":
		return strconv.FormatFloat(c.NumericThreshold, 'f', -1, 64)
	case "decimal_separator":
		return c.DecimalSeparator
	case "thousands_separator":
		return c.ThousandsSeparator
	case "max_rows":
		return strconv.Itoa(c.MaxRows)
	case "batch_workers":
		return strconv.Itoa(c.BatchWorkers)
	case "metrics_file":
		return c.MetricsFile
	}
	return ""
}

// mask hides credentials embedded in connection strings.
func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
