package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/agroinsight-cli/internal/analysis"
)

const (
	dirName     = ".agroinsight"
	envPrefix   = "AGROINSIGHT"
	StorageFile = "file"
	StoragePG   = "postgres"
)

// Global configuration structure.
type Global struct {
	UserID         string `mapstructure:"user_id" yaml:"user_id"`
	ProjectsDir    string `mapstructure:"projects_dir" yaml:"projects_dir"`
	Storage        string `mapstructure:"storage" yaml:"storage"`
	DatabaseURL    string `mapstructure:"database_url" yaml:"database_url"`
	ReferencesFile string `mapstructure:"references_file" yaml:"references_file"`
	LogDir         string `mapstructure:"log_dir" yaml:"log_dir"`

	// Analysis
	NumericThreshold   float64 `mapstructure:"numeric_threshold" yaml:"numeric_threshold"`
	DecimalSeparator   string  `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string  `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MaxRows            int     `mapstructure:"max_rows" yaml:"max_rows"`

	BatchWorkers int    `mapstructure:"batch_workers" yaml:"batch_workers"`
	MetricsFile  string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

// Keys lists the settable configuration keys in sorted order.
func Keys() []string {
	keys := []string{
		"user_id", "projects_dir", "storage", "database_url", "references_file", "log_dir",
		"numeric_threshold", "decimal_separator", "thousands_separator", "max_rows",
		"batch_workers", "metrics_file",
	}
	sort.Strings(keys)
	return keys
}

// Default returns the built-in settings. ProjectsDir is left empty and
// resolved by Load.
func Default() *Global {
	return &Global{
		UserID:           "local",
		Storage:          StorageFile,
		NumericThreshold: 0.9,
		BatchWorkers:     4,
	}
}

// DefaultPath returns ~/.agroinsight/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.agroinsight/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from .env, file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.agroinsight/config.yaml) > defaults.
func Load(cfgFile string) (*Global, error) {
	// Values already present in the environment win over .env.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("user_id", d.UserID)
	v.SetDefault("projects_dir", d.ProjectsDir)
	v.SetDefault("storage", d.Storage)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("references_file", d.ReferencesFile)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("numeric_threshold", d.NumericThreshold)
	v.SetDefault("decimal_separator", d.DecimalSeparator)
	v.SetDefault("thousands_separator", d.ThousandsSeparator)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("batch_workers", d.BatchWorkers)
	v.SetDefault("metrics_file", d.MetricsFile)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve projects_dir default: ~/.agroinsight/projects
	if c.ProjectsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.ProjectsDir = filepath.Join(home, dirName, "projects")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the analysis and storage layers cannot use.
func (c *Global) Validate() error {
	switch c.Storage {
	case StorageFile:
	case StoragePG:
		if c.DatabaseURL == "" {
			return fmt.Errorf("storage %q requires database_url", StoragePG)
		}
	default:
		return fmt.Errorf("unknown storage %q (use %s or %s)", c.Storage, StorageFile, StoragePG)
	}
	if c.NumericThreshold <= 0 || c.NumericThreshold > 1 {
		return fmt.Errorf("numeric_threshold must be in (0, 1], got %v", c.NumericThreshold)
	}
	for key, s := range map[string]string{"decimal_separator": c.DecimalSeparator, "thousands_separator": c.ThousandsSeparator} {
		if utf8.RuneCountInString(s) > 1 {
			return fmt.Errorf("%s must be a single character, got %q", key, s)
		}
	}
	if c.DecimalSeparator != "" && c.DecimalSeparator == c.ThousandsSeparator {
		return fmt.Errorf("decimal and thousands separators must differ")
	}
	if c.MaxRows < 0 || c.BatchWorkers < 0 {
		return fmt.Errorf("max_rows and batch_workers must not be negative")
	}
	return nil
}

// AnalysisOptions maps the analysis settings onto analysis.Options.
func (c *Global) AnalysisOptions() analysis.Options {
	opt := analysis.DefaultOptions()
	if c.NumericThreshold > 0 {
		opt.NumericThreshold = c.NumericThreshold
	}
	opt.Number = analysis.NumberFormat{
		DecimalSeparator:   firstRune(c.DecimalSeparator),
		ThousandsSeparator: firstRune(c.ThousandsSeparator),
	}
	return opt
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// Set assigns one key from its string form, as given to `config set`.
func (c *Global) Set(key, value string) error {
	value = strings.TrimSpace(value)
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	}
	next := *c
	switch key {
	case "user_id":
		next.UserID = value
	case "projects_dir":
		next.ProjectsDir = value
	case "storage":
		next.Storage = value
	case "database_url":
		next.DatabaseURL = value
	case "references_file":
		next.ReferencesFile = value
	case "log_dir":
		next.LogDir = value
	case "numeric_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		next.NumericThreshold = f
	case "decimal_separator":
		next.DecimalSeparator = value
	case "thousands_separator":
		next.ThousandsSeparator = value
	case "max_rows":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.MaxRows = n
	case "batch_workers":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.BatchWorkers = n
	case "metrics_file":
		next.MetricsFile = value
	default:
		return fmt.Errorf("unknown key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
