package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool

	// cliVersion is the build version handed to Execute, used for
	// telemetry service identification.
	cliVersion string
)

// cliConfig holds settings loaded from the optional YAML config file.
// Command-line flags override everything here.
type cliConfig struct {
	Document        string `yaml:"document"`
	Base            string `yaml:"base"`
	HistoryDB       string `yaml:"history_db"`
	CaseInsensitive bool   `yaml:"case_insensitive"`
	Readmes         bool   `yaml:"readmes"`
	TraceExporter   string `yaml:"trace"`
	MetricsAddr     string `yaml:"metrics_addr"`
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	cliVersion = version
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strukt",
		Short: "strukt - declarative project structure engine",
		Long: `strukt keeps directory trees in sync with a declarative structure document.

A structure document is a versioned JSON file describing the directories a
project should contain and the files each directory should hold. strukt can
validate documents, plan and apply the filesystem operations they imply,
audit an existing tree for drift, migrate legacy documents to the current
schema, and reverse-engineer a document from a tree on disk.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAuditCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

// loadCLIConfig reads the YAML config file named by --config. A missing
// --config flag yields zero-value settings, not an error.
func loadCLIConfig() (cliConfig, error) {
	var cfg cliConfig
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// resolveDocument picks the structure document path: positional argument,
// then config file, then the conventional default.
func resolveDocument(args []string, cfg cliConfig) string {
	if len(args) > 0 {
		return args[0]
	}
	if cfg.Document != "" {
		return cfg.Document
	}
	return "structure.json"
}

// resolveBase picks the base directory: positional argument, then the
// --base flag, then the config file, then the current directory.
func resolveBase(args []string, flagValue string, cfg cliConfig) string {
	if len(args) > 0 {
		return args[0]
	}
	if flagValue != "" {
		return flagValue
	}
	if cfg.Base != "" {
		return cfg.Base
	}
	return "."
}

// cliLogger returns the logger commands hand to the engine packages.
func cliLogger() zerolog.Logger {
	logger := log.Logger
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	return logger
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
