package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/influsim/influsim/internal/config"
	"github.com/influsim/influsim/internal/store"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "influsim",
		Short: "Threshold cascade simulator for the influentials hypothesis",
		Long: `influsim runs threshold cascade experiments on scale-free networks.

Each experiment generates preferential attachment graphs and compares
cascades seeded at a random node against cascades seeded at the
highest-degree node, measuring whether influential seeds actually
spread further.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("db", "", "Results database path (default from config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log verbosity: info, debug, or trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newReportCmd(),
		newBatchesCmd(),
		newDeleteCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "influsim version %s\n", version)
			}
		},
	}
}

// loadConfig loads the effective config: an explicit --config file when the
// command has one, otherwise the user config with env overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if f := cmd.Flags().Lookup("config"); f != nil && f.Changed {
		return config.LoadFromFile(f.Value.String())
	}
	return config.Load()
}

// databasePath resolves the results database path: --db wins over config.
func databasePath(cmd *cobra.Command, cfg *config.Config) string {
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		return dbPath
	}
	return cfg.Database
}

// logLevel resolves the log level: --log-level wins over config.
func logLevel(cmd *cobra.Command, cfg *config.Config) string {
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		return level
	}
	return cfg.Logging.Level
}

// openStore opens the results store for commands that only read or manage
// stored batches.
func openStore(cmd *cobra.Command) (*store.ResultStore, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(databasePath(cmd, cfg))
}

// traceDir returns the directory for trace.jsonl, next to the database.
func traceDir(dbPath string) string {
	return filepath.Dir(dbPath)
}
