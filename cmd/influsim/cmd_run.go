package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/influsim/influsim/internal/config"
	"github.com/influsim/influsim/internal/experiment"
	"github.com/influsim/influsim/internal/export"
	"github.com/influsim/influsim/internal/logging"
	"github.com/influsim/influsim/internal/results"
	"github.com/influsim/influsim/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run cascade experiments and store the results",
		Long: `Run every experiment in the config, or a single ad-hoc experiment
described by flags. Each experiment becomes one stored batch with one row
per realization: activation and rounds for a random seed and for the
highest-degree seed on the same graph.

Examples:
  influsim run --config experiments.yaml
  influsim run --nodes 10000 --avg-degree 6 --threshold 0.18 --realizations 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			experiments, err := resolveExperiments(cmd, cfg)
			if err != nil {
				return err
			}

			outPath, _ := cmd.Flags().GetString("out")
			if outPath != "" && len(experiments) > 1 {
				return fmt.Errorf("--out exports a single batch; got %d experiments", len(experiments))
			}

			dbPath := databasePath(cmd, cfg)
			level := logLevel(cmd, cfg)
			log := logging.NewLogger(level, os.Stderr)
			trace := logging.NewTraceLogger(traceDir(dbPath), level)
			defer trace.Close()

			st, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open results store: %w", err)
			}
			defer st.Close()

			// Interrupt aborts the running batch and skips the save.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			jsonOut, _ := cmd.Flags().GetBool("json")
			runner := experiment.NewRunner(log, trace)

			for _, exp := range experiments {
				start := time.Now()
				table, err := runner.Run(ctx, exp)
				if err != nil {
					return err
				}
				duration := time.Since(start)

				id, err := st.SaveBatch(ctx, store.BatchMeta{
					Name:       exp.Name,
					Nodes:      exp.Nodes,
					AvgDegree:  exp.AvgDegree,
					Threshold:  exp.Threshold,
					Thresholds: exp.ThresholdVector,
					Seed:       exp.Seed,
					DurationMS: duration.Milliseconds(),
				}, table)
				if err != nil {
					return fmt.Errorf("failed to save batch %q: %w", exp.Name, err)
				}

				summary, err := results.Summarize(table, cfg.Report.CascadeFraction)
				if err != nil {
					return fmt.Errorf("failed to summarize batch %q: %w", exp.Name, err)
				}

				if jsonOut {
					json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"batch":   id,
						"name":    exp.Name,
						"summary": summary,
					})
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Batch %s (%s) finished in %s\n\n",
						shortID(id), exp.Name, duration.Round(time.Millisecond))
					writeSummary(cmd.OutOrStdout(), summary)
				}

				if outPath != "" {
					format := resolveFormat(cmd, outPath)
					if err := exportTable(outPath, format, table); err != nil {
						return err
					}
					if !jsonOut {
						fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s (%s)\n",
							len(table.Rows), outPath, format)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().String("config", "", "Experiment config file (YAML)")
	cmd.Flags().String("name", "", "Name for an ad-hoc experiment")
	cmd.Flags().Int("nodes", 0, "Graph size n for an ad-hoc experiment")
	cmd.Flags().Float64("avg-degree", 0, "Target mean degree z for an ad-hoc experiment")
	cmd.Flags().Float64("threshold", 0, "Uniform engagement threshold for an ad-hoc experiment")
	cmd.Flags().Int("realizations", 0, "Graph realizations for an ad-hoc experiment")
	cmd.Flags().Int64("seed", 0, "Base RNG seed for an ad-hoc experiment")
	cmd.Flags().Int("workers", 0, "Worker pool size (0 = all processors)")
	cmd.Flags().String("out", "", "Export the batch table to this file after the run")
	cmd.Flags().String("format", "", "Export format: arrow or csv (default: by file extension)")

	return cmd
}

// resolveExperiments returns the experiments to run: the config file list,
// or a single ad-hoc experiment when any experiment flag was given.
func resolveExperiments(cmd *cobra.Command, cfg *config.Config) ([]experiment.Config, error) {
	flags := cmd.Flags()

	adHoc := false
	for _, name := range []string{"name", "nodes", "avg-degree", "threshold", "realizations", "seed", "workers"} {
		if flags.Changed(name) {
			adHoc = true
			break
		}
	}
	if !adHoc {
		return cfg.ResolvedExperiments()
	}

	overrides := config.ExperimentConfig{Name: "ad-hoc"}
	if flags.Changed("name") {
		overrides.Name, _ = flags.GetString("name")
	}
	if flags.Changed("nodes") {
		overrides.Nodes, _ = flags.GetInt("nodes")
	}
	if flags.Changed("avg-degree") {
		overrides.AvgDegree, _ = flags.GetFloat64("avg-degree")
	}
	if flags.Changed("threshold") {
		threshold, _ := flags.GetFloat64("threshold")
		overrides.Threshold = &threshold
	}
	if flags.Changed("realizations") {
		overrides.Realizations, _ = flags.GetInt("realizations")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		overrides.Seed = &seed
	}
	if flags.Changed("workers") {
		overrides.Workers, _ = flags.GetInt("workers")
	}

	exp, err := cfg.AdHocExperiment(overrides)
	if err != nil {
		return nil, err
	}
	return []experiment.Config{exp}, nil
}

// resolveFormat picks the export format: the --format flag when given,
// otherwise the file extension.
func resolveFormat(cmd *cobra.Command, outPath string) string {
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		return format
	}
	if len(outPath) > 4 && outPath[len(outPath)-4:] == ".csv" {
		return "csv"
	}
	return "arrow"
}

// exportTable writes the table to a fresh file in the given format.
func exportTable(path, format string, table *results.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := export.Write(f, format, table); err != nil {
		f.Close()
		return fmt.Errorf("failed to export table: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}
