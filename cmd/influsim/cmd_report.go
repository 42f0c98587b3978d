package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/influsim/influsim/internal/results"
	"github.com/influsim/influsim/internal/store"
)

// batchReport pairs a batch's metadata with its summary statistics.
type batchReport struct {
	Meta    store.BatchMeta `json:"meta"`
	Summary results.Summary `json:"summary"`
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [batch-id...]",
		Short: "Summarize stored batches",
		Long: `Summarize one or more stored batches: mean activation and rounds per
seeding strategy, the influential/random activation ratio quartiles, and
global cascade counts. With no arguments the latest batch is reported.

When several batches over the same graph size are selected, a combined
summary over their pooled realizations is appended.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fraction := cfg.Report.CascadeFraction
			if cmd.Flags().Changed("cascade-fraction") {
				fraction, _ = cmd.Flags().GetFloat64("cascade-fraction")
			}

			all, _ := cmd.Flags().GetBool("all")
			latest, _ := cmd.Flags().GetBool("latest")
			if all && len(args) > 0 {
				return fmt.Errorf("--all cannot be combined with batch IDs")
			}
			if latest && (all || len(args) > 0) {
				return fmt.Errorf("--latest cannot be combined with --all or batch IDs")
			}

			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			metas, err := selectBatches(ctx, st, args, all)
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batches stored. Run an experiment first.")
				return nil
			}

			reports := make([]batchReport, 0, len(metas))
			tables := make([]*results.Table, 0, len(metas))
			for _, meta := range metas {
				_, table, err := st.GetBatch(ctx, meta.ID)
				if err != nil {
					return err
				}
				summary, err := results.Summarize(table, fraction)
				if err != nil {
					return fmt.Errorf("failed to summarize batch %s: %w", shortID(meta.ID), err)
				}
				reports = append(reports, batchReport{Meta: meta, Summary: summary})
				tables = append(tables, table)
			}

			combined, err := combineSummaries(tables, fraction)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				out := map[string]any{"batches": reports}
				if combined != nil {
					out["combined"] = combined
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			w := cmd.OutOrStdout()
			for i, r := range reports {
				if i > 0 {
					fmt.Fprintln(w)
				}
				writeBatchHeader(w, r.Meta)
				writeSummary(w, r.Summary)
			}
			if combined != nil {
				fmt.Fprintf(w, "\nCombined (%d batches, %d realizations)\n%s\n",
					len(reports), combined.Realizations, repeatChar('-', 46))
				writeSummary(w, *combined)
			}
			return nil
		},
	}

	cmd.Flags().Bool("latest", false, "Report the most recent batch (the default)")
	cmd.Flags().Bool("all", false, "Report every stored batch")
	cmd.Flags().Float64("cascade-fraction", 0.1, "Activation fraction that counts as a global cascade")

	return cmd
}

// selectBatches resolves the report targets: explicit IDs, every batch, or
// the most recent one.
func selectBatches(ctx context.Context, st *store.ResultStore, ids []string, all bool) ([]store.BatchMeta, error) {
	if all {
		return st.ListBatches(ctx)
	}

	if len(ids) > 0 {
		metas := make([]store.BatchMeta, 0, len(ids))
		for _, raw := range ids {
			id, err := st.ResolveID(ctx, raw)
			if err != nil {
				return nil, err
			}
			meta, _, err := st.GetBatch(ctx, id)
			if err != nil {
				return nil, err
			}
			metas = append(metas, meta)
		}
		return metas, nil
	}

	meta, err := st.LatestBatch(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []store.BatchMeta{meta}, nil
}

// combineSummaries pools the tables into one summary. It returns nil when
// there is nothing to combine: fewer than two tables, or mismatched graph
// sizes that cannot share a cascade criterion.
func combineSummaries(tables []*results.Table, fraction float64) (*results.Summary, error) {
	if len(tables) < 2 {
		return nil, nil
	}
	for _, t := range tables[1:] {
		if t.Nodes != tables[0].Nodes {
			return nil, nil
		}
	}

	pooled, err := results.Concat(tables...)
	if err != nil {
		return nil, fmt.Errorf("failed to combine batches: %w", err)
	}
	summary, err := results.Summarize(pooled, fraction)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize combined batches: %w", err)
	}
	return &summary, nil
}
