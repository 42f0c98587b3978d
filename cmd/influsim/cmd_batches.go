package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newBatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batches",
		Short: "List stored batches",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			metas, err := st.ListBatches(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"batches": metas,
				})
			}

			w := cmd.OutOrStdout()
			if len(metas) == 0 {
				fmt.Fprintln(w, "No batches stored. Run an experiment first.")
				return nil
			}

			fmt.Fprintf(w, "%-10s %-20s %8s %6s %10s %6s  %s\n",
				"ID", "NAME", "NODES", "Z", "THRESHOLD", "RUNS", "CREATED")
			fmt.Fprintln(w, repeatChar('-', 82))
			for _, m := range metas {
				fmt.Fprintf(w, "%-10s %-20s %8d %6.1f %10s %6d  %s\n",
					shortID(m.ID), truncate(m.Name, 20), m.Nodes, m.AvgDegree,
					thresholdLabel(m), m.Realizations,
					m.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprintf(w, "\n%d batches\n", len(metas))
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <batch-id>",
		Short: "Delete a stored batch and its realizations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := st.DeleteBatch(cmd.Context(), id); err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"deleted": id,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted batch %s\n", shortID(id))
			return nil
		},
	}
}
