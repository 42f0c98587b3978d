package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [batch-id]",
		Short: "Export a batch's result table to a file",
		Long: `Export a stored batch's realization table to an Arrow IPC file or CSV
for analysis elsewhere (pandas, R, DuckDB). With no batch ID the latest
batch is exported. The format follows the file extension unless --format
is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			latest, _ := cmd.Flags().GetBool("latest")
			if latest && len(args) > 0 {
				return fmt.Errorf("--latest cannot be combined with a batch ID")
			}

			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			var id string
			if len(args) == 1 {
				id, err = st.ResolveID(ctx, args[0])
				if err != nil {
					return err
				}
			} else {
				meta, err := st.LatestBatch(ctx)
				if err != nil {
					return err
				}
				id = meta.ID
			}

			meta, table, err := st.GetBatch(ctx, id)
			if err != nil {
				return err
			}

			outPath, _ := cmd.Flags().GetString("out")
			format := resolveFormat(cmd, outPath)
			if err := exportTable(outPath, format, table); err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"batch":  meta.ID,
					"path":   outPath,
					"format": format,
					"rows":   len(table.Rows),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported batch %s (%d rows) to %s (%s)\n",
				shortID(meta.ID), len(table.Rows), outPath, format)
			return nil
		},
	}

	cmd.Flags().Bool("latest", false, "Export the most recent batch (the default)")
	cmd.Flags().String("out", "", "Output file path")
	cmd.Flags().String("format", "", "Export format: arrow or csv (default: by file extension)")
	cmd.MarkFlagRequired("out")

	return cmd
}
