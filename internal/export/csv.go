package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/influsim/influsim/internal/results"
)

var csvHeader = []string{
	"realization",
	"random_activation",
	"random_rounds",
	"influential_activation",
	"influential_rounds",
}

// WriteCSV writes the table to w as CSV with a header row.
func WriteCSV(w io.Writer, table *results.Table) error {
	if table == nil {
		return fmt.Errorf("export: nil table")
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(csvHeader))
	for i, row := range table.Rows {
		record[0] = strconv.Itoa(i)
		record[1] = strconv.Itoa(row.RandomActivation)
		record[2] = strconv.Itoa(row.RandomRounds)
		record[3] = strconv.Itoa(row.InfluentialActivation)
		record[4] = strconv.Itoa(row.InfluentialRounds)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

// Write writes the table to w in the named format ("arrow" or "csv").
func Write(w io.Writer, format string, table *results.Table) error {
	switch format {
	case "arrow":
		return WriteArrow(w, table)
	case "csv":
		return WriteCSV(w, table)
	default:
		return fmt.Errorf("export: unknown format %q (want arrow or csv)", format)
	}
}
