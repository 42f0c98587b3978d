// Package export writes result tables to interchange formats for analysis
// outside the simulator (pandas, R, DuckDB).
package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/influsim/influsim/internal/results"
)

// Column order matches results.Row plus a leading realization index.
var arrowSchema = arrow.NewSchema([]arrow.Field{
	{Name: "realization", Type: arrow.PrimitiveTypes.Int64},
	{Name: "random_activation", Type: arrow.PrimitiveTypes.Int64},
	{Name: "random_rounds", Type: arrow.PrimitiveTypes.Int64},
	{Name: "influential_activation", Type: arrow.PrimitiveTypes.Int64},
	{Name: "influential_rounds", Type: arrow.PrimitiveTypes.Int64},
}, nil)

// WriteArrow writes the table to w in the Arrow IPC file format (Feather v2).
// The file holds one record batch with one row per realization.
func WriteArrow(w io.Writer, table *results.Table) error {
	if table == nil {
		return fmt.Errorf("export: nil table")
	}

	b := array.NewRecordBuilder(memory.DefaultAllocator, arrowSchema)
	defer b.Release()

	for i, row := range table.Rows {
		b.Field(0).(*array.Int64Builder).Append(int64(i))
		b.Field(1).(*array.Int64Builder).Append(int64(row.RandomActivation))
		b.Field(2).(*array.Int64Builder).Append(int64(row.RandomRounds))
		b.Field(3).(*array.Int64Builder).Append(int64(row.InfluentialActivation))
		b.Field(4).(*array.Int64Builder).Append(int64(row.InfluentialRounds))
	}

	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(arrowSchema))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}

	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("failed to write record batch: %w", err)
	}

	// Close writes the file footer; the output is unreadable without it.
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to finalize arrow file: %w", err)
	}

	return nil
}
