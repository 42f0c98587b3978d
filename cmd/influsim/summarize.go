package main

import (
	"fmt"
	"io"
	"time"

	"github.com/influsim/influsim/internal/results"
	"github.com/influsim/influsim/internal/store"
)

// writeBatchHeader prints a batch's parameters in the report's text output.
func writeBatchHeader(w io.Writer, meta store.BatchMeta) {
	title := fmt.Sprintf("Batch %s (%s)", shortID(meta.ID), meta.Name)
	fmt.Fprintf(w, "%s\n%s\n\n", title, repeatChar('=', len(title)))
	fmt.Fprintf(w, "  Nodes:        %d\n", meta.Nodes)
	fmt.Fprintf(w, "  Avg degree:   %.1f\n", meta.AvgDegree)
	fmt.Fprintf(w, "  Threshold:    %s\n", thresholdLabel(meta))
	fmt.Fprintf(w, "  Realizations: %d\n", meta.Realizations)
	fmt.Fprintf(w, "  Seed:         %d\n", meta.Seed)
	fmt.Fprintf(w, "  Duration:     %s\n", time.Duration(meta.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "  Created:      %s\n\n", meta.CreatedAt.Local().Format("2006-01-02 15:04"))
}

// writeSummary prints a summary's statistics in the report's text output.
func writeSummary(w io.Writer, s results.Summary) {
	fmt.Fprintf(w, "  Realizations:     %d (n=%d)\n", s.Realizations, s.Nodes)
	fmt.Fprintf(w, "  Mean activation:  random %.1f, influential %.1f\n",
		s.RandomMeanActivation, s.InfluentialMeanActivation)
	fmt.Fprintf(w, "  Mean rounds:      random %.2f, influential %.2f\n",
		s.RandomMeanRounds, s.InfluentialMeanRounds)
	fmt.Fprintf(w, "  Activation ratio: mean %.2f, quartiles %.2f / %.2f / %.2f\n",
		s.RatioMean, s.RatioQ1, s.RatioMedian, s.RatioQ3)
	fmt.Fprintf(w, "  Global cascades:  random %d/%d, influential %d/%d (above %.0f%% of nodes)\n",
		s.RandomGlobalCascades, s.Realizations,
		s.InfluentialGlobalCascades, s.Realizations, s.CascadeFraction*100)
}

// thresholdLabel renders a batch's threshold column: the uniform value, or a
// marker when the batch used a per-node vector.
func thresholdLabel(meta store.BatchMeta) string {
	if len(meta.Thresholds) > 0 {
		return "per-node"
	}
	return fmt.Sprintf("%.3f", meta.Threshold)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func repeatChar(c rune, n int) string {
	result := make([]rune, n)
	for i := range result {
		result[i] = c
	}
	return string(result)
}
