package results

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the derived statistics reported for a table. The activation
// ratio compares the influential cascade to the random cascade row by row,
// and a realization counts as a global cascade when its activation exceeds
// CascadeFraction of the node count.
type Summary struct {
	Realizations int `json:"realizations"`
	Nodes        int `json:"nodes"`

	RandomMeanActivation      float64 `json:"random_mean_activation"`
	InfluentialMeanActivation float64 `json:"influential_mean_activation"`
	RandomMeanRounds          float64 `json:"random_mean_rounds"`
	InfluentialMeanRounds     float64 `json:"influential_mean_rounds"`

	RatioMean   float64 `json:"ratio_mean"`
	RatioQ1     float64 `json:"ratio_q1"`
	RatioMedian float64 `json:"ratio_median"`
	RatioQ3     float64 `json:"ratio_q3"`

	CascadeFraction           float64 `json:"cascade_fraction"`
	RandomGlobalCascades      int     `json:"random_global_cascades"`
	InfluentialGlobalCascades int     `json:"influential_global_cascades"`
}

// Summarize computes a table's summary. cascadeFraction sets the fraction of
// the node count an activation must exceed to count as a global cascade; the
// conventional choice is 0.1.
func Summarize(t *Table, cascadeFraction float64) (Summary, error) {
	if len(t.Rows) == 0 {
		return Summary{}, fmt.Errorf("results: cannot summarize an empty table")
	}
	if cascadeFraction <= 0 || cascadeFraction > 1 {
		return Summary{}, fmt.Errorf("results: cascade fraction %g outside (0,1]", cascadeFraction)
	}

	n := len(t.Rows)
	randAct := make([]float64, n)
	inflAct := make([]float64, n)
	randRounds := make([]float64, n)
	inflRounds := make([]float64, n)
	ratios := make([]float64, n)

	cutoff := cascadeFraction * float64(t.Nodes)
	s := Summary{
		Realizations:    n,
		Nodes:           t.Nodes,
		CascadeFraction: cascadeFraction,
	}
	for i, row := range t.Rows {
		randAct[i] = float64(row.RandomActivation)
		inflAct[i] = float64(row.InfluentialActivation)
		randRounds[i] = float64(row.RandomRounds)
		inflRounds[i] = float64(row.InfluentialRounds)
		// Activation counts include the seed and are therefore >= 1, so the
		// ratio is always defined.
		ratios[i] = inflAct[i] / randAct[i]

		if randAct[i] > cutoff {
			s.RandomGlobalCascades++
		}
		if inflAct[i] > cutoff {
			s.InfluentialGlobalCascades++
		}
	}

	s.RandomMeanActivation = stat.Mean(randAct, nil)
	s.InfluentialMeanActivation = stat.Mean(inflAct, nil)
	s.RandomMeanRounds = stat.Mean(randRounds, nil)
	s.InfluentialMeanRounds = stat.Mean(inflRounds, nil)
	s.RatioMean = stat.Mean(ratios, nil)

	sort.Float64s(ratios)
	s.RatioQ1 = stat.Quantile(0.25, stat.Empirical, ratios, nil)
	s.RatioMedian = stat.Quantile(0.5, stat.Empirical, ratios, nil)
	s.RatioQ3 = stat.Quantile(0.75, stat.Empirical, ratios, nil)

	return s, nil
}
