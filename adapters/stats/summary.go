package stats

import (
	"math"

	"epmstat/domain/epm"

	mstats "github.com/montanaflynn/stats"
)

// Describe computes descriptive statistics for a sequence of observations.
// An empty sequence yields all-NaN fields.
func Describe(values []float64) epm.ConditionSummary {
	s := epm.ConditionSummary{
		N:      len(values),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Median: math.NaN(),
		Q25:    math.NaN(),
		Q75:    math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
	}
	if len(values) == 0 {
		return s
	}

	if v, err := mstats.Mean(values); err == nil {
		s.Mean = v
	}
	if v, err := mstats.StandardDeviationSample(values); err == nil {
		s.StdDev = v
	}
	if v, err := mstats.Median(values); err == nil {
		s.Median = v
	}
	if v, err := mstats.Percentile(values, 25); err == nil {
		s.Q25 = v
	}
	if v, err := mstats.Percentile(values, 75); err == nil {
		s.Q75 = v
	}
	if v, err := mstats.Min(values); err == nil {
		s.Min = v
	}
	if v, err := mstats.Max(values); err == nil {
		s.Max = v
	}
	return s
}
