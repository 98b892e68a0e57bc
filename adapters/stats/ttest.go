package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// pairedTTest runs the paired (two related samples) t-test on the
// within-subject differences: t = mean(d) / (sd(d)/sqrt(n)) on n-1 degrees of
// freedom, two-sided p from Student's t. Returns NaNs when the differences
// have zero variance or fewer than two values.
func pairedTTest(diff []float64) (t, p float64) {
	n := float64(len(diff))
	if n < 2 {
		return math.NaN(), math.NaN()
	}

	mean, _ := mstats.Mean(diff)
	sd, _ := mstats.StandardDeviationSample(diff)
	if sd == 0 || math.IsNaN(sd) {
		return math.NaN(), math.NaN()
	}

	t = mean / (sd / math.Sqrt(n))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}
	p = 2 * dist.CDF(-math.Abs(t))
	if p > 1 {
		p = 1
	}
	return t, p
}

// cohensDz is the paired-design effect size: mean difference over its sample
// standard deviation (n-1 denominator). NaN when the variance is zero.
func cohensDz(diff []float64) float64 {
	if len(diff) < 2 {
		return math.NaN()
	}
	mean, _ := mstats.Mean(diff)
	sd, _ := mstats.StandardDeviationSample(diff)
	if sd == 0 || math.IsNaN(sd) {
		return math.NaN()
	}
	return mean / sd
}
