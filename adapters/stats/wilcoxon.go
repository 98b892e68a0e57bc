package stats

import (
	"fmt"
	"math"
	"sort"

	"epmstat/domain/core"
)

// Exact enumeration is tractable and preferred up to this n; beyond it (or
// with tied ranks, where the exact null no longer holds) the normal
// approximation with tie correction takes over.
const wilcoxonExactLimit = 25

// wilcoxonSignedRank runs the two-sided Wilcoxon signed-rank test on paired
// differences. Zero differences are discarded before ranking and tied
// absolute differences receive average ranks. The statistic is
// min(T+, T-). All-zero differences leave nothing to rank and return
// core.ErrDegenerateSample.
func wilcoxonSignedRank(diff []float64) (stat, p float64, err error) {
	d := make([]float64, 0, len(diff))
	for _, v := range diff {
		if v != 0 {
			d = append(d, v)
		}
	}
	n := len(d)
	if n == 0 {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: all differences are zero", core.ErrDegenerateSample)
	}

	abs := make([]float64, n)
	for i, v := range d {
		abs[i] = math.Abs(v)
	}
	ranks, hasTies, tieTerm := averageRanks(abs)

	var tPlus, tMinus float64
	for i, v := range d {
		if v > 0 {
			tPlus += ranks[i]
		} else {
			tMinus += ranks[i]
		}
	}
	stat = math.Min(tPlus, tMinus)

	if n <= wilcoxonExactLimit && !hasTies {
		p = 2 * signRankCDF(stat, n)
		if p > 1 {
			p = 1
		}
		return stat, p, nil
	}

	mu := float64(n*(n+1)) / 4
	variance := float64(n*(n+1)*(2*n+1))/24 - tieTerm/48
	if variance <= 0 {
		return stat, math.NaN(), fmt.Errorf("%w: rank variance is zero", core.ErrDegenerateSample)
	}
	z := (stat - mu) / math.Sqrt(variance)
	p = 2 * stdNormal.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}
	return stat, p, nil
}

// averageRanks assigns 1-based ranks with ties sharing their average rank.
// tieTerm accumulates sum(t^3 - t) over tie groups for the variance
// correction of the normal approximation.
func averageRanks(values []float64) (ranks []float64, hasTies bool, tieTerm float64) {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return values[order[i]] < values[order[j]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && values[order[j]] == values[order[i]] {
			j++
		}
		// Positions i..j-1 are tied; average of ranks i+1..j.
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		if t := j - i; t > 1 {
			hasTies = true
			ft := float64(t)
			tieTerm += ft*ft*ft - ft
		}
		i = j
	}
	return ranks, hasTies, tieTerm
}

// signRankCDF is P(W <= x) under the exact signed-rank null for n untied
// observations, computed by counting rank subsets.
func signRankCDF(x float64, n int) float64 {
	if x < 0 {
		return 0
	}
	maxSum := n * (n + 1) / 2
	limit := int(math.Floor(x))
	if limit >= maxSum {
		return 1
	}

	counts := make([]float64, maxSum+1)
	counts[0] = 1
	for k := 1; k <= n; k++ {
		for w := maxSum; w >= k; w-- {
			counts[w] += counts[w-k]
		}
	}

	var c float64
	for w := 0; w <= limit; w++ {
		c += counts[w]
	}
	return c / math.Exp2(float64(n))
}
