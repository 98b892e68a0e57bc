package stats

import "sort"

// HolmAdjust applies the Holm-Bonferroni step-down procedure to one family of
// raw p-values and returns, in input order, the adjusted p-values and the
// rejection decisions at level alpha.
//
// Walking the family in ascending order, hypothesis at rank i (1-based) is
// rejected while p_(i) <= alpha/(m-i+1); the first failure stops all further
// rejections explicitly, so a later p-value under its own threshold cannot be
// rejected. Adjusted values are p_adj(i) = max_{j<=i} min(1, (m-j+1)*p_(j)),
// non-decreasing along the sorted order.
//
// Families must be assembled per group by the caller; this function never
// pools across groups.
func HolmAdjust(p []float64, alpha float64) (adjusted []float64, rejected []bool) {
	m := len(p)
	adjusted = make([]float64, m)
	rejected = make([]bool, m)
	if m == 0 {
		return adjusted, rejected
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return p[order[i]] < p[order[j]] })

	stopped := false
	running := 0.0
	for rank, idx := range order {
		remaining := float64(m - rank) // m - i + 1 with 1-based i

		if !stopped && p[idx] <= alpha/remaining {
			rejected[idx] = true
		} else {
			stopped = true
		}

		adj := remaining * p[idx]
		if adj > 1 {
			adj = 1
		}
		if adj < running {
			adj = running
		}
		running = adj
		adjusted[idx] = adj
	}
	return adjusted, rejected
}
