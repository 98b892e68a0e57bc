package stats

import (
	"fmt"
	"math"
	"sort"

	"epmstat/domain/core"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Royston's polynomial coefficients for the two largest weights (AS R94).
var (
	shapiroC1 = []float64{0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	shapiroC2 = []float64{0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
)

// royPoly evaluates c[0]*x + c[1]*x^2 + ... in Royston's ordering.
func royPoly(c []float64, x float64) float64 {
	sum := 0.0
	xp := x
	for _, coeff := range c {
		sum += coeff * xp
		xp *= x
	}
	return sum
}

// ShapiroWilk computes the Shapiro-Wilk W statistic and its p-value using
// Royston's AS R94 approximation. Supported range is 3 <= n <= 5000; a
// zero-range sample cannot be assessed and returns core.ErrDegenerateSample.
func ShapiroWilk(sample []float64) (w, p float64, err error) {
	n := len(sample)
	if n < 3 {
		return 0, 0, fmt.Errorf("%w: shapiro-wilk needs n >= 3, got %d", core.ErrSampleSize, n)
	}
	if n > 5000 {
		return 0, 0, fmt.Errorf("%w: shapiro-wilk supports n <= 5000, got %d", core.ErrSampleSize, n)
	}

	x := append([]float64(nil), sample...)
	sort.Float64s(x)
	if x[n-1]-x[0] == 0 {
		return 0, 0, fmt.Errorf("%w: sample range is zero", core.ErrDegenerateSample)
	}

	fn := float64(n)

	// Expected normal order statistics (Blom scores).
	m := make([]float64, n)
	ssq := 0.0
	for i := 0; i < n; i++ {
		m[i] = stdNormal.Quantile((float64(i+1) - 0.375) / (fn + 0.25))
		ssq += m[i] * m[i]
	}

	// Weights: exact for n = 3, Royston's polynomial-adjusted tails above.
	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
	} else {
		rsn := 1 / math.Sqrt(fn)
		an := royPoly(shapiroC1, rsn) + m[n-1]/math.Sqrt(ssq)

		var phi float64
		if n > 5 {
			an1 := royPoly(shapiroC2, rsn) + m[n-2]/math.Sqrt(ssq)
			phi = (ssq - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
			a[n-1], a[n-2] = an, an1
			a[0], a[1] = -an, -an1
			for i := 2; i < n-2; i++ {
				a[i] = m[i] / math.Sqrt(phi)
			}
		} else {
			phi = (ssq - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
			a[n-1] = an
			a[0] = -an
			for i := 1; i < n-1; i++ {
				a[i] = m[i] / math.Sqrt(phi)
			}
		}
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= fn

	var num, den float64
	for i, v := range x {
		num += a[i] * v
		den += (v - mean) * (v - mean)
	}
	w = num * num / den
	if w > 1 {
		w = 1
	}

	p = shapiroPValue(w, n)
	return w, p, nil
}

// shapiroPValue maps W to a p-value via Royston's normalizing transforms.
func shapiroPValue(w float64, n int) float64 {
	fn := float64(n)

	if n == 3 {
		// Exact small-sample distribution.
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return clamp01(p)
	}

	oneMinusW := 1 - w
	if oneMinusW <= 0 {
		return 1
	}

	var z float64
	if n <= 11 {
		gamma := -2.273 + 0.459*fn
		arg := gamma - math.Log(oneMinusW)
		if arg <= 0 {
			// W below the transform's support; overwhelmingly non-normal.
			return 0
		}
		ws := -math.Log(arg)
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		z = (ws - mu) / sigma
	} else {
		ln := math.Log(fn)
		ws := math.Log(oneMinusW)
		mu := -1.5861 - 0.31082*ln - 0.083751*ln*ln + 0.0038915*ln*ln*ln
		sigma := math.Exp(-0.4803 - 0.082676*ln + 0.0030302*ln*ln)
		z = (ws - mu) / sigma
	}

	return clamp01(1 - stdNormal.CDF(z))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
