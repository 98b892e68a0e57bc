package stats

import "math"

// DifferencesNormal classifies whether a sequence of paired differences is
// adequately normal for the parametric branch.
//
// The rule is Shapiro-Wilk on the differences with normal iff p > alpha, so a
// p-value sitting exactly on alpha falls to the nonparametric side. With
// fewer than three differences the test cannot run and the classification
// defaults to non-normal, preferring the distribution-free test.
//
// The returned p-value is NaN whenever the test could not be applied.
func DifferencesNormal(diff []float64, alpha float64) (normal bool, shapiroP float64) {
	if len(diff) < 3 {
		return false, math.NaN()
	}
	_, p, err := ShapiroWilk(diff)
	if err != nil {
		return false, math.NaN()
	}
	return p > alpha, p
}
