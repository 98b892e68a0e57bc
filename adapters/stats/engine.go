package stats

import (
	"math"

	"epmstat/domain/epm"
)

// Engine selects and runs exactly one paired hypothesis test per sample:
// Shapiro-Wilk-normal differences get the paired t-test, everything else the
// Wilcoxon signed-rank test. Pure computation, no side effects.
type Engine struct {
	// Alpha is the normality significance threshold steering test choice.
	Alpha float64
}

// NewEngine creates a paired test engine with the given normality threshold.
func NewEngine(alpha float64) *Engine {
	return &Engine{Alpha: alpha}
}

// Run produces the TestResult for one (parameter, group) paired sample.
//
// Fewer than two complete pairs is untestable: no statistic, no p-value, and
// the result never enters a correction family. Zero-variance differences are
// degenerate: dz stays NaN rather than dividing by zero, while the rank test
// still yields a p-value whenever the shared difference is nonzero.
func (e *Engine) Run(sample epm.PairedSample) epm.TestResult {
	result := e.newResult(sample)
	if result.Status == epm.StatusUntestable {
		return result
	}

	if normal, _ := DifferencesNormal(sample.Diff, e.Alpha); normal {
		result.Kind = epm.TestPairedT
		result.Statistic, result.PValue = pairedTTest(sample.Diff)
		return result
	}

	result.Kind = epm.TestWilcoxon
	stat, p, err := wilcoxonSignedRank(sample.Diff)
	if err != nil {
		// All-zero differences: nothing to rank, NaNs stand and the
		// degenerate status already set tells the report why.
		return result
	}
	result.Statistic, result.PValue = stat, p
	return result
}

// RunPairedT forces the parametric branch regardless of normality. The
// locomotion control subset is always analyzed this way.
func (e *Engine) RunPairedT(sample epm.PairedSample) epm.TestResult {
	result := e.newResult(sample)
	if result.Status == epm.StatusUntestable {
		return result
	}
	result.Kind = epm.TestPairedT
	result.Statistic, result.PValue = pairedTTest(sample.Diff)
	return result
}

func (e *Engine) newResult(sample epm.PairedSample) epm.TestResult {
	result := epm.TestResult{
		Parameter: sample.Parameter,
		Group:     sample.Group,
		N:         sample.N(),
		Statistic: math.NaN(),
		PValue:    math.NaN(),
		Dz:        math.NaN(),
	}

	if sample.N() < 2 {
		result.Status = epm.StatusUntestable
		return result
	}

	result.Dz = cohensDz(sample.Diff)
	if math.IsNaN(result.Dz) {
		result.Status = epm.StatusDegenerate
	} else {
		result.Status = epm.StatusTested
	}
	return result
}
