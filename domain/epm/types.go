package epm

import (
	"math"
)

// Group is the between-subject factor: lesioned (PD) vs sham (Control) rats.
type Group string

const (
	GroupPD      Group = "PD"
	GroupControl Group = "Control"
)

// Groups in reporting order.
var Groups = []Group{GroupPD, GroupControl}

// Condition is the within-subject factor: stimulation off vs on.
type Condition string

const (
	ConditionNoStim Condition = "NoStim"
	ConditionStim   Condition = "Stim"
)

// SubjectKey identifies one animal within its group.
type SubjectKey struct {
	Group Group
	Index int
}

// ColumnRef is the parsed form of a subject-condition column label such as
// "PD_1_NoStim" or "CO2_Stim".
type ColumnRef struct {
	Group     Group
	Subject   int
	Condition Condition
}

// Designation separates pre-specified primary outcomes from everything else.
// The partition is fixed by parameter name and never depends on results.
type Designation string

const (
	DesignationPrimary   Designation = "primary"
	DesignationSecondary Designation = "secondary"
)

// PrimaryParameters are the pre-registered primary EPM outcomes.
var PrimaryParameters = []string{"Time_OpenArms", "Percent_OpenArms"}

// LocomotionParameters form the locomotion control subset. They are analyzed
// with a paired t-test in the PD group regardless of normality, to show that
// stimulation effects are not movement artifacts.
var LocomotionParameters = []string{"MeanSpeed_Overall_cm/s", "Entries_ClosedArms"}

// DesignationOf returns the designation for a parameter name.
func DesignationOf(parameter string) Designation {
	for _, p := range PrimaryParameters {
		if p == parameter {
			return DesignationPrimary
		}
	}
	return DesignationSecondary
}

// IsLocomotionParameter reports whether the parameter belongs to the
// locomotion control subset.
func IsLocomotionParameter(parameter string) bool {
	for _, p := range LocomotionParameters {
		if p == parameter {
			return true
		}
	}
	return false
}

// PairedSample holds, for one (parameter, group), the within-subject
// observations of every animal that has both conditions. The three slices are
// parallel and ordered by subject index.
type PairedSample struct {
	Parameter string
	Group     Group
	Subjects  []SubjectKey
	Off       []float64 // NoStim values
	On        []float64 // Stim values
	Diff      []float64 // On - Off
}

// N returns the number of complete subject pairs.
func (s PairedSample) N() int { return len(s.Diff) }

// TestKind records which paired test produced a result.
type TestKind string

const (
	TestPairedT  TestKind = "Paired t-test"
	TestWilcoxon TestKind = "Wilcoxon signed-rank"
)

// ResultStatus is an explicit marker for statistical edge cases. Every
// parameter appears in the report exactly once with one of these statuses;
// soft failures are carried here rather than as scattered sentinels.
type ResultStatus string

const (
	// StatusTested means the test ran and produced a usable p-value.
	StatusTested ResultStatus = "tested"
	// StatusUntestable means fewer than two complete pairs existed; the
	// result carries no statistic and joins no correction family.
	StatusUntestable ResultStatus = "untestable"
	// StatusDegenerate means the differences had zero variance, so Cohen's
	// dz is undefined. The p-value is still reported when the chosen test
	// could compute one.
	StatusDegenerate ResultStatus = "degenerate"
)

// TestResult is the immutable outcome of one paired test for one
// (parameter, group).
type TestResult struct {
	Parameter string
	Group     Group
	Status    ResultStatus
	Kind      TestKind
	Statistic float64
	PValue    float64
	Dz        float64 // Cohen's dz; NaN when Status is degenerate
	N         int
}

// HasPValue reports whether the result carries a p-value that can enter a
// correction family. Untestable results never do; degenerate results only
// when the nonparametric fallback still produced one.
func (r TestResult) HasPValue() bool {
	return r.Status != StatusUntestable && !math.IsNaN(r.PValue)
}

// CorrectedResult is a TestResult plus its Holm-adjusted p-value within the
// group family. Results outside the family keep PHolm = NaN.
type CorrectedResult struct {
	TestResult
	PHolm       float64
	Significant bool
}

// ResponseDirection labels a subject-level change under stimulation.
type ResponseDirection string

const (
	ResponseIncreased ResponseDirection = "increased"
	ResponseDecreased ResponseDirection = "decreased"
	ResponseUnchanged ResponseDirection = "unchanged"
)

// SubjectResponse is the per-animal directional summary for a primary
// parameter: signed delta, percent change relative to baseline, and a
// categorical label.
type SubjectResponse struct {
	Parameter     string
	Subject       SubjectKey
	Off           float64
	On            float64
	Delta         float64 // On - Off
	PercentChange float64 // Delta / Off * 100; NaN when Off == 0
	Direction     ResponseDirection
}

// ClassifyResponse labels a delta against an absolute tolerance. With the
// default epsilon of 0 any nonzero delta counts as directional.
func ClassifyResponse(delta, epsilon float64) ResponseDirection {
	switch {
	case delta > epsilon:
		return ResponseIncreased
	case delta < -epsilon:
		return ResponseDecreased
	default:
		return ResponseUnchanged
	}
}

// ColumnNote records a column label the parser rejected, so the run report
// can list what was skipped.
type ColumnNote struct {
	Label  string
	Reason string
}

// PartialSubject records an animal excluded from one parameter's paired
// sample because only one condition was present.
type PartialSubject struct {
	Parameter string
	Subject   SubjectKey
	Missing   Condition
}
