package epm

import (
	"time"

	"epmstat/domain/core"
)

// ConditionSummary holds descriptive statistics for one condition of one
// (parameter, group), reported alongside the test results.
type ConditionSummary struct {
	N      int
	Mean   float64
	StdDev float64
	Median float64
	Q25    float64
	Q75    float64
	Min    float64
	Max    float64
}

// ConditionBlock ties a ConditionSummary to its coordinates.
type ConditionBlock struct {
	Parameter string
	Group     Group
	Condition Condition
	Summary   ConditionSummary
}

// GroupReport carries one group's corrected results in table row order.
// Every parameter of the dataset appears exactly once, including untestable
// and degenerate ones; omitting a parameter from a scientific report is worse
// than flagging it.
type GroupReport struct {
	Group   Group
	Results []CorrectedResult
}

// AnalysisReport is the full structured output of one pipeline run, consumed
// by the report writer and the optional result repository.
type AnalysisReport struct {
	RunID           core.RunID
	GeneratedAt     time.Time
	Alpha           float64
	ResponseEpsilon float64

	Groups           []GroupReport
	SubjectResponses []SubjectResponse // primary parameters, both groups
	Locomotion       []TestResult      // locomotion control subset, PD group
	Summaries        []ConditionBlock

	BadColumns      []ColumnNote
	PartialSubjects []PartialSubject
}

// GroupResults returns the corrected results for one group, or nil.
func (r *AnalysisReport) GroupResults(g Group) []CorrectedResult {
	for _, gr := range r.Groups {
		if gr.Group == g {
			return gr.Results
		}
	}
	return nil
}
