package app

import (
	"context"
	"math"
	"time"

	"epmstat/adapters/stats"
	"epmstat/domain/core"
	"epmstat/domain/epm"
	"epmstat/internal"

	"golang.org/x/sync/errgroup"
)

// AnalysisService runs the fixed EPM analysis protocol: restructure the table
// into paired samples, run the normality-driven paired test per
// (parameter, group), Holm-correct within each group, and assemble the
// report. Each (parameter, group) computation is independent, so the sweep
// fans out per parameter.
type AnalysisService struct {
	engine  *stats.Engine
	alpha   float64
	epsilon float64
	log     *internal.Logger
}

// NewAnalysisService creates the service. alpha steers both the normality
// screen and the Holm correction; responseEpsilon is the subject-level
// unchanged tolerance.
func NewAnalysisService(alpha, responseEpsilon float64, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		engine:  stats.NewEngine(alpha),
		alpha:   alpha,
		epsilon: responseEpsilon,
		log:     logger,
	}
}

// AnalysisRequest defines the inputs for one run.
type AnalysisRequest struct {
	Table *epm.Table
	RunID core.RunID // optional, generated if empty
}

// Run executes the whole pipeline over the loaded table.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*epm.AnalysisReport, error) {
	view, err := epm.NewDatasetView(req.Table)
	if err != nil {
		return nil, err
	}
	for _, bad := range view.BadColumns {
		s.log.Warn("skipping column: %s", bad.Reason)
	}

	runID := req.RunID
	if runID == "" {
		runID = core.NewRunID()
	}

	report := &epm.AnalysisReport{
		RunID:           runID,
		GeneratedAt:     time.Now().UTC(),
		Alpha:           s.alpha,
		ResponseEpsilon: s.epsilon,
		BadColumns:      view.BadColumns,
	}

	params := view.Parameters()

	for _, group := range epm.Groups {
		samples := make([]epm.PairedSample, len(params))
		partials := make([][]epm.PartialSubject, len(params))
		results := make([]epm.TestResult, len(params))

		g, _ := errgroup.WithContext(ctx)
		for i, param := range params {
			i, param := i, param
			g.Go(func() error {
				sample, partial := view.PairedSample(param, group)
				samples[i] = sample
				partials[i] = partial
				results[i] = s.engine.Run(sample)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, partial := range partials {
			report.PartialSubjects = append(report.PartialSubjects, partial...)
		}

		report.Groups = append(report.Groups, s.correctGroup(group, results))
		s.summarize(report, samples)
		s.classifyOutcomes(report, group, samples)
	}

	s.runLocomotionControl(view, report)

	s.log.Info("analysis run %s: %d parameters, %d skipped columns",
		runID.String(), len(params), len(report.BadColumns))
	return report, nil
}

// correctGroup applies the Holm step-down to one group's family. The family
// holds only results that carry a p-value; untestable entries never
// contribute a slot that would skew the Holm ranking. Every parameter stays
// in the output either way.
func (s *AnalysisService) correctGroup(group epm.Group, results []epm.TestResult) epm.GroupReport {
	var familyIdx []int
	var pvals []float64
	for i, r := range results {
		if r.HasPValue() {
			familyIdx = append(familyIdx, i)
			pvals = append(pvals, r.PValue)
		}
	}

	adjusted, rejected := stats.HolmAdjust(pvals, s.alpha)

	corrected := make([]epm.CorrectedResult, len(results))
	for i, r := range results {
		corrected[i] = epm.CorrectedResult{TestResult: r, PHolm: math.NaN()}
	}
	for k, i := range familyIdx {
		corrected[i].PHolm = adjusted[k]
		corrected[i].Significant = rejected[k]
	}

	return epm.GroupReport{Group: group, Results: corrected}
}

func (s *AnalysisService) summarize(report *epm.AnalysisReport, samples []epm.PairedSample) {
	for _, sample := range samples {
		if sample.N() == 0 {
			continue
		}
		report.Summaries = append(report.Summaries,
			epm.ConditionBlock{
				Parameter: sample.Parameter,
				Group:     sample.Group,
				Condition: epm.ConditionNoStim,
				Summary:   stats.Describe(sample.Off),
			},
			epm.ConditionBlock{
				Parameter: sample.Parameter,
				Group:     sample.Group,
				Condition: epm.ConditionStim,
				Summary:   stats.Describe(sample.On),
			},
		)
	}
}

// classifyOutcomes adds the subject-level directional summaries for the
// pre-specified primary parameters.
func (s *AnalysisService) classifyOutcomes(report *epm.AnalysisReport, group epm.Group, samples []epm.PairedSample) {
	for _, sample := range samples {
		if epm.DesignationOf(sample.Parameter) != epm.DesignationPrimary {
			continue
		}
		report.SubjectResponses = append(report.SubjectResponses,
			epm.SubjectResponses(sample, s.epsilon)...)
	}
}

// runLocomotionControl analyzes the locomotion subset in the PD group with a
// forced paired t-test, showing stimulation effects are not motor artifacts.
func (s *AnalysisService) runLocomotionControl(view *epm.DatasetView, report *epm.AnalysisReport) {
	present := make(map[string]bool, len(view.Parameters()))
	for _, p := range view.Parameters() {
		present[p] = true
	}

	for _, param := range epm.LocomotionParameters {
		if !present[param] {
			s.log.Warn("locomotion control parameter %q not in dataset", param)
			continue
		}
		sample, _ := view.PairedSample(param, epm.GroupPD)
		report.Locomotion = append(report.Locomotion, s.engine.RunPairedT(sample))
	}
}
