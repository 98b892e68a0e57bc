package app

import (
	"context"
	"math"
	"testing"

	"epmstat/domain/epm"
	"epmstat/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runService(t *testing.T, table *epm.Table) *epm.AnalysisReport {
	t.Helper()
	service := NewAnalysisService(0.05, 0, nil)
	report, err := service.Run(context.Background(), AnalysisRequest{Table: table})
	require.NoError(t, err)
	return report
}

func resultFor(t *testing.T, report *epm.AnalysisReport, group epm.Group, param string) epm.CorrectedResult {
	t.Helper()
	for _, r := range report.GroupResults(group) {
		if r.Parameter == param {
			return r
		}
	}
	t.Fatalf("no result for %s/%s", group, param)
	return epm.CorrectedResult{}
}

func TestAnalysisService_FullRun(t *testing.T) {
	report := runService(t, testkit.Generate(testkit.DefaultConfig()))

	require.Len(t, report.Groups, 2)
	for _, group := range epm.Groups {
		results := report.GroupResults(group)
		require.Len(t, results, len(testkit.Parameters()))

		seen := make(map[string]int)
		for _, r := range results {
			seen[r.Parameter]++
			assert.Equal(t, group, r.Group)
			assert.Equal(t, 8, r.N)
		}
		for _, param := range testkit.Parameters() {
			assert.Equal(t, 1, seen[param], "parameter %s", param)
		}
	}

	assert.NotEmpty(t, report.RunID)
	assert.InDelta(t, 0.05, report.Alpha, 1e-12)
	assert.Empty(t, report.BadColumns)
	assert.Empty(t, report.PartialSubjects)
}

func TestAnalysisService_RecoversInjectedEffect(t *testing.T) {
	// The generator adds +25 to Stim on the primary parameters in PD only,
	// against +-5 jitter. Both tests have overwhelming power here, so the
	// primaries must survive Holm regardless of which branch is taken.
	report := runService(t, testkit.Generate(testkit.DefaultConfig()))

	for _, param := range epm.PrimaryParameters {
		res := resultFor(t, report, epm.GroupPD, param)
		assert.Equal(t, epm.StatusTested, res.Status, param)
		assert.True(t, res.Significant, param)
		assert.False(t, math.IsNaN(res.PHolm), param)
		assert.Less(t, res.PHolm, 0.05, param)
		assert.Greater(t, res.Dz, 1.0, param)
	}
}

func TestAnalysisService_LocomotionControlForcesPairedT(t *testing.T) {
	report := runService(t, testkit.Generate(testkit.DefaultConfig()))

	require.Len(t, report.Locomotion, len(epm.LocomotionParameters))
	for _, res := range report.Locomotion {
		assert.Equal(t, epm.GroupPD, res.Group)
		assert.Equal(t, epm.TestPairedT, res.Kind)
		assert.True(t, epm.IsLocomotionParameter(res.Parameter))
	}
}

func TestAnalysisService_GroupFamiliesAreIndependent(t *testing.T) {
	base := testkit.Generate(testkit.DefaultConfig())
	report := runService(t, base)

	// Distort every Control cell; the PD family must come out identical.
	shifted := testkit.Generate(testkit.DefaultConfig())
	for _, cells := range shifted.Cells {
		for col := range cells {
			if ref, err := epm.ParseColumn(col); err == nil && ref.Group == epm.GroupControl {
				cells[col] *= 3
			}
		}
	}
	shiftedReport := runService(t, shifted)

	assert.Equal(t, report.GroupResults(epm.GroupPD), shiftedReport.GroupResults(epm.GroupPD))
}

func TestAnalysisService_UntestableExcludedFromFamily(t *testing.T) {
	// Time_Center has a single complete PD pair: untestable, no p-value, and
	// it must not occupy a slot in the Holm ranking for the others.
	table := testkit.BuildTable(
		[]string{"Time_OpenArms", "Time_Center"},
		[]string{"PD_1_NoStim", "PD_1_Stim", "PD_2_NoStim", "PD_2_Stim", "PD_3_NoStim", "PD_3_Stim"},
		map[string]map[string]float64{
			"Time_OpenArms": {
				"PD_1_NoStim": 10, "PD_1_Stim": 31,
				"PD_2_NoStim": 20, "PD_2_Stim": 42,
				"PD_3_NoStim": 30, "PD_3_Stim": 53,
			},
			"Time_Center": {
				"PD_1_NoStim": 40, "PD_1_Stim": 35,
			},
		},
	)
	report := runService(t, table)

	center := resultFor(t, report, epm.GroupPD, "Time_Center")
	assert.Equal(t, epm.StatusUntestable, center.Status)
	assert.Equal(t, 1, center.N)
	assert.True(t, math.IsNaN(center.PHolm))
	assert.False(t, center.Significant)

	// Family size is 1, so the survivor's Holm p equals its raw p.
	open := resultFor(t, report, epm.GroupPD, "Time_OpenArms")
	assert.Equal(t, epm.StatusTested, open.Status)
	assert.InDelta(t, open.PValue, open.PHolm, 1e-12)
}

func TestAnalysisService_PartialSubjectsReported(t *testing.T) {
	table := testkit.Generate(testkit.DefaultConfig())
	delete(table.Cells["Time_OpenArms"], "PD_3_Stim")

	report := runService(t, table)

	require.Len(t, report.PartialSubjects, 1)
	assert.Equal(t, "Time_OpenArms", report.PartialSubjects[0].Parameter)
	assert.Equal(t, epm.SubjectKey{Group: epm.GroupPD, Index: 3}, report.PartialSubjects[0].Subject)

	res := resultFor(t, report, epm.GroupPD, "Time_OpenArms")
	assert.Equal(t, 7, res.N)

	// The same subject still contributes everywhere its pair is complete.
	other := resultFor(t, report, epm.GroupPD, "Time_Center")
	assert.Equal(t, 8, other.N)
}

func TestAnalysisService_SubjectResponsesCoverPrimariesOnly(t *testing.T) {
	report := runService(t, testkit.Generate(testkit.DefaultConfig()))

	perParam := make(map[string]int)
	for _, resp := range report.SubjectResponses {
		perParam[resp.Parameter]++
		assert.Equal(t, epm.DesignationPrimary, epm.DesignationOf(resp.Parameter))
	}
	for _, param := range epm.PrimaryParameters {
		assert.Equal(t, 16, perParam[param], "both groups, 8 subjects each")
	}
}

func TestAnalysisService_SummariesPerConditionAndGroup(t *testing.T) {
	report := runService(t, testkit.Generate(testkit.DefaultConfig()))

	// 6 parameters x 2 groups x 2 conditions.
	require.Len(t, report.Summaries, 24)
	for _, block := range report.Summaries {
		assert.Equal(t, 8, block.Summary.N)
		assert.False(t, math.IsNaN(block.Summary.Mean))
	}
}
