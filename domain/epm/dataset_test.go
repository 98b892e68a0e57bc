package epm

import (
	"testing"

	"epmstat/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumn(t *testing.T) {
	tests := []struct {
		label string
		want  ColumnRef
	}{
		{"PD_1_NoStim", ColumnRef{GroupPD, 1, ConditionNoStim}},
		{"PD1_Stim", ColumnRef{GroupPD, 1, ConditionStim}},
		{"CO_2_NoStim", ColumnRef{GroupControl, 2, ConditionNoStim}},
		{"CO2_Stim", ColumnRef{GroupControl, 2, ConditionStim}},
		{"CO_3_No-Stim", ColumnRef{GroupControl, 3, ConditionNoStim}},
		{"PD 4 Stim", ColumnRef{GroupPD, 4, ConditionStim}},
		{"PD_12_NoStim", ColumnRef{GroupPD, 12, ConditionNoStim}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			ref, err := ParseColumn(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestParseColumn_Malformed(t *testing.T) {
	labels := []string{
		"",
		"Rat_1_Stim",
		"PD_x_Stim",
		"PD_1",
		"PD_1_On",
		"Stim_PD_1",
		"pd_1_stim", // group prefixes are case-sensitive
	}
	for _, label := range labels {
		t.Run(label, func(t *testing.T) {
			_, err := ParseColumn(label)
			assert.ErrorIs(t, err, core.ErrMalformedColumn)
		})
	}
}

func testTable() *Table {
	return &Table{
		Parameters: []string{"Time_OpenArms", "Time_Center"},
		Columns: []string{
			"PD_1_NoStim", "PD_1_Stim",
			"PD_2_NoStim", "PD_2_Stim",
			"CO_1_NoStim", "CO_1_Stim",
		},
		Cells: map[string]map[string]float64{
			"Time_OpenArms": {
				"PD_1_NoStim": 10, "PD_1_Stim": 30,
				"PD_2_NoStim": 20, // PD_2 Stim missing for this parameter
				"CO_1_NoStim": 15, "CO_1_Stim": 16,
			},
			"Time_Center": {
				"PD_1_NoStim": 40, "PD_1_Stim": 35,
				"PD_2_NoStim": 50, "PD_2_Stim": 45,
				"CO_1_NoStim": 42, "CO_1_Stim": 44,
			},
		},
	}
}

func TestDatasetView_PairedSample(t *testing.T) {
	view, err := NewDatasetView(testTable())
	require.NoError(t, err)
	assert.Empty(t, view.BadColumns)

	sample, partial := view.PairedSample("Time_Center", GroupPD)
	require.Equal(t, 2, sample.N())
	assert.Equal(t, []SubjectKey{{GroupPD, 1}, {GroupPD, 2}}, sample.Subjects)
	assert.Equal(t, []float64{40, 50}, sample.Off)
	assert.Equal(t, []float64{35, 45}, sample.On)
	assert.Equal(t, []float64{-5, -5}, sample.Diff)
	assert.Empty(t, partial)
}

func TestDatasetView_PartialSubjectExcludedPerParameter(t *testing.T) {
	view, err := NewDatasetView(testTable())
	require.NoError(t, err)

	// PD_2 lacks the Stim value for Time_OpenArms only.
	sample, partial := view.PairedSample("Time_OpenArms", GroupPD)
	require.Equal(t, 1, sample.N())
	assert.Equal(t, []SubjectKey{{GroupPD, 1}}, sample.Subjects)
	require.Len(t, partial, 1)
	assert.Equal(t, SubjectKey{GroupPD, 2}, partial[0].Subject)
	assert.Equal(t, ConditionStim, partial[0].Missing)

	// The same subject stays in every parameter where both values exist.
	sample, partial = view.PairedSample("Time_Center", GroupPD)
	assert.Equal(t, 2, sample.N())
	assert.Empty(t, partial)
}

func TestDatasetView_GroupSeparation(t *testing.T) {
	view, err := NewDatasetView(testTable())
	require.NoError(t, err)

	sample, _ := view.PairedSample("Time_OpenArms", GroupControl)
	require.Equal(t, 1, sample.N())
	assert.Equal(t, []float64{1}, sample.Diff)
}

func TestDatasetView_MalformedColumnsAreRecordedNotFatal(t *testing.T) {
	table := testTable()
	table.Columns = append(table.Columns, "Rat_9_Stim")

	view, err := NewDatasetView(table)
	require.NoError(t, err)
	require.Len(t, view.BadColumns, 1)
	assert.Equal(t, "Rat_9_Stim", view.BadColumns[0].Label)
}

func TestDatasetView_AllColumnsMalformed(t *testing.T) {
	table := &Table{
		Parameters: []string{"Time_OpenArms"},
		Columns:    []string{"foo", "bar"},
		Cells:      map[string]map[string]float64{"Time_OpenArms": {}},
	}
	_, err := NewDatasetView(table)
	assert.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestDesignationOf(t *testing.T) {
	assert.Equal(t, DesignationPrimary, DesignationOf("Time_OpenArms"))
	assert.Equal(t, DesignationPrimary, DesignationOf("Percent_OpenArms"))
	assert.Equal(t, DesignationSecondary, DesignationOf("Time_Center"))
	assert.Equal(t, DesignationSecondary, DesignationOf("Entries_ClosedArms"))
}

func TestIsLocomotionParameter(t *testing.T) {
	assert.True(t, IsLocomotionParameter("MeanSpeed_Overall_cm/s"))
	assert.True(t, IsLocomotionParameter("Entries_ClosedArms"))
	assert.False(t, IsLocomotionParameter("Time_OpenArms"))
}
