package epm

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"epmstat/domain/core"
)

// Table is the loaded worksheet: one row per behavioral parameter, one column
// per subject-condition label. Missing cells are simply absent from the map.
type Table struct {
	Parameters []string                      // row order as loaded
	Columns    []string                      // header order as loaded
	Cells      map[string]map[string]float64 // parameter -> column label -> value
}

// Value returns the cell for (parameter, column) and whether it was present.
func (t *Table) Value(parameter, column string) (float64, bool) {
	row, ok := t.Cells[parameter]
	if !ok {
		return 0, false
	}
	v, ok := row[column]
	return v, ok
}

// columnPattern matches a normalized label: group prefix, subject index,
// condition, with optional underscores between the parts. NoStim must come
// before Stim in the alternation since the former contains the latter.
var columnPattern = regexp.MustCompile(`^(PD|CO)_*([0-9]+)_*(NoStim|Stim)$`)

// ParseColumn resolves a subject-condition column label into a tagged
// (group, subject, condition) record. Spaces and dashes are stripped first,
// so "PD_1_NoStim", "PD1_Stim", "CO_2_No-Stim" and "CO2 Stim" all parse.
// Anything else fails with core.ErrMalformedColumn.
func ParseColumn(label string) (ColumnRef, error) {
	normalized := strings.NewReplacer(" ", "", "-", "").Replace(label)

	m := columnPattern.FindStringSubmatch(normalized)
	if m == nil {
		return ColumnRef{}, core.NewMalformedColumnError(label, "want {PD|CO}_{index}_{NoStim|Stim}")
	}

	index, err := strconv.Atoi(m[2])
	if err != nil {
		return ColumnRef{}, core.NewMalformedColumnError(label, "subject index is not an integer")
	}

	group := GroupPD
	if m[1] == "CO" {
		group = GroupControl
	}

	condition := ConditionStim
	if m[3] == "NoStim" {
		condition = ConditionNoStim
	}

	return ColumnRef{Group: group, Subject: index, Condition: condition}, nil
}

// DatasetView restructures the loaded table into paired within-subject
// observations per group. It owns the raw observations; every derived entity
// (PairedSample, TestResult, SubjectResponse) is recomputed from it.
type DatasetView struct {
	table   *Table
	columns map[string]ColumnRef // parseable label -> parsed ref

	// BadColumns lists labels the parser rejected. Rejection is loud but
	// per-column: the rest of the run proceeds without them.
	BadColumns []ColumnNote
}

// NewDatasetView parses all column labels of the table. It fails only when
// not a single column parses; individual malformed labels are recorded in
// BadColumns and skipped.
func NewDatasetView(t *Table) (*DatasetView, error) {
	v := &DatasetView{
		table:   t,
		columns: make(map[string]ColumnRef, len(t.Columns)),
	}

	for _, label := range t.Columns {
		ref, err := ParseColumn(label)
		if err != nil {
			v.BadColumns = append(v.BadColumns, ColumnNote{Label: label, Reason: err.Error()})
			continue
		}
		v.columns[label] = ref
	}

	if len(v.columns) == 0 {
		return nil, fmt.Errorf("%w: %d columns, none matched {GROUP}_{INDEX}_{CONDITION}", core.ErrEmptyTable, len(t.Columns))
	}
	return v, nil
}

// Parameters returns parameter names in table row order.
func (v *DatasetView) Parameters() []string {
	return v.table.Parameters
}

// PairedSample assembles the ordered (off, on, diff) sequences for one
// (parameter, group) across all subjects with both conditions present.
// Subjects missing one condition are returned as partial notes; they stay in
// every other parameter where both values exist.
func (v *DatasetView) PairedSample(parameter string, group Group) (PairedSample, []PartialSubject) {
	type cell struct {
		value float64
		ok    bool
	}
	off := make(map[int]cell)
	on := make(map[int]cell)

	for label, ref := range v.columns {
		if ref.Group != group {
			continue
		}
		value, ok := v.table.Value(parameter, label)
		if !ok {
			continue
		}
		if ref.Condition == ConditionNoStim {
			off[ref.Subject] = cell{value, true}
		} else {
			on[ref.Subject] = cell{value, true}
		}
	}

	indices := make([]int, 0, len(off)+len(on))
	seen := make(map[int]bool)
	for i := range off {
		if !seen[i] {
			indices = append(indices, i)
			seen[i] = true
		}
	}
	for i := range on {
		if !seen[i] {
			indices = append(indices, i)
			seen[i] = true
		}
	}
	sort.Ints(indices)

	sample := PairedSample{Parameter: parameter, Group: group}
	var partial []PartialSubject

	for _, i := range indices {
		key := SubjectKey{Group: group, Index: i}
		o, hasOff := off[i]
		n, hasOn := on[i]

		switch {
		case hasOff && hasOn:
			sample.Subjects = append(sample.Subjects, key)
			sample.Off = append(sample.Off, o.value)
			sample.On = append(sample.On, n.value)
			sample.Diff = append(sample.Diff, n.value-o.value)
		case hasOff:
			partial = append(partial, PartialSubject{Parameter: parameter, Subject: key, Missing: ConditionStim})
		default:
			partial = append(partial, PartialSubject{Parameter: parameter, Subject: key, Missing: ConditionNoStim})
		}
	}

	return sample, partial
}
