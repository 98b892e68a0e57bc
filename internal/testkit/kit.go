package testkit

import (
	"fmt"
	"math/rand"

	"epmstat/domain/epm"
)

// Config controls synthetic EPM dataset generation.
type Config struct {
	Seed       int64
	PDSubjects int
	COSubjects int
	// OpenArmEffect is added to the Stim values of the primary parameters
	// in the PD group, giving tests a known effect to recover.
	OpenArmEffect float64
	// Noise is the half-width of the uniform jitter on every cell.
	Noise float64
}

// DefaultConfig returns a dataset shape close to the real experiment.
func DefaultConfig() Config {
	return Config{
		Seed:          42,
		PDSubjects:    8,
		COSubjects:    8,
		OpenArmEffect: 25,
		Noise:         5,
	}
}

// parameter baselines roughly matching real EPM magnitudes.
var baselines = map[string]float64{
	"Time_OpenArms":          60,
	"Percent_OpenArms":       20,
	"Time_Center":            45,
	"Entries_OpenArms":       8,
	"Entries_ClosedArms":     12,
	"MeanSpeed_Overall_cm/s": 6,
}

// Parameters returns the generated parameter names in table order.
func Parameters() []string {
	return []string{
		"Time_OpenArms",
		"Percent_OpenArms",
		"Time_Center",
		"Entries_OpenArms",
		"MeanSpeed_Overall_cm/s",
		"Entries_ClosedArms",
	}
}

// Generate builds a complete synthetic EPM table covering primary, secondary
// and locomotion parameters for both groups. Deterministic for a given seed.
func Generate(cfg Config) *epm.Table {
	rng := rand.New(rand.NewSource(cfg.Seed))

	var columns []string
	for i := 1; i <= cfg.PDSubjects; i++ {
		columns = append(columns, fmt.Sprintf("PD_%d_NoStim", i), fmt.Sprintf("PD_%d_Stim", i))
	}
	for i := 1; i <= cfg.COSubjects; i++ {
		columns = append(columns, fmt.Sprintf("CO_%d_NoStim", i), fmt.Sprintf("CO_%d_Stim", i))
	}

	table := &epm.Table{
		Parameters: Parameters(),
		Columns:    columns,
		Cells:      make(map[string]map[string]float64),
	}

	jitter := func() float64 { return (rng.Float64()*2 - 1) * cfg.Noise }

	for _, param := range table.Parameters {
		base := baselines[param]
		cells := make(map[string]float64, len(columns))

		for i := 1; i <= cfg.PDSubjects; i++ {
			off := base + jitter()
			on := base + jitter()
			if epm.DesignationOf(param) == epm.DesignationPrimary {
				on += cfg.OpenArmEffect
			}
			cells[fmt.Sprintf("PD_%d_NoStim", i)] = off
			cells[fmt.Sprintf("PD_%d_Stim", i)] = on
		}
		for i := 1; i <= cfg.COSubjects; i++ {
			cells[fmt.Sprintf("CO_%d_NoStim", i)] = base + jitter()
			cells[fmt.Sprintf("CO_%d_Stim", i)] = base + jitter()
		}

		table.Cells[param] = cells
	}

	return table
}

// BuildTable assembles a table from explicit cells, for tests that need full
// control over missing values and malformed headers.
func BuildTable(parameters, columns []string, cells map[string]map[string]float64) *epm.Table {
	return &epm.Table{Parameters: parameters, Columns: columns, Cells: cells}
}
