package config

import (
	"os"
	"strconv"

	"epmstat/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Database DatabaseConfig
}

// DataConfig holds input/output paths
type DataConfig struct {
	InputFile string // EPM measurement workbook (xlsx or csv)
	OutDir    string // directory for supplementary tables and summaries
}

// AnalysisConfig holds the statistical knobs
type AnalysisConfig struct {
	// Alpha is the significance level shared by the normality screen and
	// the Holm correction.
	Alpha float64
	// ResponseEpsilon is the absolute tolerance below which a subject-level
	// delta counts as unchanged. Default 0: any nonzero change is
	// directional.
	ResponseEpsilon float64
}

// DatabaseConfig holds optional result persistence settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			InputFile: getEnvOrDefault("EPM_INPUT_FILE", ""),
			OutDir:    getEnvOrDefault("EPM_OUT_DIR", "./epm_results"),
		},
		Analysis: AnalysisConfig{
			Alpha:           getEnvFloatOrDefault("EPM_ALPHA", 0.05),
			ResponseEpsilon: getEnvFloatOrDefault("EPM_RESPONSE_EPSILON", 0),
		},
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database = DatabaseConfig{URL: url, Enabled: true}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// Validate checks the analysis knobs for sane ranges.
func (c *Config) Validate() error {
	if c.Analysis.Alpha <= 0 || c.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("EPM_ALPHA must be in (0, 1)")
	}
	if c.Analysis.ResponseEpsilon < 0 {
		return errors.ConfigInvalid("EPM_RESPONSE_EPSILON must be >= 0")
	}
	if c.Data.OutDir == "" {
		return errors.ConfigInvalid("EPM_OUT_DIR must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
