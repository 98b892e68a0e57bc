package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"EPM_INPUT_FILE", "EPM_OUT_DIR", "EPM_ALPHA", "EPM_RESPONSE_EPSILON", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./epm_results", cfg.Data.OutDir)
	assert.InDelta(t, 0.05, cfg.Analysis.Alpha, 1e-12)
	assert.Zero(t, cfg.Analysis.ResponseEpsilon)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("EPM_INPUT_FILE", "/data/epm.xlsx")
	t.Setenv("EPM_OUT_DIR", "/tmp/out")
	t.Setenv("EPM_ALPHA", "0.01")
	t.Setenv("EPM_RESPONSE_EPSILON", "0.5")
	t.Setenv("DATABASE_URL", "postgres://localhost/epm")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/epm.xlsx", cfg.Data.InputFile)
	assert.Equal(t, "/tmp/out", cfg.Data.OutDir)
	assert.InDelta(t, 0.01, cfg.Analysis.Alpha, 1e-12)
	assert.InDelta(t, 0.5, cfg.Analysis.ResponseEpsilon, 1e-12)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres://localhost/epm", cfg.Database.URL)
}

func TestLoad_UnparsableFloatFallsBack(t *testing.T) {
	t.Setenv("EPM_ALPHA", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.05, cfg.Analysis.Alpha, 1e-12)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Data:     DataConfig{OutDir: "./out"},
		Analysis: AnalysisConfig{Alpha: 0.05},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Analysis.Alpha = 0
	assert.Error(t, cfg.Validate())
	cfg.Analysis.Alpha = 1
	assert.Error(t, cfg.Validate())
	cfg.Analysis.Alpha = 0.05

	cfg.Analysis.ResponseEpsilon = -1
	assert.Error(t, cfg.Validate())
	cfg.Analysis.ResponseEpsilon = 0

	cfg.Data.OutDir = ""
	assert.Error(t, cfg.Validate())
}
