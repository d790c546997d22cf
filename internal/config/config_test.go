package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statkit/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.05, c.Analysis.Alpha)
	assert.Equal(t, 1e-10, c.GoalSeek.Precision)
	assert.Equal(t, 4, c.Batch.Concurrency)
	assert.Equal(t, "Analysis", c.Analysis.OutputSheet)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statkit.yaml")
	body := "analysis:\n  alpha: 0.01\n  formulas: true\nbatch:\n  concurrency: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("STATKIT_BATCH_CONCURRENCY", "8")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.01, c.Analysis.Alpha)
	assert.True(t, c.Analysis.Formulas)
	assert.Equal(t, 8, c.Batch.Concurrency)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.GoalSeek.XMin = 5
	c.GoalSeek.XMax = 1
	err := Validate(c)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	c = Default()
	c.Analysis.Alpha = 1.5
	assert.Error(t, Validate(c))

	assert.NoError(t, Validate(Default()))
}
