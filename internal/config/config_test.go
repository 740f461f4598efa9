package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultThresholds(t *testing.T) {
	c := Default()
	assert.Equal(t, 0.60, c.Coverage.MinRatio)
	assert.Equal(t, 0.80, c.Coverage.WarningRatio)
	assert.Equal(t, 5, c.Testability.MaxIssues)
	assert.Equal(t, 3, c.Grounding.MaxIssues)
	assert.Equal(t, 0.70, c.Dedup.MinRatio)
	assert.Equal(t, 0.75, c.Dedup.SimilarityThreshold)
	assert.Equal(t, 5, c.Hallucination.MaxFlags)
	assert.Equal(t, 0.50, c.Confidence.Floor)
	assert.Equal(t, 0.99, c.Confidence.Ceiling)
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		c, err := Preset(name)
		require.NoError(t, err, name)
		require.NoError(t, c.Validate(), name)
	}

	strict, err := Preset("strict")
	require.NoError(t, err)
	lenient, err := Preset("lenient")
	require.NoError(t, err)
	assert.Greater(t, strict.Coverage.MinRatio, lenient.Coverage.MinRatio)
	assert.Less(t, strict.Testability.MaxIssues, lenient.Testability.MaxIssues)
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("paranoid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown preset")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
coverage:
  min_ratio: 0.50
  warning_ratio: 0.70
testability:
  max_issues: 8
`)
	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.50, c.Coverage.MinRatio)
	assert.Equal(t, 8, c.Testability.MaxIssues)
	// Untouched sections keep their defaults.
	assert.Equal(t, 3, c.Grounding.MaxIssues)
	assert.Equal(t, 0.70, c.Hallucination.FirstPass.High)
}

func TestLoadFileRejectsBadRanges(t *testing.T) {
	path := writeConfig(t, `
coverage:
  min_ratio: 1.50
`)
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileRejectsWarnBelowMin(t *testing.T) {
	path := writeConfig(t, `
coverage:
  min_ratio: 0.80
  warning_ratio: 0.60
`)
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warning_ratio")
}

func TestLoadFileRejectsOverweightedScoring(t *testing.T) {
	path := writeConfig(t, `
grounding:
  weights:
    lexical: 0.90
    phrase: 0.30
    consistency: 0.20
    source_match: 0.10
`)
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grounding weights")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
