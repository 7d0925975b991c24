package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.8, cfg.Confidence)
	assert.Equal(t, 1.0, cfg.SimilarityThreshold)
	assert.Equal(t, 10.0, cfg.ChangeThreshold)
	assert.Equal(t, 30*time.Millisecond, cfg.TickDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.ErrorBackoff())
	assert.Equal(t, 500*time.Millisecond, cfg.HighlightDuration())
	assert.Equal(t, 150.0, cfg.BinaryThreshold)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, Default().ModelPath, cfg.ModelPath)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := Default()
	cfg.SetPath(path)
	cfg.ModelPath = "/opt/models/quiz.onnx"
	cfg.Display = 1
	cfg.Debug = true
	cfg.DebugDir = "/tmp/dumps"
	cfg.ClassNames = []string{"A", "B", "C", "D", "E", "REFERENSI", "SOAL"}
	require.NoError(t, cfg.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ModelPath, loaded.ModelPath)
	assert.Equal(t, 1, loaded.Display)
	assert.True(t, loaded.Debug)
	assert.Equal(t, "/tmp/dumps", loaded.DebugDir)
	assert.Equal(t, cfg.ClassNames, loaded.ClassNames)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"change_threshold": 12.5}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12.5, cfg.ChangeThreshold)
	assert.Equal(t, 30, cfg.TickDelayMS)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	neg := filepath.Join(dir, "neg.json")
	require.NoError(t, os.WriteFile(neg, []byte(`{"tick_delay_ms": 0, "confidence": 2}`), 0o644))
	_, err = Load(neg)
	assert.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Confidence = 0
	cfg.MaxArea = 10
	cfg.Display = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}
