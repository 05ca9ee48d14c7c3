package corobench

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, "lua", config.Runtime.Interpreter)
	assert.Equal(t, []int{16}, config.Sweep.Sequence.Populations()[:1])
	assert.Equal(t, 30*time.Second, config.Sweep.ReadyTimeout())
	assert.Equal(t, 100*time.Millisecond, config.Sweep.PollInterval())
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty interpreter", mutate: func(c *Config) { c.Runtime.Interpreter = "" }},
		{name: "bad sequence", mutate: func(c *Config) { c.Sweep.Sequence.Base = 1 }},
		{name: "zero repeats", mutate: func(c *Config) { c.Sweep.Repeats = 0 }},
		{name: "zero timeout", mutate: func(c *Config) { c.Sweep.ReadyTimeoutMs = 0 }},
		{name: "unknown signal backend", mutate: func(c *Config) { c.Sweep.Signal = "carrier-pigeon" }},
		{name: "empty output", mutate: func(c *Config) { c.Output = "" }},
		{name: "bad confidence", mutate: func(c *Config) { c.Estimator.ConfidenceLevel = 0.5 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	content := `
runtime:
  interpreter: luajit
sweep:
  sequence:
    base: 2
    minExponent: 5
    maxExponent: 10
  repeats: 3
  readyTimeoutMs: 5000
  signal: watch
output: /tmp/out.csv
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	config, err := LoadConfig(context.Background(), afs.New(), configPath)
	require.NoError(t, err)
	assert.Equal(t, "luajit", config.Runtime.Interpreter)
	assert.Equal(t, 3, config.Sweep.Repeats)
	assert.Equal(t, SignalWatch, config.Sweep.Signal)
	assert.Equal(t, []int{32, 64, 128, 256, 512, 1024}, config.Sweep.Sequence.Populations())
	// Unset sections inherit defaults.
	assert.Equal(t, 0.99, config.Estimator.ConfidenceLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("runtime:\n  interpreter: \"\"\n"), 0o644))

	_, err := LoadConfig(context.Background(), afs.New(), configPath)
	assert.Error(t, err)

	_, err = LoadConfig(context.Background(), afs.New(), filepath.Join(tempDir, "missing.yaml"))
	assert.Error(t, err)
}
