package corobench

import (
	"context"
	"fmt"
	"time"

	"github.com/corobench/corobench/model"
	"github.com/corobench/corobench/service/estimator"
	"github.com/corobench/corobench/service/signal"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Signal channel backends.
const (
	SignalFs    = "fs"    // portable filesystem polling (default)
	SignalWatch = "watch" // fsnotify-backed, lower latency, local only
)

// Config is a serialisable representation of the harness configuration. It
// can be populated from JSON or YAML. The zero-value is not useful on its
// own; start from DefaultConfig.
type Config struct {
	Runtime   RuntimeConfig    `json:"runtime" yaml:"runtime"`
	Sweep     SweepConfig      `json:"sweep" yaml:"sweep"`
	Estimator estimator.Config `json:"estimator" yaml:"estimator"`

	// Output is the location of the tabular result set.
	Output string `json:"output" yaml:"output"`

	// Workdir hosts the generated workload and the signal artifacts.
	Workdir string `json:"workdir,omitempty" yaml:"workdir,omitempty"`
}

// RuntimeConfig identifies the target interpreter.
type RuntimeConfig struct {
	// Interpreter is the binary the workload is handed to.
	Interpreter string `json:"interpreter" yaml:"interpreter"`
}

// SweepConfig drives the population sequence and run supervision.
type SweepConfig struct {
	Sequence model.Sequence `json:"sequence" yaml:"sequence"`

	// Repeats is how many times the full sweep runs; values above one enable
	// confidence intervals.
	Repeats int `json:"repeats" yaml:"repeats"`

	// ReadyTimeoutMs bounds the per-run readiness wait.
	ReadyTimeoutMs int `json:"readyTimeoutMs" yaml:"readyTimeoutMs"`

	// PollIntervalMs is the readiness poll cadence of the fs backend.
	PollIntervalMs int `json:"pollIntervalMs" yaml:"pollIntervalMs"`

	// Signal selects the channel backend: SignalFs or SignalWatch.
	Signal string `json:"signal,omitempty" yaml:"signal,omitempty"`
}

// ReadyTimeout returns the readiness bound as a duration.
func (c *SweepConfig) ReadyTimeout() time.Duration {
	return time.Duration(c.ReadyTimeoutMs) * time.Millisecond
}

// PollInterval returns the poll cadence as a duration.
func (c *SweepConfig) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return signal.DefaultPollInterval
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// DefaultConfig returns a Config populated with the defaults: a lua
// interpreter swept over 2^4..2^23 with a 30s readiness bound.
func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{Interpreter: "lua"},
		Sweep: SweepConfig{
			Sequence:       model.Sequence{Base: 2, MinExponent: 4, MaxExponent: 23},
			Repeats:        1,
			ReadyTimeoutMs: 30_000,
			PollIntervalMs: 100,
			Signal:         SignalFs,
		},
		Estimator: estimator.DefaultConfig(),
		Output:    "corobench.csv",
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Runtime.Interpreter == "" {
		return fmt.Errorf("runtime.interpreter cannot be empty")
	}
	if err := c.Sweep.Sequence.Validate(); err != nil {
		return err
	}
	if c.Sweep.Repeats < 1 {
		return fmt.Errorf("sweep.repeats must be >= 1, had: %d", c.Sweep.Repeats)
	}
	if c.Sweep.ReadyTimeoutMs <= 0 {
		return fmt.Errorf("sweep.readyTimeoutMs must be > 0, had: %d", c.Sweep.ReadyTimeoutMs)
	}
	switch c.Sweep.Signal {
	case "", SignalFs, SignalWatch:
	default:
		return fmt.Errorf("sweep.signal must be %q or %q, had: %q", SignalFs, SignalWatch, c.Sweep.Signal)
	}
	if c.Output == "" {
		return fmt.Errorf("output cannot be empty")
	}
	return c.Estimator.Validate()
}

// LoadConfig reads a YAML configuration from the supplied URL and merges it
// over the defaults.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
