package corobench

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/corobench/corobench/model"
	"github.com/corobench/corobench/service/estimator"
	"github.com/corobench/corobench/service/launcher"
	"github.com/corobench/corobench/service/probe"
	"github.com/corobench/corobench/service/results"
	"github.com/corobench/corobench/service/sampler"
	"github.com/corobench/corobench/service/signal"
	"github.com/corobench/corobench/service/sweep"
	"github.com/corobench/corobench/service/workload"
	"github.com/viant/afs"
)

// Service is the high-level façade of the harness. It wires the workload
// generator, launcher, signal channel, sampler, sweep controller and
// estimator according to its Config.
type Service struct {
	config   *Config
	fs       afs.Service
	channel  signal.Channel
	probe    *probe.Service
	sampler  *sampler.Service
	workload sweep.Generator
}

// New creates a Service customised by the supplied options.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, option := range options {
		option(s)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.config.Workdir == "" {
		s.config.Workdir = filepath.Join(".", ".corobench")
	}
	// The workdir doubles as the child's working directory and as the prefix
	// of the artifact paths baked into the workload, so a relative value would
	// resolve against the child's own cwd and point nowhere. Pin it down here.
	workdir, err := filepath.Abs(s.config.Workdir)
	if err != nil {
		return fmt.Errorf("failed to resolve workdir %s: %w", s.config.Workdir, err)
	}
	s.config.Workdir = workdir
	if s.probe == nil {
		s.probe = probe.New()
	}
	if s.sampler == nil {
		s.sampler = sampler.New()
	}
	if s.workload == nil {
		s.workload = workload.New(s.fs)
	}
	if s.channel == nil {
		channel, err := s.newChannel()
		if err != nil {
			return err
		}
		s.channel = channel
	}
	return nil
}

func (s *Service) newChannel() (signal.Channel, error) {
	signalDir := filepath.Join(s.config.Workdir, "signals")
	switch s.config.Sweep.Signal {
	case SignalWatch:
		return signal.NewWatchChannel(signalDir)
	default:
		return signal.NewFsChannel(s.fs, signalDir, s.config.Sweep.PollInterval())
	}
}

// Config returns the effective configuration.
func (s *Service) Config() *Config {
	return s.config
}

// Sweep probes the target interpreter and executes the configured sweep
// repetitions, returning one result per repetition. A sweep that produced at
// least one sample is a success even when individual runs failed.
func (s *Service) Sweep(ctx context.Context) ([]*model.SweepResult, error) {
	info, err := s.probe.Probe(ctx, s.config.Runtime.Interpreter)
	if err != nil {
		return nil, err
	}
	log.Printf("target runtime: %s (%s)", info.Location, info.Version)

	store, err := results.New(s.fs, s.config.Output)
	if err != nil {
		return nil, err
	}
	controller, err := sweep.New(
		sweep.WithSequence(s.config.Sweep.Sequence),
		sweep.WithRepeats(s.config.Sweep.Repeats),
		sweep.WithReadyTimeout(s.config.Sweep.ReadyTimeout()),
		sweep.WithWorkloadPath(filepath.Join(s.config.Workdir, "workload.lua")),
		sweep.WithWorkload(s.workload),
		sweep.WithLauncher(launcher.New(s.config.Runtime.Interpreter, s.config.Workdir)),
		sweep.WithChannel(s.channel),
		sweep.WithSampler(s.sampler),
		sweep.WithStore(store),
	)
	if err != nil {
		return nil, err
	}
	return controller.Run(ctx)
}

// Estimate computes the overhead report over the supplied sweep results.
func (s *Service) Estimate(outcomes []*model.SweepResult) (*estimator.Report, error) {
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("no sweep results to estimate from")
	}
	repeats := make([][]model.RunRecord, 0, len(outcomes))
	requested := 0
	for _, outcome := range outcomes {
		repeats = append(repeats, outcome.Records)
		if outcome.Requested > requested {
			requested = outcome.Requested
		}
	}
	return estimator.EstimateRepeats(repeats, requested, s.config.Estimator)
}

// EstimateStored loads a previously persisted result set and computes the
// overhead report over it.
func (s *Service) EstimateStored(ctx context.Context, URL string) (*estimator.Report, error) {
	records, err := results.Load(ctx, s.fs, URL)
	if err != nil {
		return nil, err
	}
	return estimator.Estimate(records, len(records), s.config.Estimator)
}
