package corobench

import (
	"github.com/corobench/corobench/service/probe"
	"github.com/corobench/corobench/service/sampler"
	"github.com/corobench/corobench/service/signal"
	"github.com/corobench/corobench/service/sweep"
	"github.com/corobench/corobench/tracing"
	"github.com/viant/afs"
)

// Option customises the Service.
type Option func(s *Service)

// WithConfig sets the harness configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithFs sets the file service used for workload, signal and result IO.
func WithFs(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithSignalChannel sets the readiness channel, overriding the backend
// selected by the configuration.
func WithSignalChannel(channel signal.Channel) Option {
	return func(s *Service) { s.channel = channel }
}

// WithProbe sets the interpreter probe.
func WithProbe(service *probe.Service) Option {
	return func(s *Service) { s.probe = service }
}

// WithSampler sets the memory sampler.
func WithSampler(service *sampler.Service) Option {
	return func(s *Service) { s.sampler = service }
}

// WithWorkloadGenerator sets the workload generator, overriding the default
// script renderer.
func WithWorkloadGenerator(generator sweep.Generator) Option {
	return func(s *Service) { s.workload = generator }
}

// WithTracing configures OpenTelemetry tracing for the harness. If
// outputFile is empty the stdout exporter is used; otherwise traces are
// written to the supplied file path. Safe to call multiple times – the first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}
