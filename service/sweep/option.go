package sweep

import (
	"time"

	"github.com/corobench/corobench/model"
	"github.com/corobench/corobench/service/launcher"
	"github.com/corobench/corobench/service/results"
	"github.com/corobench/corobench/service/sampler"
	"github.com/corobench/corobench/service/signal"
)

// Option customises a sweep Service.
type Option func(s *Service)

// WithSequence sets the geometric population sequence.
func WithSequence(sequence model.Sequence) Option {
	return func(s *Service) { s.sequence = sequence }
}

// WithRepeats sets how many times the full sweep runs.
func WithRepeats(repeats int) Option {
	return func(s *Service) { s.repeats = repeats }
}

// WithReadyTimeout bounds the per-run readiness wait.
func WithReadyTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.readyTimeout = timeout
		}
	}
}

// WithWorkloadPath sets where the generated workload script is written.
func WithWorkloadPath(path string) Option {
	return func(s *Service) { s.workloadPath = path }
}

// WithWorkload sets the workload generator.
func WithWorkload(generator Generator) Option {
	return func(s *Service) { s.workload = generator }
}

// WithLauncher sets the process launcher.
func WithLauncher(service *launcher.Service) Option {
	return func(s *Service) { s.launcher = service }
}

// WithChannel sets the readiness signal channel.
func WithChannel(channel signal.Channel) Option {
	return func(s *Service) { s.channel = channel }
}

// WithSampler sets the memory sampler.
func WithSampler(service *sampler.Service) Option {
	return func(s *Service) { s.sampler = service }
}

// WithStore sets the result store.
func WithStore(store *results.Store) Option {
	return func(s *Service) { s.store = store }
}
