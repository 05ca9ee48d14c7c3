// Package sweep drives the benchmark across a geometric sequence of
// population sizes. Execution is strictly serial: one child lifecycle
// (spawn → ready → sample → terminate) completes fully before the next
// begins, so at most one child process is ever alive and measurements never
// contend for memory.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/corobench/corobench/internal/clock"
	"github.com/corobench/corobench/internal/idgen"
	"github.com/corobench/corobench/model"
	"github.com/corobench/corobench/progress"
	"github.com/corobench/corobench/service/launcher"
	"github.com/corobench/corobench/service/results"
	"github.com/corobench/corobench/service/sampler"
	"github.com/corobench/corobench/service/signal"
	"github.com/corobench/corobench/service/workload"
	"github.com/corobench/corobench/tracing"
)

// DefaultReadyTimeout bounds the readiness wait so that a child crashing
// before it signals cannot hang the sweep.
const DefaultReadyTimeout = 30 * time.Second

// errPersist marks result-persistence failures, which are sweep-fatal unlike
// per-run failures.
var errPersist = errors.New("sweep: result persistence failed")

// Generator produces the workload handed to the child runtime. Implemented
// by workload.Service.
type Generator interface {
	Write(ctx context.Context, URL string, spec *workload.Spec) error
}

// Service orchestrates sweeps.
type Service struct {
	sequence     model.Sequence
	repeats      int
	readyTimeout time.Duration
	workloadPath string

	workload Generator
	launcher *launcher.Service
	channel  signal.Channel
	sampler  *sampler.Service
	store    *results.Store

	// mu serialises Run invocations; the at-most-one-child guarantee must
	// not depend on callers being polite.
	mu sync.Mutex
}

// New creates a sweep controller. The launcher, channel, store and workload
// path are mandatory; the remaining collaborators default.
func New(options ...Option) (*Service, error) {
	s := &Service{
		sequence:     model.Sequence{Base: 2, MinExponent: 4, MaxExponent: 23},
		repeats:      1,
		readyTimeout: DefaultReadyTimeout,
	}
	for _, option := range options {
		option(s)
	}
	if err := s.sequence.Validate(); err != nil {
		return nil, err
	}
	if s.repeats < 1 {
		return nil, fmt.Errorf("repeats must be >= 1, had: %d", s.repeats)
	}
	if s.launcher == nil {
		return nil, fmt.Errorf("launcher is required")
	}
	if s.channel == nil {
		return nil, fmt.Errorf("signal channel is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("result store is required")
	}
	if s.workloadPath == "" {
		return nil, fmt.Errorf("workload path is required")
	}
	if s.workload == nil {
		s.workload = workload.New(nil)
	}
	if s.sampler == nil {
		s.sampler = sampler.New()
	}
	return s, nil
}

// Run executes the configured number of sweep repetitions and returns one
// SweepResult per repetition. Per-run failures leave gaps and the sweep
// continues; persistence failures and context cancellation abort.
func (s *Service) Run(ctx context.Context) ([]*model.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var outcomes []*model.SweepResult
	for repeat := 0; repeat < s.repeats; repeat++ {
		result, err := s.runSweep(ctx)
		if result != nil {
			outcomes = append(outcomes, result)
		}
		if err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

// runSweep walks the population sequence once, carrying sweep progress in an
// explicit result accumulator.
func (s *Service) runSweep(ctx context.Context) (*model.SweepResult, error) {
	populations := s.sequence.Populations()
	result := &model.SweepResult{SweepID: idgen.New(), Requested: len(populations)}

	tracker, _ := progress.FromContext(ctx)
	tracker.Update(progress.Delta{Total: len(populations)})

	ctx, span := tracing.StartSpan(ctx, "sweep")
	span.WithAttributes(map[string]string{"sweep.id": result.SweepID})
	var sweepErr error
	defer func() { tracing.EndSpan(span, sweepErr) }()

	for _, population := range populations {
		tracker.SetPopulation(population)
		tracker.Update(progress.Delta{Running: 1})

		record, err := s.runOne(ctx, population)
		if err != nil {
			tracker.Update(progress.Delta{Running: -1, Failed: 1})
			if ctx.Err() != nil {
				sweepErr = ctx.Err()
				return result, sweepErr
			}
			if errors.Is(err, errPersist) {
				sweepErr = err
				return result, sweepErr
			}
			log.Printf("run failed for N=%d: %v", population, err)
			result.Failed = append(result.Failed, population)
			continue
		}
		tracker.Update(progress.Delta{Running: -1, Completed: 1})
		result.Append(*record)
	}
	return result, nil
}

// runOne performs a single run lifecycle. Whatever happens after a
// successful spawn, the child is terminated and reaped before runOne
// returns; cancellation never leaks a runaway process.
func (s *Service) runOne(ctx context.Context, population int) (record *model.RunRecord, err error) {
	runID := idgen.New()
	ctx, span := tracing.StartSpan(ctx, "run")
	span.WithAttributes(map[string]string{
		"run.id":         runID,
		"run.population": strconv.Itoa(population),
	})
	defer func() { tracing.EndSpan(span, err) }()

	// Stale artifacts from a previous run must go before the child is
	// spawned; the reverse order can observe an old marker and sample the
	// wrong process.
	if err = s.channel.Clear(ctx); err != nil {
		return nil, err
	}
	spec := &workload.Spec{
		Population: population,
		PidURL:     s.channel.PidPath(),
		ReadyURL:   s.channel.ReadyPath(),
	}
	if err = s.workload.Write(ctx, s.workloadPath, spec); err != nil {
		return nil, err
	}

	handle, err := s.launcher.Start(ctx, s.workloadPath, population)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Terminate with a fresh context so a cancelled sweep still reaps
		// the current child before the orchestrator exits.
		if terminateErr := s.launcher.Terminate(context.Background(), handle); terminateErr != nil && err == nil {
			err = terminateErr
		}
	}()

	sig, err := s.channel.Await(ctx, s.readyTimeout)
	if err != nil {
		return nil, err
	}
	if sig.Pid != handle.Pid() {
		log.Printf("pid record %d disagrees with spawned pid %d for N=%d", sig.Pid, handle.Pid(), population)
	}

	residentKb, err := s.sampler.Sample(sig.Pid)
	if err != nil {
		return nil, err
	}

	record = &model.RunRecord{
		RunID:      runID,
		Population: population,
		ResidentKb: residentKb,
		Recorded:   clock.Now(),
	}
	if appendErr := s.store.Append(ctx, *record); appendErr != nil {
		return nil, fmt.Errorf("%w: %v", errPersist, appendErr)
	}
	return record, nil
}
