// Package progress provides a lightweight tracker that keeps aggregated run
// counters (runs total, completed, failed, …) for a single sweep. The
// tracker instance lives in the sweep context – every component that
// receives the context can atomically update the counters via the Delta
// helper without requiring a global registry.

package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the sweep
// controller. The fields are signed and therefore can be either positive
// (increment) or negative (decrement).
type Delta struct {
	Total     int
	Completed int
	Failed    int
	Running   int
}

// Snapshot is a point-in-time view of a tracker. It carries no lock and can
// be copied freely; callbacks and read-only inspection always work on a
// Snapshot, never on the tracker itself.
type Snapshot struct {
	// Identification – informative only, filled when the sweep starts.
	SweepID     string
	Interpreter string
	StartedAt   time.Time

	// Counters – modified via Update().
	TotalRuns     int
	CompletedRuns int
	FailedRuns    int
	RunningRuns   int

	// Population is the size currently in flight; updated via SetPopulation.
	Population int
}

// Progress keeps aggregated run counters for a sweep. It is safe for
// concurrent use.
type Progress struct {
	mu       sync.Mutex
	state    Snapshot
	onChange func(Snapshot)
}

// Update applies the supplied delta to the tracker. If an onChange callback
// has been registered it will be invoked with a snapshot of the updated
// tracker outside the critical section so that the callback can perform slow
// operations (e.g. terminal output) without blocking the controller.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.mu.Lock()

	p.state.TotalRuns += d.Total
	p.state.CompletedRuns += d.Completed
	p.state.FailedRuns += d.Failed
	p.state.RunningRuns += d.Running

	snapshot := p.state
	cb := p.onChange

	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// SetPopulation records the population size currently in flight.
func (p *Progress) SetPopulation(population int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.state.Population = population
	snapshot := p.state
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker state suitable for read-only
// inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// OnChange registers a callback that is invoked after every successful
// Update. Passing nil disables the callback. Only one callback can be
// active; subsequent calls overwrite the previous value.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a new Progress tracker, embeds it in a derived
// context and returns both. The caller may optionally pass an onChange
// callback that will be invoked after every counter update.
func WithNewTracker(ctx context.Context, sweepID, interpreter string, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		state: Snapshot{
			SweepID:     sweepID,
			Interpreter: interpreter,
			StartedAt:   time.Now(),
		},
		onChange: onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the Progress tracker from ctx. The second return
// value is false when the context carries no tracker.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// GetSnapshot is a convenience wrapper that combines FromContext and
// Snapshot. The boolean return value is false when the context does not
// carry a tracker.
func GetSnapshot(ctx context.Context) (Snapshot, bool) {
	if tr, ok := FromContext(ctx); ok {
		return tr.Snapshot(), true
	}
	return Snapshot{}, false
}
