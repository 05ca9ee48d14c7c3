// Package signal implements the external signal channel between the
// orchestrator and the child runtime. The child creates two artifacts once
// its population is allocated: a record holding its own pid, then a readiness
// marker. The orchestrator observes the marker, consumes the pid and clears
// both before the next run.
package signal

import (
	"context"
	"errors"
	"time"
)

// ErrReadinessTimeout indicates the child never signalled readiness within
// the configured bound.
var ErrReadinessTimeout = errors.New("signal: readiness timeout")

// Signal carries what the child handed over once ready.
type Signal struct {
	// Pid is the child's self-reported process identifier, consumed from the
	// process-identity artifact.
	Pid int
}

// Channel abstracts the create/observe/clear contract of the readiness
// hand-off. The child creates the artifacts; the orchestrator observes and
// clears them. Implementations differ only in how observation is backed.
type Channel interface {
	// Clear removes any stale artifacts left by a previous run. It must be
	// called before the child is spawned; clearing after spawn races the
	// child's own writes.
	Clear(ctx context.Context) error

	// Await blocks until the readiness marker appears, then returns the
	// signal. It fails with ErrReadinessTimeout when the bound elapses first.
	Await(ctx context.Context, timeout time.Duration) (*Signal, error)

	// ReadyPath returns the location the child must create the readiness
	// marker at.
	ReadyPath() string

	// PidPath returns the location the child must write its pid record to.
	PidPath() string
}
