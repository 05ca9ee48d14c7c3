// Package launcher starts the target interpreter as a child process and
// supervises its lifetime: spawn, exit observation and guaranteed reaping on
// terminate.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// ErrSpawn indicates the target interpreter could not be started or exited
// immediately with a nonzero status.
var ErrSpawn = errors.New("launcher: spawn failed")

const (
	// earlyExitWindow is how long Start watches a fresh child for an
	// immediate nonzero exit before declaring the spawn successful.
	earlyExitWindow = 200 * time.Millisecond

	// killGrace is how long Terminate waits after SIGTERM before escalating
	// to SIGKILL.
	killGrace = 3 * time.Second
)

// Handle references a live child process. It is valid from Start until
// Terminate returns; a handle must never outlive its run.
type Handle struct {
	pid     int
	process *os.Process
	done    chan struct{}
	waitErr error
}

// Pid returns the child's process identifier.
func (h *Handle) Pid() int { return h.pid }

// Exited reports whether the child has already been reaped.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Service spawns interpreter child processes.
type Service struct {
	interpreter string
	workdir     string
}

// New creates a launcher for the given interpreter binary. workdir is the
// child's working directory; empty inherits the orchestrator's.
func New(interpreter, workdir string) *Service {
	return &Service{interpreter: interpreter, workdir: workdir}
}

// Start spawns `<interpreter> <workloadPath> <N>` and returns a handle to the
// live child. The child's exit is reaped by a dedicated goroutine, so a
// handle never leaves a zombie behind regardless of how the run ends.
func (s *Service) Start(ctx context.Context, workloadPath string, population int) (*Handle, error) {
	if population < 1 {
		return nil, fmt.Errorf("%w: population must be >= 1, had: %d", ErrSpawn, population)
	}
	cmd := exec.Command(s.interpreter, workloadPath, strconv.Itoa(population))
	cmd.Dir = s.workdir
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, s.interpreter, err)
	}

	handle := &Handle{
		pid:     cmd.Process.Pid,
		process: cmd.Process,
		done:    make(chan struct{}),
	}
	go func() {
		handle.waitErr = cmd.Wait()
		close(handle.done)
	}()

	// A missing interpreter fails in Start above; a present interpreter that
	// rejects the workload usually dies within milliseconds. Catch that here
	// so the caller does not wait out a readiness timeout for nothing.
	select {
	case <-handle.done:
		if handle.waitErr != nil {
			return nil, fmt.Errorf("%w: %s exited immediately: %v", ErrSpawn, s.interpreter, handle.waitErr)
		}
		return nil, fmt.Errorf("%w: %s exited immediately with status 0", ErrSpawn, s.interpreter)
	case <-time.After(earlyExitWindow):
	case <-ctx.Done():
		_ = handle.process.Kill()
		<-handle.done
		return nil, ctx.Err()
	}
	return handle, nil
}

// Terminate stops the child referenced by handle and blocks until the OS has
// reaped it. Terminating an already-exited child is a no-op. After Terminate
// returns the handle is invalid and no process or zombie remains.
func (s *Service) Terminate(ctx context.Context, handle *Handle) error {
	if handle == nil {
		return nil
	}
	if handle.Exited() {
		return nil
	}
	if err := handle.process.Signal(unix.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			<-handle.done
			return nil
		}
		return fmt.Errorf("failed to signal pid %d: %w", handle.pid, err)
	}
	select {
	case <-handle.done:
		return nil
	case <-time.After(killGrace):
	case <-ctx.Done():
	}
	// SIGTERM was ignored or the caller gave up waiting; force the exit and
	// still wait for the reap so no zombie survives this call.
	if err := handle.process.Signal(unix.SIGKILL); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill pid %d: %w", handle.pid, err)
	}
	<-handle.done
	return nil
}
