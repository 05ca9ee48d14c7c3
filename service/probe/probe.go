// Package probe sanity-checks the target interpreter before a sweep starts:
// it resolves the binary on the local system and captures its version banner.
// A failed probe aborts the sweep; there is no point launching twenty runs
// against a missing runtime.
package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
)

// commandTimeoutMs bounds each probe command; a probe must never hang the
// sweep it guards.
const commandTimeoutMs = 5000

// ErrInterpreterNotFound indicates the target interpreter is not installed
// or not on PATH.
var ErrInterpreterNotFound = errors.New("probe: interpreter not found")

// Info describes a successfully probed interpreter.
type Info struct {
	Interpreter string `json:"interpreter"`
	Location    string `json:"location"`
	Version     string `json:"version,omitempty"`
}

// Service resolves interpreters through a local shell session.
type Service struct{}

// New creates a probe service.
func New() *Service {
	return &Service{}
}

// Probe locates the interpreter binary and captures its version banner.
func (s *Service) Probe(ctx context.Context, interpreter string) (*Info, error) {
	if interpreter == "" {
		return nil, fmt.Errorf("interpreter cannot be empty")
	}
	session, err := gosh.New(ctx, local.New())
	if err != nil {
		return nil, fmt.Errorf("failed to open probe session: %w", err)
	}
	defer session.Close()

	location, status, err := session.Run(ctx, fmt.Sprintf("command -v %s", interpreter), runner.WithTimeout(commandTimeoutMs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", interpreter, err)
	}
	location = strings.TrimSpace(location)
	if status != 0 || location == "" {
		return nil, fmt.Errorf("%w: %s", ErrInterpreterNotFound, interpreter)
	}

	info := &Info{Interpreter: interpreter, Location: location}
	// Version banners land on stderr for some interpreters, hence the
	// redirect; stdin is closed so shells do not sit waiting for input. A
	// failing version flag is not fatal; the banner is informative only.
	banner, status, err := session.Run(ctx, fmt.Sprintf("%s -v </dev/null 2>&1", interpreter), runner.WithTimeout(commandTimeoutMs))
	if err == nil && status == 0 {
		if lines := strings.SplitN(strings.TrimSpace(banner), "\n", 2); len(lines) > 0 {
			info.Version = strings.TrimSpace(lines[0])
		}
	}
	return info, nil
}
