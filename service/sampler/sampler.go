// Package sampler reads the resident set size of a live process from the OS
// process-info filesystem.
package sampler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var (
	// ErrProcessGone indicates the sampled process exited before or during
	// the read. Callers must treat this as a failed run, never as a zero
	// sample.
	ErrProcessGone = errors.New("sampler: process gone")

	// ErrSampleParse indicates the process-info data was malformed or did
	// not carry a resident-memory field.
	ErrSampleParse = errors.New("sampler: malformed accounting data")
)

// Service samples resident memory of arbitrary processes by pid.
type Service struct {
	procRoot string
}

// New creates a sampler reading from /proc.
func New() *Service {
	return &Service{procRoot: "/proc"}
}

// NewWithProcRoot creates a sampler rooted at an alternative process-info
// tree. Used by tests to serve canned status files.
func NewWithProcRoot(procRoot string) *Service {
	return &Service{procRoot: procRoot}
}

// Sample returns the resident set size in kilobytes of the process with the
// given pid at the instant of the call.
func (s *Service) Sample(pid int) (int64, error) {
	if pid <= 0 {
		return 0, fmt.Errorf("%w: invalid pid %d", ErrProcessGone, pid)
	}
	statusPath := filepath.Join(s.procRoot, strconv.Itoa(pid), "status")
	data, err := os.ReadFile(statusPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: pid %d", ErrProcessGone, pid)
		}
		return 0, fmt.Errorf("%w: pid %d: %v", ErrSampleParse, pid, err)
	}
	residentKb, err := parseResidentKb(data)
	if err != nil {
		return 0, fmt.Errorf("%w: pid %d: %v", ErrSampleParse, pid, err)
	}
	return residentKb, nil
}
