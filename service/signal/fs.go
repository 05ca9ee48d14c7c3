package signal

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

const (
	readyName = "ready"
	pidName   = "pid"

	// DefaultPollInterval is deliberately coarse; run durations are seconds,
	// not microseconds, so low-frequency polling costs nothing measurable.
	DefaultPollInterval = 100 * time.Millisecond
)

// FsChannel observes the readiness marker by polling the filesystem at a
// fixed interval. It is the portable default backend.
type FsChannel struct {
	fs       afs.Service
	baseDir  string
	interval time.Duration
}

// NewFsChannel creates a polling channel rooted at baseDir. A non-positive
// interval falls back to DefaultPollInterval.
func NewFsChannel(fs afs.Service, baseDir string, interval time.Duration) (*FsChannel, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("signal base directory cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	channel := &FsChannel{fs: fs, baseDir: baseDir, interval: interval}
	ctx := context.Background()
	if exists, _ := fs.Exists(ctx, baseDir); !exists {
		if err := fs.Create(ctx, baseDir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create signal directory %s: %w", baseDir, err)
		}
	}
	return channel, nil
}

// ReadyPath returns the readiness marker location.
func (c *FsChannel) ReadyPath() string { return path.Join(c.baseDir, readyName) }

// PidPath returns the pid record location.
func (c *FsChannel) PidPath() string { return path.Join(c.baseDir, pidName) }

// Clear removes both artifacts when present.
func (c *FsChannel) Clear(ctx context.Context) error {
	for _, location := range []string{c.ReadyPath(), c.PidPath()} {
		exists, err := c.fs.Exists(ctx, location)
		if err != nil {
			return fmt.Errorf("failed to check signal artifact %s: %w", location, err)
		}
		if !exists {
			continue
		}
		if err := c.fs.Delete(ctx, location); err != nil {
			return fmt.Errorf("failed to clear signal artifact %s: %w", location, err)
		}
	}
	return nil
}

// Await polls for the readiness marker until it appears or timeout elapses.
func (c *FsChannel) Await(ctx context.Context, timeout time.Duration) (*Signal, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		exists, err := c.fs.Exists(ctx, c.ReadyPath())
		if err != nil {
			return nil, fmt.Errorf("failed to poll readiness marker: %w", err)
		}
		if exists {
			return c.consumePid(ctx)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: no signal after %s", ErrReadinessTimeout, timeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *FsChannel) consumePid(ctx context.Context) (*Signal, error) {
	data, err := c.fs.DownloadWithURL(ctx, c.PidPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read pid record %s: %w", c.PidPath(), err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return nil, fmt.Errorf("malformed pid record %s: %q", c.PidPath(), data)
	}
	return &Signal{Pid: pid}, nil
}

var _ Channel = (*FsChannel)(nil)
