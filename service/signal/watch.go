package signal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchChannel observes the readiness marker through filesystem
// notifications instead of polling, trading portability for lower latency.
// It only supports local directories.
type WatchChannel struct {
	baseDir string
}

// NewWatchChannel creates a notification-backed channel rooted at baseDir.
func NewWatchChannel(baseDir string) (*WatchChannel, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("signal base directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create signal directory %s: %w", baseDir, err)
	}
	return &WatchChannel{baseDir: baseDir}, nil
}

// ReadyPath returns the readiness marker location.
func (c *WatchChannel) ReadyPath() string { return filepath.Join(c.baseDir, readyName) }

// PidPath returns the pid record location.
func (c *WatchChannel) PidPath() string { return filepath.Join(c.baseDir, pidName) }

// Clear removes both artifacts when present.
func (c *WatchChannel) Clear(_ context.Context) error {
	for _, location := range []string{c.ReadyPath(), c.PidPath()} {
		if err := os.Remove(location); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear signal artifact %s: %w", location, err)
		}
	}
	return nil
}

// Await blocks until the readiness marker is created or timeout elapses.
func (c *WatchChannel) Await(ctx context.Context, timeout time.Duration) (*Signal, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(c.baseDir); err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", c.baseDir, err)
	}

	// The marker may have been created between spawn and watch registration;
	// check once after the watch is in place to close that race.
	if _, err := os.Stat(c.ReadyPath()); err == nil {
		return c.consumePid()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil, fmt.Errorf("watcher closed unexpectedly")
			}
			if event.Name != c.ReadyPath() {
				continue
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				return c.consumePid()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil, fmt.Errorf("watcher closed unexpectedly")
			}
			return nil, fmt.Errorf("watcher error: %w", err)
		case <-timer.C:
			return nil, fmt.Errorf("%w: no signal after %s", ErrReadinessTimeout, timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *WatchChannel) consumePid() (*Signal, error) {
	data, err := os.ReadFile(c.PidPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read pid record %s: %w", c.PidPath(), err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return nil, fmt.Errorf("malformed pid record %s: %q", c.PidPath(), data)
	}
	return &Signal{Pid: pid}, nil
}

var _ Channel = (*WatchChannel)(nil)
