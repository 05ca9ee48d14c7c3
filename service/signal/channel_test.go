package signal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func newChannels(t *testing.T) map[string]Channel {
	t.Helper()
	channels := map[string]Channel{}

	fsDir, err := os.MkdirTemp("", "signal-fs")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(fsDir) })
	fsChannel, err := NewFsChannel(afs.New(), fsDir, 10*time.Millisecond)
	require.NoError(t, err)
	channels["fs"] = fsChannel

	watchDir, err := os.MkdirTemp("", "signal-watch")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(watchDir) })
	watchChannel, err := NewWatchChannel(watchDir)
	require.NoError(t, err)
	channels["watch"] = watchChannel

	return channels
}

func signalReady(t *testing.T, channel Channel, pid int, after time.Duration) {
	t.Helper()
	go func() {
		time.Sleep(after)
		// pid record first, marker second - the order the child uses.
		if err := os.WriteFile(channel.PidPath(), []byte(fmt.Sprintf("%d\n", pid)), 0o644); err != nil {
			t.Error(err)
			return
		}
		if err := os.WriteFile(channel.ReadyPath(), []byte("ready"), 0o644); err != nil {
			t.Error(err)
		}
	}()
}

func TestChannel_Await(t *testing.T) {
	for name, channel := range newChannels(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, channel.Clear(ctx))

			signalReady(t, channel, 4321, 50*time.Millisecond)
			sig, err := channel.Await(ctx, 2*time.Second)
			require.NoError(t, err)
			assert.Equal(t, 4321, sig.Pid)
		})
	}
}

func TestChannel_AwaitTimeout(t *testing.T) {
	for name, channel := range newChannels(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, channel.Clear(ctx))

			started := time.Now()
			_, err := channel.Await(ctx, 200*time.Millisecond)
			elapsed := time.Since(started)

			assert.ErrorIs(t, err, ErrReadinessTimeout)
			assert.Less(t, elapsed, 500*time.Millisecond)
		})
	}
}

func TestChannel_ClearRemovesStaleArtifacts(t *testing.T) {
	for name, channel := range newChannels(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			// Stale artifacts from a previous run.
			require.NoError(t, os.WriteFile(channel.PidPath(), []byte("99999"), 0o644))
			require.NoError(t, os.WriteFile(channel.ReadyPath(), []byte("ready"), 0o644))

			require.NoError(t, channel.Clear(ctx))
			_, err := os.Stat(channel.ReadyPath())
			assert.True(t, os.IsNotExist(err))
			_, err = os.Stat(channel.PidPath())
			assert.True(t, os.IsNotExist(err))

			// Clearing already-clean channels is a no-op.
			require.NoError(t, channel.Clear(ctx))

			// After the clear a fresh signal is observed, not the stale one.
			signalReady(t, channel, 1234, 20*time.Millisecond)
			sig, err := channel.Await(ctx, 2*time.Second)
			require.NoError(t, err)
			assert.Equal(t, 1234, sig.Pid)
		})
	}
}

func TestChannel_MalformedPid(t *testing.T) {
	for name, channel := range newChannels(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, channel.Clear(ctx))
			require.NoError(t, os.WriteFile(channel.PidPath(), []byte("not-a-pid"), 0o644))
			require.NoError(t, os.WriteFile(channel.ReadyPath(), []byte("ready"), 0o644))

			_, err := channel.Await(ctx, time.Second)
			assert.Error(t, err)
			assert.NotErrorIs(t, err, ErrReadinessTimeout)
		})
	}
}

func TestChannel_Paths(t *testing.T) {
	for name, channel := range newChannels(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "ready", filepath.Base(channel.ReadyPath()))
			assert.Equal(t, "pid", filepath.Base(channel.PidPath()))
			assert.Equal(t, filepath.Dir(channel.ReadyPath()), filepath.Dir(channel.PidPath()))
		})
	}
}
