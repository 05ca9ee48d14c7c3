package launcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "workload.sh")
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))
	return script
}

func TestService_Start_MissingInterpreter(t *testing.T) {
	service := New("no-such-interpreter-corobench", "")
	_, err := service.Start(context.Background(), "workload", 16)
	assert.ErrorIs(t, err, ErrSpawn)
}

func TestService_Start_ImmediateExit(t *testing.T) {
	service := New("sh", "")

	_, err := service.Start(context.Background(), writeScript(t, "exit 3\n"), 16)
	assert.ErrorIs(t, err, ErrSpawn)

	_, err = service.Start(context.Background(), writeScript(t, "exit 0\n"), 16)
	assert.ErrorIs(t, err, ErrSpawn)
}

func TestService_Start_InvalidPopulation(t *testing.T) {
	service := New("sh", "")
	_, err := service.Start(context.Background(), "workload", 0)
	assert.ErrorIs(t, err, ErrSpawn)
}

func TestService_StartAndTerminate(t *testing.T) {
	service := New("sh", "")
	ctx := context.Background()

	handle, err := service.Start(ctx, writeScript(t, "exec sleep 30\n"), 16)
	require.NoError(t, err)
	assert.Greater(t, handle.Pid(), 0)
	assert.False(t, handle.Exited())

	require.NoError(t, service.Terminate(ctx, handle))
	assert.True(t, handle.Exited())

	// The process is reaped, not just signalled: the pid no longer exists.
	err = unix.Kill(handle.Pid(), 0)
	assert.Error(t, err)
}

func TestService_Terminate_Idempotent(t *testing.T) {
	service := New("sh", "")
	ctx := context.Background()

	handle, err := service.Start(ctx, writeScript(t, "exec sleep 30\n"), 16)
	require.NoError(t, err)

	require.NoError(t, service.Terminate(ctx, handle))
	// Terminating an already-exited process is a no-op, not an error.
	require.NoError(t, service.Terminate(ctx, handle))
	require.NoError(t, service.Terminate(ctx, nil))
}

func TestService_Terminate_ExitedOnItsOwn(t *testing.T) {
	service := New("sh", "")
	ctx := context.Background()

	handle, err := service.Start(ctx, writeScript(t, "sleep 1\n"), 16)
	require.NoError(t, err)

	deadline := time.Now().Add(5 * time.Second)
	for !handle.Exited() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	require.True(t, handle.Exited())
	require.NoError(t, service.Terminate(ctx, handle))
}
