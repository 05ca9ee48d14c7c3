package workload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestService_Generate(t *testing.T) {
	service := New(nil)
	spec := &Spec{Population: 1024, PidURL: "/tmp/run/pid", ReadyURL: "/tmp/run/ready"}

	script, err := service.Generate(spec)
	require.NoError(t, err)
	text := string(script)

	assert.Contains(t, text, "coroutine.yield()")
	assert.Contains(t, text, "coroutine.resume(context)")
	assert.Contains(t, text, `collectgarbage("collect")`)
	assert.Contains(t, text, `"/tmp/run/pid"`)
	assert.Contains(t, text, `"/tmp/run/ready"`)
	assert.Contains(t, text, "/proc/self/stat")
	// The pid record must be written before the readiness marker.
	assert.Less(t, strings.Index(text, "/tmp/run/pid"), strings.Index(text, "/tmp/run/ready"))

	again, err := service.Generate(spec)
	require.NoError(t, err)
	assert.Equal(t, script, again, "generation must be deterministic for a given spec")
}

func TestService_Generate_Invalid(t *testing.T) {
	service := New(nil)
	_, err := service.Generate(nil)
	assert.Error(t, err)
	_, err = service.Generate(&Spec{Population: 0, PidURL: "p", ReadyURL: "r"})
	assert.Error(t, err)
	_, err = service.Generate(&Spec{Population: 1})
	assert.Error(t, err)
}

func TestService_Write(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "workload-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	service := New(afs.New())
	destination := filepath.Join(tempDir, "workload.lua")
	spec := &Spec{Population: 16, PidURL: filepath.Join(tempDir, "pid"), ReadyURL: filepath.Join(tempDir, "ready")}
	require.NoError(t, service.Write(context.Background(), destination, spec))

	data, err := os.ReadFile(destination)
	require.NoError(t, err)
	expected, err := service.Generate(spec)
	require.NoError(t, err)
	assert.Equal(t, expected, data)
}
