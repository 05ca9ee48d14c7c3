package results

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/corobench/corobench/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestStore_Append(t *testing.T) {
	tempDir := t.TempDir()
	destination := filepath.Join(tempDir, "results.csv")
	ctx := context.Background()

	store, err := New(afs.New(), destination)
	require.NoError(t, err)

	// The destination is created up front so unwritable outputs fail before
	// the first run, and an empty sweep still leaves a valid file.
	data, err := os.ReadFile(destination)
	require.NoError(t, err)
	assert.Equal(t, "PopulationSize,ResidentMemoryKb\n", string(data))

	require.NoError(t, store.Append(ctx, model.RunRecord{Population: 16, ResidentKb: 5000}))
	require.NoError(t, store.Append(ctx, model.RunRecord{Population: 32, ResidentKb: 5010}))

	data, err = os.ReadFile(destination)
	require.NoError(t, err)
	assert.Equal(t, "PopulationSize,ResidentMemoryKb\n16,5000\n32,5010\n", string(data))
}

func TestStore_UnwritableDestination(t *testing.T) {
	tempDir := t.TempDir()
	// Parent of the destination is a regular file, so the upload must fail.
	blocker := filepath.Join(tempDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := New(afs.New(), filepath.Join(blocker, "results.csv"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()
	destination := filepath.Join(tempDir, "results.csv")
	content := "PopulationSize,ResidentMemoryKb\n16,5000\n64,5200\n"
	require.NoError(t, os.WriteFile(destination, []byte(content), 0o644))

	records, err := Load(context.Background(), afs.New(), destination)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 16, records[0].Population)
	assert.EqualValues(t, 5000, records[0].ResidentKb)
	assert.Equal(t, 64, records[1].Population)
	assert.EqualValues(t, 5200, records[1].ResidentKb)
}

func TestLoad_Malformed(t *testing.T) {
	tempDir := t.TempDir()
	destination := filepath.Join(tempDir, "results.csv")
	require.NoError(t, os.WriteFile(destination, []byte("PopulationSize,ResidentMemoryKb\n16;5000\n"), 0o644))

	_, err := Load(context.Background(), afs.New(), destination)
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	destination := filepath.Join(tempDir, "results.csv")
	ctx := context.Background()

	store, err := New(afs.New(), destination)
	require.NoError(t, err)
	expected := []model.RunRecord{
		{Population: 16, ResidentKb: 5000},
		{Population: 1024, ResidentKb: 5200},
		{Population: 8388608, ResidentKb: 9309046},
	}
	for _, record := range expected {
		require.NoError(t, store.Append(ctx, record))
	}

	records, err := Load(ctx, afs.New(), destination)
	require.NoError(t, err)
	require.Len(t, records, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Population, records[i].Population)
		assert.Equal(t, expected[i].ResidentKb, records[i].ResidentKb)
	}
}
