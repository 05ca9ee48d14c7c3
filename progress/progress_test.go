package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Update(t *testing.T) {
	var seen []Snapshot
	ctx, tracker := WithNewTracker(context.Background(), "sweep-1", "lua", func(p Snapshot) {
		seen = append(seen, p)
	})

	tracker.Update(Delta{Total: 3})
	tracker.SetPopulation(16)
	tracker.Update(Delta{Running: 1})
	tracker.Update(Delta{Running: -1, Completed: 1})
	tracker.Update(Delta{Failed: 1})

	snapshot, ok := GetSnapshot(ctx)
	assert.True(t, ok)
	assert.Equal(t, "sweep-1", snapshot.SweepID)
	assert.Equal(t, 3, snapshot.TotalRuns)
	assert.Equal(t, 1, snapshot.CompletedRuns)
	assert.Equal(t, 1, snapshot.FailedRuns)
	assert.Equal(t, 0, snapshot.RunningRuns)
	assert.Equal(t, 16, snapshot.Population)
	assert.Len(t, seen, 5)
}

func TestProgress_NilSafe(t *testing.T) {
	var tracker *Progress
	tracker.Update(Delta{Total: 1})
	tracker.SetPopulation(16)
	assert.Equal(t, Snapshot{}, tracker.Snapshot())

	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestProgress_ConcurrentUpdates(t *testing.T) {
	_, tracker := WithNewTracker(context.Background(), "sweep-1", "lua", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.Update(Delta{Total: 1, Completed: 1})
				_ = tracker.Snapshot()
			}
		}()
	}
	wg.Wait()

	snapshot := tracker.Snapshot()
	assert.Equal(t, 800, snapshot.TotalRuns)
	assert.Equal(t, 800, snapshot.CompletedRuns)
}
