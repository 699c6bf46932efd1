package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncScheduledBatchesAndSettles(t *testing.T) {
	t.Parallel()

	source := &fakeSource{
		failStates: map[string]bool{"ak": true},
		delay:      20 * time.Millisecond,
	}
	states := []string{"al", "ak", "az", "ar", "ca", "co", "ct"}
	p := newTestPipeline(source, newMemStore(), nil, Options{BatchSize: 3, BatchDelay: -1, States: states})

	summary := p.SyncScheduled(context.Background())

	assert.Equal(t, 6, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailedCount)
	require.Len(t, summary.Results.Failed, 1)
	assert.Equal(t, "ak", summary.Results.Failed[0].State)
	assert.Len(t, summary.Results.Success, 6)
	assert.LessOrEqual(t, source.maxSeen.Load(), int32(3))
	assert.Equal(t, "Scheduled sync completed: 6 succeeded, 1 failed", summary.Message)
}

func TestSyncScheduledPausesBetweenBatches(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&fakeSource{}, newMemStore(), nil, Options{
		BatchSize:  2,
		BatchDelay: 30 * time.Millisecond,
		States:     []string{"al", "ak", "az", "ar", "ca"},
	})

	started := time.Now()
	summary := p.SyncScheduled(context.Background())

	assert.Equal(t, 5, summary.SuccessCount)
	assert.GreaterOrEqual(t, time.Since(started), 60*time.Millisecond)
}

func TestSyncScheduledStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(&fakeSource{}, newMemStore(), nil, Options{
		BatchSize:  2,
		BatchDelay: time.Hour,
		States:     []string{"al", "ak", "az", "ar"},
	})

	summary := p.SyncScheduled(ctx)

	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 2, summary.FailedCount)
	for _, res := range summary.Results.Failed {
		assert.Equal(t, context.Canceled.Error(), res.Error)
	}
}

func TestNormalizeStates(t *testing.T) {
	t.Parallel()

	got := NormalizeStates([]string{" CA", "ca", "", "Tx", "NY "})
	assert.Equal(t, []string{"ca", "tx", "ny"}, got)
}

func TestNewPipelineDefaults(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{})
	assert.Equal(t, 50, p.DefaultLimit())
	assert.Equal(t, 5, p.batchSize)
	assert.Equal(t, 2*time.Second, p.batchDelay)
	assert.Equal(t, DefaultTables, p.tables)
	assert.Empty(t, p.states)
}
