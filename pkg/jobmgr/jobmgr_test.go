package jobmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/keshon/slashkit/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAsyncRejectsDuplicates(t *testing.T) {
	m := NewManager(nil)
	release := make(chan struct{})

	require.NoError(t, m.StartAsync(context.Background(), "sync", func(ctx context.Context) error {
		<-release
		return nil
	}))
	assert.Equal(t, []string{"sync"}, m.List())
	assert.Equal(t, "Running jobs: sync", m.Status())

	err := m.StartAsync(context.Background(), "sync", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrRunning)

	close(release)
	m.Wait("sync")
	assert.Empty(t, m.List())
	assert.Equal(t, "No jobs are running.", m.Status())
}

func TestStopCancelsJob(t *testing.T) {
	m := NewManager(nil)
	started := make(chan struct{})
	var got error

	require.NoError(t, m.StartAsync(context.Background(), "loop", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		got = ctx.Err()
		return got
	}))
	<-started

	require.NoError(t, m.Stop("loop"))
	assert.ErrorIs(t, got, context.Canceled)
	assert.ErrorIs(t, m.Stop("loop"), ErrNotRunning)
}

func TestFailedJobIsLogged(t *testing.T) {
	log, logs := logger.TestLogger()
	m := NewManager(log)

	require.NoError(t, m.StartAsync(context.Background(), "broken", func(context.Context) error {
		return errors.New("boom")
	}))
	m.Wait("broken")

	entries := logs.FilterMessage("job failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broken", entries[0].ContextMap()["job"])
}
