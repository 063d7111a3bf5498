// Package jobmgr runs named background jobs with cancellation and keeps
// track of which ones are still running.
//
//	jm := jobmgr.NewManager(log)
//	err := jm.StartAsync(ctx, "sync-commands", func(ctx context.Context) error {
//	    return syncer.Sync(ctx, appID, reg)
//	})
//
// A name can only run once at a time. Jobs are forgotten when they finish.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrRunning is returned when a job with the same name is already running.
var ErrRunning = errors.New("job is already running")

// ErrNotRunning is returned by Stop for unknown names.
var ErrNotRunning = errors.New("job is not running")

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager starts, stops and tracks jobs. It is safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*job
	log  *zap.Logger
}

// NewManager creates a Manager. A nil logger disables lifecycle logging.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{jobs: make(map[string]*job), log: log.Named("jobs")}
}

// StartAsync runs fn in its own goroutine under a context derived from ctx
// and returns immediately.
func (m *Manager) StartAsync(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrRunning, name)
	}

	ctx, cancel := context.WithCancel(ctx)
	j := &job{cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = j

	go func() {
		defer close(j.done)
		defer cancel()

		m.log.Debug("job started", zap.String("job", name))
		if err := fn(ctx); err != nil {
			m.log.Error("job failed", zap.String("job", name), zap.Error(err))
		} else {
			m.log.Debug("job finished", zap.String("job", name))
		}

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
	return nil
}

// Stop cancels a running job and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRunning, name)
	}
	j.cancel()
	<-j.done
	return nil
}

// Wait blocks until the named job has finished, or returns at once when it
// is not running.
func (m *Manager) Wait(name string) {
	m.mu.Lock()
	j, ok := m.jobs[name]
	m.mu.Unlock()
	if ok {
		<-j.done
	}
}

// List returns the names of running jobs in sorted order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status summarises running jobs, e.g. "Running jobs: sync-commands".
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return "Running jobs: " + strings.Join(active, ", ")
}
