package service

import (
	"context"
	"sync"
)

// ExportedRunningGuard is an exported alias so _test packages can test the guard.
type ExportedRunningGuard = runningJobsGuard

// ─────────────────────────────────────────────────────────────
// runningJobsGuard: prevents concurrent exports of the same dataset
// ─────────────────────────────────────────────────────────────

// runningJobsGuard is a concurrency guard that ensures only one
// export of a given dataset runs at a time.
type runningJobsGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock attempts to mark dataset as running. Returns true if successful.
// Returns false if the dataset is already being exported.
func (g *runningJobsGuard) TryLock(dataset string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[dataset]; ok {
		return false // already running
	}
	g.running[dataset] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock marks the dataset as no longer running. Must be called after TryLock returns true.
func (g *runningJobsGuard) Unlock(dataset string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, dataset)
	g.wg.Done()
}

// WaitAll blocks until all running exports complete or ctx is cancelled.
func (g *runningJobsGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
