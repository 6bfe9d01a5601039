package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Stats is a snapshot of pool counters.
type Stats struct {
	Workers       int
	TotalJobs     int64
	CompletedJobs int64
	ActiveWorkers int64
}

// WorkerPool runs leaf jobs (k-means attempts, image strips) on a fixed set
// of goroutines. Jobs must not submit to the same pool and wait on the result.
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once

	mu     sync.RWMutex
	closed bool

	totalJobs     atomic.Int64
	completedJobs atomic.Int64
	activeWorkers atomic.Int64
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

// worker processes jobs from the job queue
func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		wp.activeWorkers.Add(1)
		func() {
			defer func() {
				wp.activeWorkers.Add(-1)
				wp.completedJobs.Add(1)
				wp.wg.Done()
			}()
			job()
		}()
	}
}

// Submit queues a job. It returns false once the pool is closed.
func (wp *WorkerPool) Submit(job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	wp.wg.Add(1)
	wp.totalJobs.Add(1)
	wp.jobQueue <- job
	return true
}

// Wait waits for all submitted jobs to complete
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Close shuts down the worker pool. Queued jobs still run.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.closed {
		return
	}
	wp.closed = true
	close(wp.jobQueue)
}

// Workers returns the pool size; a nil pool counts as one inline worker.
func (wp *WorkerPool) Workers() int {
	if wp == nil {
		return 1
	}
	return wp.workers
}

// GetStats returns the current counters.
func (wp *WorkerPool) GetStats() Stats {
	return Stats{
		Workers:       wp.workers,
		TotalJobs:     wp.totalJobs.Load(),
		CompletedJobs: wp.completedJobs.Load(),
		ActiveWorkers: wp.activeWorkers.Load(),
	}
}

// Group tracks a subset of jobs so one caller can wait for its own work
// without waiting on jobs submitted by others.
type Group struct {
	pool *WorkerPool
	wg   sync.WaitGroup
}

// NewGroup returns a job group bound to the pool. A nil pool runs jobs inline.
func (wp *WorkerPool) NewGroup() *Group {
	return &Group{pool: wp}
}

// Go runs job on the pool, or inline when the pool is nil or closed.
func (g *Group) Go(job func()) {
	g.wg.Add(1)
	wrapped := func() {
		defer g.wg.Done()
		job()
	}
	if g.pool == nil || !g.pool.Submit(wrapped) {
		wrapped()
	}
}

// Wait blocks until every job started through the group has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}
