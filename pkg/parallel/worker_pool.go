// Package parallel runs independent, index-addressed work on a bounded set
// of goroutines. Callers write results into preallocated slices by index, so
// output never depends on scheduling order.
package parallel

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
)

// ErrTooManyWorkers is returned when the worker count exceeds the maximum allowed.
var ErrTooManyWorkers = errors.New("worker count exceeds maximum")

// ErrTaskPanicked is returned by Wait when a submitted task panicked.
var ErrTaskPanicked = errors.New("task panicked")

// MaxWorkers is the maximum number of workers allowed in a pool.
const MaxWorkers = math.MaxInt / 2

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu

	panicMu  sync.Mutex
	panicErr error // first recovered panic
}

// NewWorkerPool creates a new worker pool with specified number of workers.
// workers <= 0 uses GOMAXPROCS.
func NewWorkerPool(workers int) (*WorkerPool, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Prevent overflow in buffer size calculation
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
	}

	pool.start()
	return pool, nil
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.run(task)
	}
}

// run executes one task, converting a panic into the pool's error.
func (wp *WorkerPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			wp.panicMu.Lock()
			if wp.panicErr == nil {
				wp.panicErr = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
			wp.panicMu.Unlock()
		}
	}()
	task()
}

// Submit adds a task to the worker pool
// Returns false if the pool is closed, true if task was submitted
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	wp.taskQueue <- task
	return true
}

// Close shuts down the worker pool after queued tasks finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Wait closes the pool, waits for all submitted tasks and reports the first
// task panic, if any.
func (wp *WorkerPool) Wait() error {
	wp.Close()

	wp.panicMu.Lock()
	defer wp.panicMu.Unlock()
	return wp.panicErr
}

// ForEach calls fn(i) for every i in [0, n). Work is split into contiguous
// chunks across at most workers goroutines; with one worker, or n below
// minParallel, it runs inline on the caller's goroutine.
func ForEach(workers, n, minParallel int, fn func(i int)) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || n < minParallel {
		return forEachInline(n, fn)
	}

	if workers > n {
		workers = n
	}
	pool, err := NewWorkerPool(workers)
	if err != nil {
		return err
	}

	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		pool.Submit(func() {
			for i := start; i < end; i++ {
				fn(i)
			}
		})
	}

	return pool.Wait()
}

// forEachInline runs fn on the caller's goroutine, reporting a panic the
// same way a pool does.
func forEachInline(n int, fn func(i int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	for i := 0; i < n; i++ {
		fn(i)
	}
	return nil
}
