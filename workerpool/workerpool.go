// Package workerpool runs tasks on a fixed number of goroutines fed by a
// buffered queue.
package workerpool

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("worker pool closed")

// Task is a unit of work. Fn must be safe to run concurrently with other
// tasks. ResultC, when set, receives exactly one Result.
type Task struct {
	Fn      func() (any, error)
	ResultC chan Result
}

type Result struct {
	Value any
	Err   error
}

type WorkerPool struct {
	tasks chan Task
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts workerCount workers reading from a queue of queueSize tasks.
func New(workerCount, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	wp := &WorkerPool{tasks: make(chan Task, queueSize)}
	wp.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		res, err := task.Fn()
		if task.ResultC != nil {
			task.ResultC <- Result{Value: res, Err: err}
		}
	}
}

// Submit queues a task, blocking while the queue is full. It returns
// ctx.Err() if ctx ends first and ErrClosed after Close.
func (wp *WorkerPool) Submit(ctx context.Context, task Task) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrClosed
	}
	select {
	case wp.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks, lets queued tasks finish and waits for the
// workers to exit. Calling it twice is a no-op.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.tasks)
	wp.mu.Unlock()
	wp.wg.Wait()
}

// Map applies fn to every item on the pool and returns the results in input
// order. A nil pool runs fn sequentially on the calling goroutine. If ctx ends
// while submitting, Map waits for the tasks already queued and returns the
// context error.
func Map[T, R any](ctx context.Context, wp *WorkerPool, items []T, fn func(i int, item T) R) ([]R, error) {
	out := make([]R, len(items))
	if wp == nil {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = fn(i, item)
		}
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	done := make(chan Result, len(items))
	submitted := 0
	var submitErr error
	for i, item := range items {
		err := wp.Submit(ctx, Task{
			Fn: func() (any, error) {
				return indexed[R]{i: i, v: fn(i, item)}, nil
			},
			ResultC: done,
		})
		if err != nil {
			submitErr = err
			break
		}
		submitted++
	}

	for n := 0; n < submitted; n++ {
		res := <-done
		if r, ok := res.Value.(indexed[R]); ok {
			out[r.i] = r.v
		}
	}
	if submitErr != nil {
		return nil, submitErr
	}
	return out, nil
}

// indexed carries a Map result back with its input position.
type indexed[R any] struct {
	i int
	v R
}
