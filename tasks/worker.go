// Package tasks implements a single-threaded FIFO worker: submit a
// task, start, stop with cooperative interruption. It gives the
// matching engine somewhere to run a merge asynchronously from the
// goroutine that posted the order.
package tasks

import (
	"context"

	"go.uber.org/zap"
)

// Task is one unit of work submitted to a Worker. It receives the
// worker's lifetime context and should check ctx.Err() at any
// unbounded internal loop so Stop can interrupt it promptly.
type Task func(ctx context.Context)

// Worker runs submitted Tasks one at a time, in submission order, on
// a single dedicated goroutine, selecting between a stop signal and
// the next queued item on every iteration.
type Worker struct {
	queue  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	logger *zap.Logger
}

// NewWorker creates a Worker with the given bounded queue capacity.
// Submit blocks once the queue is full — back-pressure on the caller
// rather than unbounded growth, though it never blocks on match
// execution itself since matching always runs on the worker
// goroutine, not the submitting one.
func NewWorker(queueSize int, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:  make(chan Task, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches the worker goroutine. It is not safe to call Start
// twice on the same Worker.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	go w.run()
}

// Submit enqueues a task for FIFO execution. It must not be called
// after Stop.
func (w *Worker) Submit(t Task) {
	w.queue <- t
}

// Stop triggers cooperative cancellation and joins the worker
// goroutine. Any task still sitting in the queue is discarded,
// unrun; the task currently executing observes cancellation at its
// own next checkpoint and is expected to return promptly.
func (w *Worker) Stop() {
	w.cancel()
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	for {
		// Non-blocking check first so a pending stop always wins a
		// simultaneous race with a ready task, bounding teardown time
		// even under a full queue.
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.execute(t)
		}
	}
}

func (w *Worker) execute(t Task) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("task panicked, dropping and continuing", zap.Any("recover", r))
		}
	}()
	t(w.ctx)
}
