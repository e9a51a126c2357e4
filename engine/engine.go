// Package engine coordinates the public operations of a single-
// instrument order book — post, cancel, get_data, get_snapshot — over
// the indexed stores, the concurrency harness, and the matching
// engine.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"limitbook/domain"
	"limitbook/locking"
	"limitbook/matching"
	"limitbook/snapshot"
	"limitbook/store"
	"limitbook/tasks"
)

// Engine is a single-instrument limit order book. One Engine handles
// exactly one symbol; routing across instruments is out of scope —
// callers run one Engine per instrument.
type Engine struct {
	symbol string

	book     *store.Index
	incoming *store.Index

	bookLock     *locking.RWUpgradeMutex
	incomingLock *locking.RWUpgradeMutex
	multilock    *locking.MultiLock

	counter domain.Counter

	worker  *tasks.Worker
	matcher *matching.Engine

	logger *zap.Logger

	closeOnce sync.Once
}

// New builds and starts an Engine for symbol. Callers must call Close
// when done to join the worker goroutine.
func New(symbol string, opts ...Option) *Engine {
	cfg := NewDefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	bookLock := locking.New()
	incomingLock := locking.New()
	book := store.NewBook()
	incoming := store.NewIncoming()

	worker := tasks.NewWorker(cfg.WorkerQueueSize, cfg.Logger)
	worker.Start()

	e := &Engine{
		symbol:       symbol,
		book:         book,
		incoming:     incoming,
		bookLock:     bookLock,
		incomingLock: incomingLock,
		multilock:    locking.NewMultiLock(bookLock, incomingLock),
		worker:       worker,
		matcher:      matching.New(book, incoming, bookLock, incomingLock, cfg.FillBufferSize, cfg.Logger),
		logger:       cfg.Logger,
	}
	return e
}

// Close stops the matching worker, discarding any match tasks still
// queued, joins its goroutine, and closes Fills. Safe to call more
// than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.worker.Stop()
		e.matcher.Close()
	})
}

// Symbol returns the instrument this Engine handles.
func (e *Engine) Symbol() string { return e.symbol }

// Fills exposes completed matches for this engine's instrument.
func (e *Engine) Fills() <-chan *domain.Fill {
	return e.matcher.Fills()
}

// Post admits a new order, assigns it the next monotonically
// increasing id, and schedules a match attempt. It returns as soon as
// the order is durably recorded in incoming — matching itself runs
// asynchronously on the worker.
func (e *Engine) Post(ctx context.Context, order domain.Order) (domain.ID, error) {
	release, err := e.multilock.LockBothExclusive(ctx)
	if err != nil {
		return domain.ID{}, err
	}
	defer release()

	id := e.counter.Next()
	e.incoming.Insert(domain.OrderData{ID: id, Order: order})

	e.worker.Submit(func(taskCtx context.Context) {
		e.matcher.Merge(taskCtx, id)
	})

	return id, nil
}

// Cancel removes an order by id, probing book then incoming. A
// satisfied order is treated as already gone: cancel reports absent
// rather than surfacing the stale record.
func (e *Engine) Cancel(id domain.ID) (domain.OrderData, bool) {
	if od, ok := e.cancelFrom(e.book, e.bookLock, id); ok {
		return od, true
	}
	return e.cancelFrom(e.incoming, e.incomingLock, id)
}

func (e *Engine) cancelFrom(idx *store.Index, lock *locking.RWUpgradeMutex, id domain.ID) (domain.OrderData, bool) {
	lock.AcquireUpgradable()

	od, ok := idx.FindByID(id)
	if !ok || od.Satisfied() {
		lock.ReleaseUpgradable()
		return domain.OrderData{}, false
	}

	lock.UpgradeToExclusive()
	removed, ok := idx.EraseByID(id)
	lock.ReleaseExclusiveFromUpgrade()
	if !ok {
		return domain.OrderData{}, false
	}
	return removed, true
}

// GetData returns a deep copy of the order named by id. It fails with
// ErrNotFound if the id is unknown to both stores, or if the located
// order has already been fully satisfied.
func (e *Engine) GetData(id domain.ID) (domain.OrderData, error) {
	if od, ok := e.getFrom(e.book, e.bookLock, id); ok {
		return od, nil
	}
	if od, ok := e.getFrom(e.incoming, e.incomingLock, id); ok {
		return od, nil
	}
	return domain.OrderData{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
}

func (e *Engine) getFrom(idx *store.Index, lock *locking.RWUpgradeMutex, id domain.ID) (domain.OrderData, bool) {
	lock.AcquireShared()
	defer lock.ReleaseShared()

	od, ok := idx.FindByID(id)
	if !ok || od.Satisfied() {
		return domain.OrderData{}, false
	}
	return od.Clone(), true
}

// GetSnapshot returns a price-sorted, side-partitioned consistent cut
// across both stores.
func (e *Engine) GetSnapshot(ctx context.Context) (snapshot.Snapshot, error) {
	return snapshot.Build(ctx, e.book, e.incoming, e.multilock)
}

// Drain blocks until every match task submitted before this call has
// finished running. Because the worker is FIFO, submitting a
// sentinel and waiting for it to execute is a correct barrier. It
// changes no book semantics — it exists so callers (and tests) have a
// deterministic "matching has caught up" point instead of polling
// with a sleep.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	e.worker.Submit(func(context.Context) { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
