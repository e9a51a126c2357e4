// Package matching implements the cross-matching algorithm: given the
// id of an order freshly admitted into incoming, merge it against the
// resting opposite side of book and reconcile both stores with the
// outcome.
package matching

import (
	"context"

	"go.uber.org/zap"

	"limitbook/domain"
	"limitbook/locking"
	"limitbook/store"
)

// Engine runs the merge algorithm against a shared book/incoming pair.
// It holds no goroutine of its own — callers (engine.Engine, via
// tasks.Worker) decide how Merge gets scheduled; the FIFO worker's
// submission order is what delivers global "smallest id first"
// merge ordering, not anything in here.
type Engine struct {
	book         *store.Index
	incoming     *store.Index
	bookLock     *locking.RWUpgradeMutex
	incomingLock *locking.RWUpgradeMutex
	fills        chan *domain.Fill
	logger       *zap.Logger
}

// New builds a matching Engine over the given stores and locks.
// fillBuffer sizes the channel returned by Fills; a full buffer causes
// newer fills to be dropped and logged rather than block matching.
func New(book, incoming *store.Index, bookLock, incomingLock *locking.RWUpgradeMutex, fillBuffer int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		book:         book,
		incoming:     incoming,
		bookLock:     bookLock,
		incomingLock: incomingLock,
		fills:        make(chan *domain.Fill, fillBuffer),
		logger:       logger,
	}
}

// Fills exposes completed matches. Consuming it is optional: book
// semantics are identical whether or not anyone drains this channel.
func (e *Engine) Fills() <-chan *domain.Fill {
	return e.fills
}

// Close closes the Fills channel. Callers must only call this once no
// further Merge calls can run — e.g. after the tasks.Worker driving
// Merge has been stopped and joined.
func (e *Engine) Close() {
	close(e.fills)
}

// Merge runs the cross-matching algorithm for one incoming order id.
func (e *Engine) Merge(ctx context.Context, id domain.ID) {
	e.incomingLock.AcquireExclusive()
	newOrderData, ok := e.incoming.EraseByID(id)
	e.incomingLock.ReleaseExclusive()
	if !ok {
		// Cancelled before merge ran. Nothing to do.
		return
	}

	newOrder := newOrderData.Order
	opposite := domain.OtherSide(newOrder.Side)

	e.bookLock.AcquireUpgradable()
	candidates := e.book.EqualRange(newOrder.Price, opposite)

	var satisfied []domain.ID
	for newOrder.Quantity != 0 {
		if ctx.Err() != nil {
			e.bookLock.ReleaseUpgradable()
			return
		}

		e.bookLock.UpgradeToExclusive()
		candidateID, candidateQty, found := e.selectCandidate(candidates)
		if !found {
			e.bookLock.DowngradeToUpgradable()
			break
		}

		traded := minUint64(newOrder.Quantity, candidateQty)
		newOrder.Quantity -= traded
		remaining := candidateQty - traded
		e.book.MutateQuantity(candidateID, remaining)
		e.publishFill(candidateID, id, newOrder.Price, traded)
		if remaining == 0 {
			satisfied = append(satisfied, candidateID)
		}
		e.bookLock.DowngradeToUpgradable()
	}

	e.bookLock.UpgradeToExclusive()
	for _, sid := range satisfied {
		if ctx.Err() != nil {
			break
		}
		e.book.EraseByID(sid)
	}
	if ctx.Err() == nil && newOrder.Quantity > 0 {
		e.book.Insert(domain.OrderData{ID: id, Order: newOrder})
	}
	e.bookLock.ReleaseExclusiveFromUpgrade()
}

// selectCandidate picks, among ids still resting with non-zero
// quantity, the one with the smallest id: restrict to quantity > 0
// first, then take the minimum by id. Folding the satisfaction check
// into the comparator itself is not a strict weak ordering once a
// satisfied candidate is present, so the filter has to come first.
func (e *Engine) selectCandidate(ids []domain.ID) (domain.ID, uint64, bool) {
	var best domain.ID
	var bestQty uint64
	found := false
	for _, id := range ids {
		od, ok := e.book.FindByID(id)
		if !ok || od.Order.Quantity == 0 {
			continue
		}
		if !found || domain.Less(id, best) {
			best, bestQty, found = id, od.Order.Quantity, true
		}
	}
	return best, bestQty, found
}

func (e *Engine) publishFill(makerID, takerID domain.ID, price domain.Price, quantity uint64) {
	f := domain.NewFill(makerID, takerID, price, quantity)
	select {
	case e.fills <- f:
	default:
		e.logger.Warn("fill buffer full, dropping fill",
			zap.Stringer("maker_id", makerID),
			zap.Stringer("taker_id", takerID))
		f.Release()
	}
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
