// Package store implements the indexed, multi-key container that
// holds resting and in-flight orders. It is a plain container: all
// concurrency control lives in the locking package and is applied by
// callers (engine, matching), not here.
package store

import (
	"container/list"
	"fmt"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"limitbook/domain"
)

// InvariantViolation is raised when a precondition the store relies on
// to stay consistent is broken by the caller — currently only an id
// collision on Insert, which should never happen since ids are
// assigned by a single monotonic counter under an exclusive hold.
type InvariantViolation struct {
	ID domain.ID
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("store: invariant violation: id %s already present", e.ID)
}

// record is the mutable, pointer-identity cell backing one order. The
// same *record is reachable from the id map and, for a price-indexed
// store, from its price level's FIFO list — mutating Quantity through
// either path is visible through the other.
type record struct {
	id    domain.ID
	order domain.Order
	elem  *list.Element // position in its price level's list, nil unless priceIndexed
}

// level is all orders resting at one price, in arrival (FIFO) order.
type level struct {
	price  domain.Price
	orders *list.List
}

func ascendingByKey(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Index is a multi-index container over orders: a unique index by
// id, plus — for a price-indexed store — a non-unique composite index
// by (price, side) with ascending-price traversal. The price index is
// a red-black tree per side (github.com/emirpasic/gods/v2), each node
// a FIFO list of same-price orders.
type Index struct {
	byID         map[domain.ID]*record
	priceIndexed bool
	bySide       [2]*rbt.Tree[int64, *level]
}

// NewBook returns a price-indexed store suitable for resting orders.
func NewBook() *Index {
	idx := &Index{
		byID:         make(map[domain.ID]*record),
		priceIndexed: true,
	}
	idx.bySide[domain.Ask] = rbt.NewWith[int64, *level](ascendingByKey)
	idx.bySide[domain.Bid] = rbt.NewWith[int64, *level](ascendingByKey)
	return idx
}

// NewIncoming returns a store with only the id index, sufficient for
// orders in flight between post and merge.
func NewIncoming() *Index {
	return &Index{byID: make(map[domain.ID]*record)}
}

// Insert adds an order. The id must be absent; a collision is a
// programming error and panics with *InvariantViolation rather than
// silently overwriting a resting order.
func (idx *Index) Insert(od domain.OrderData) {
	if _, exists := idx.byID[od.ID]; exists {
		panic(&InvariantViolation{ID: od.ID})
	}

	rec := &record{id: od.ID, order: od.Order}
	idx.byID[od.ID] = rec

	if idx.priceIndexed {
		tree := idx.bySide[od.Order.Side]
		key := od.Order.Price.Key()
		lvl, found := tree.Get(key)
		if !found {
			lvl = &level{price: od.Order.Price, orders: list.New()}
			tree.Put(key, lvl)
		}
		rec.elem = lvl.orders.PushBack(rec)
	}
}

// FindByID returns a copy of the order, if present.
func (idx *Index) FindByID(id domain.ID) (domain.OrderData, bool) {
	rec, ok := idx.byID[id]
	if !ok {
		return domain.OrderData{}, false
	}
	return domain.OrderData{ID: rec.id, Order: rec.order}, true
}

// EraseByID removes and returns the order, if present.
func (idx *Index) EraseByID(id domain.ID) (domain.OrderData, bool) {
	rec, ok := idx.byID[id]
	if !ok {
		return domain.OrderData{}, false
	}
	delete(idx.byID, id)

	if idx.priceIndexed && rec.elem != nil {
		tree := idx.bySide[rec.order.Side]
		key := rec.order.Price.Key()
		if lvl, found := tree.Get(key); found {
			lvl.orders.Remove(rec.elem)
			if lvl.orders.Len() == 0 {
				tree.Remove(key)
			}
		}
	}

	return domain.OrderData{ID: rec.id, Order: rec.order}, true
}

// MutateQuantity sets the live quantity of a resting order. It is the
// only mutation path the matching engine uses while iterating a price
// level — it never holds a Go pointer across a lock boundary.
func (idx *Index) MutateQuantity(id domain.ID, quantity uint64) bool {
	rec, ok := idx.byID[id]
	if !ok {
		return false
	}
	rec.order.Quantity = quantity
	return true
}

// EqualRange returns the ids resting at (price, side), in FIFO
// (arrival) order. Returns nil for a store that is not price-indexed
// or has no orders at that price.
func (idx *Index) EqualRange(price domain.Price, side domain.Side) []domain.ID {
	if !idx.priceIndexed {
		return nil
	}
	tree := idx.bySide[side]
	lvl, found := tree.Get(price.Key())
	if !found {
		return nil
	}
	ids := make([]domain.ID, 0, lvl.orders.Len())
	for e := lvl.orders.Front(); e != nil; e = e.Next() {
		rec := e.Value.(*record)
		// A level groups prices by their rounded Key; only exactly equal
		// prices belong to the range.
		if !rec.order.Price.Equal(price) {
			continue
		}
		ids = append(ids, rec.id)
	}
	return ids
}

// Walk visits every order on the given side in ascending-price order,
// oldest-first within a price level, stopping early if fn returns
// false. It is a no-op on a store that is not price-indexed — use
// WalkUnordered there.
func (idx *Index) Walk(side domain.Side, fn func(domain.OrderData) bool) {
	if !idx.priceIndexed {
		return
	}
	it := idx.bySide[side].Iterator()
	for it.Next() {
		lvl := it.Value()
		for e := lvl.orders.Front(); e != nil; e = e.Next() {
			rec := e.Value.(*record)
			if !fn(domain.OrderData{ID: rec.id, Order: rec.order}) {
				return
			}
		}
	}
}

// WalkUnordered visits every order on the given side with no
// guaranteed ordering. It is the only traversal available on a store
// without a price index (incoming), and is also valid on a
// price-indexed store.
func (idx *Index) WalkUnordered(side domain.Side, fn func(domain.OrderData) bool) {
	for _, rec := range idx.byID {
		if rec.order.Side != side {
			continue
		}
		if !fn(domain.OrderData{ID: rec.id, Order: rec.order}) {
			return
		}
	}
}

// Len returns the number of orders currently held.
func (idx *Index) Len() int {
	return len(idx.byID)
}
