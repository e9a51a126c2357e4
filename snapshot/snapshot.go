// Package snapshot builds a consistent, price-sorted cut across both
// book and incoming.
package snapshot

import (
	"context"
	"sort"

	"limitbook/domain"
	"limitbook/locking"
	"limitbook/store"
)

// Snapshot is an independent, price-ascending view of both sides of
// the book at one instant. Entries are deep copies (domain.OrderData
// is already copy-safe); mutating a Snapshot never affects live store
// state.
type Snapshot struct {
	Asks []domain.OrderData
	Bids []domain.OrderData
}

// Build acquires book and incoming together under ml, so an order in
// flight between the two stores appears in exactly one of them, and
// merges each side's orders into ascending price order.
func Build(ctx context.Context, book, incoming *store.Index, ml *locking.MultiLock) (Snapshot, error) {
	release, err := ml.LockBothShared(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	defer release()

	return Snapshot{
		Asks: mergeSide(book, incoming, domain.Ask),
		Bids: mergeSide(book, incoming, domain.Bid),
	}, nil
}

// mergeSide collects one side from both stores and returns it
// price-ascending. book is already ascending via Walk; incoming is
// typically tiny (orders in flight to the matcher) and is sorted
// before the merge.
func mergeSide(book, incoming *store.Index, side domain.Side) []domain.OrderData {
	var fromBook, fromIncoming []domain.OrderData

	book.Walk(side, func(od domain.OrderData) bool {
		fromBook = append(fromBook, od.Clone())
		return true
	})
	incoming.WalkUnordered(side, func(od domain.OrderData) bool {
		fromIncoming = append(fromIncoming, od.Clone())
		return true
	})
	sort.Slice(fromIncoming, func(i, j int) bool {
		return fromIncoming[i].Order.Price.Less(fromIncoming[j].Order.Price)
	})

	return mergeSorted(fromBook, fromIncoming)
}

func mergeSorted(a, b []domain.OrderData) []domain.OrderData {
	merged := make([]domain.OrderData, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].Order.Price.Less(a[i].Order.Price) {
			merged = append(merged, b[j])
			j++
		} else {
			merged = append(merged, a[i])
			i++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}
