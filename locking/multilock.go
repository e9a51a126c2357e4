package locking

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// MultiLock acquires two RWUpgradeMutex instances — conventionally
// "book" then "incoming" — atomically and in a fixed order, giving a
// deadlock-free way to lock both together. A single-slot semaphore
// admits only one multi-lock sequence (exclusive or shared) at a
// time, so two multi-lock acquirers can never interleave and form a
// cycle against each other; single-lock callers (Cancel, GetData)
// still only ever touch one mutex at a time and so never contribute
// to a cycle either.
type MultiLock struct {
	first, second *RWUpgradeMutex
	gate          *semaphore.Weighted
}

// NewMultiLock builds a MultiLock over book and incoming, always
// acquiring book first.
func NewMultiLock(book, incoming *RWUpgradeMutex) *MultiLock {
	return &MultiLock{first: book, second: incoming, gate: semaphore.NewWeighted(1)}
}

// LockBothExclusive acquires both locks for writing. The returned
// func releases both and must be called exactly once. ctx governs
// only the wait for the admission gate; once admitted, the two
// RWUpgradeMutex acquisitions are not cancellable (matching the
// underlying sync.RWMutex, which has no cancellable lock primitive).
func (m *MultiLock) LockBothExclusive(ctx context.Context) (func(), error) {
	if err := m.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	m.first.AcquireExclusive()
	m.second.AcquireExclusive()
	return func() {
		m.second.ReleaseExclusive()
		m.first.ReleaseExclusive()
		m.gate.Release(1)
	}, nil
}

// LockBothShared acquires both locks for reading, for get_snapshot's
// consistent-cut requirement.
func (m *MultiLock) LockBothShared(ctx context.Context) (func(), error) {
	if err := m.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	m.first.AcquireShared()
	m.second.AcquireShared()
	return func() {
		m.second.ReleaseShared()
		m.first.ReleaseShared()
		m.gate.Release(1)
	}, nil
}
