// Package locking implements a reader-writer lock with an
// upgradable-shared mode, plus a deadlock-free way to acquire two such
// locks together.
package locking

import "sync"

// RWUpgradeMutex is a reader-writer mutex with three admission modes:
// shared, upgradable-shared, and exclusive. At most one goroutine may
// hold the upgradable-shared mode at a time (enforced by the upgrade
// token below); any number may hold plain shared concurrently with
// it. Upgrading blocks new readers (via the underlying RWMutex) but
// not the already-upgradable holder itself, matching the
// boost::upgrade_lock semantics the original engine relied on.
type RWUpgradeMutex struct {
	mu      sync.RWMutex
	upgrade sync.Mutex
}

// New returns an unlocked RWUpgradeMutex.
func New() *RWUpgradeMutex {
	return &RWUpgradeMutex{}
}

// AcquireShared takes a plain, non-upgradable read lock.
func (m *RWUpgradeMutex) AcquireShared() { m.mu.RLock() }

// ReleaseShared releases a lock taken with AcquireShared.
func (m *RWUpgradeMutex) ReleaseShared() { m.mu.RUnlock() }

// AcquireExclusive takes a write lock directly, with no intent to
// read first.
func (m *RWUpgradeMutex) AcquireExclusive() { m.mu.Lock() }

// ReleaseExclusive releases a lock taken with AcquireExclusive.
func (m *RWUpgradeMutex) ReleaseExclusive() { m.mu.Unlock() }

// AcquireUpgradable takes the single upgrade token and a read lock.
// Only one goroutine may hold the upgradable mode at a time; other
// readers (AcquireShared) are unaffected.
func (m *RWUpgradeMutex) AcquireUpgradable() {
	m.upgrade.Lock()
	m.mu.RLock()
}

// ReleaseUpgradable releases a lock currently held in upgradable-shared
// mode (i.e. since the matching AcquireUpgradable, or since the most
// recent DowngradeToUpgradable).
func (m *RWUpgradeMutex) ReleaseUpgradable() {
	m.mu.RUnlock()
	m.upgrade.Unlock()
}

// UpgradeToExclusive converts the caller's upgradable-shared hold into
// an exclusive hold. It blocks until every plain shared reader has
// released. Only valid while holding the upgrade token.
func (m *RWUpgradeMutex) UpgradeToExclusive() {
	m.mu.RUnlock()
	m.mu.Lock()
}

// DowngradeToUpgradable converts an exclusive hold reached via
// UpgradeToExclusive back to upgradable-shared, without releasing the
// upgrade token.
func (m *RWUpgradeMutex) DowngradeToUpgradable() {
	m.mu.Unlock()
	m.mu.RLock()
}

// ReleaseExclusiveFromUpgrade fully releases a hold currently in
// exclusive mode reached via UpgradeToExclusive, without an
// intervening downgrade.
func (m *RWUpgradeMutex) ReleaseExclusiveFromUpgrade() {
	m.mu.Unlock()
	m.upgrade.Unlock()
}
