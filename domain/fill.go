package domain

import (
	"sync"
	"time"
)

// Fill represents one match between a resting (maker) order and an
// arriving (taker) order. It is not part of either store — it is an
// emitted record of a match event, built and recycled through a pool
// since the matcher can produce many of these per second.
type Fill struct {
	MakerID   ID
	TakerID   ID
	Price     Price
	Quantity  uint64
	Timestamp time.Time
}

var fillPool = sync.Pool{
	New: func() any { return &Fill{} },
}

// NewFill builds a Fill from the pool.
func NewFill(makerID, takerID ID, price Price, quantity uint64) *Fill {
	f := fillPool.Get().(*Fill)
	f.MakerID = makerID
	f.TakerID = takerID
	f.Price = price
	f.Quantity = quantity
	f.Timestamp = time.Now()
	return f
}

// Release returns the Fill to the pool. Callers must not use f after
// calling Release.
func (f *Fill) Release() {
	*f = Fill{}
	fillPool.Put(f)
}
