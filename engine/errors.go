package engine

import "errors"

// ErrNotFound is returned by GetData when the id names no order, or
// an order that has already been fully satisfied.
var ErrNotFound = errors.New("engine: order not found")
