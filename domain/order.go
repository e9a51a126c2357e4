package domain

// Side is which side of the book an order rests on.
type Side int

const (
	Ask Side = iota
	Bid

	// sideCount counts the constants above it and must stay last.
	sideCount
)

// OtherSide's correctness depends on there being exactly two sides; if
// a third is ever added above sideCount, this array length goes
// negative and the package fails to compile, which is the point.
var _ [2 - sideCount]struct{}

// OtherSide returns the complement of s within {Ask, Bid}.
func OtherSide(s Side) Side {
	return 1 - s
}

func (s Side) String() string {
	if s == Ask {
		return "Ask"
	}
	return "Bid"
}

// Order is the immutable shape of a resting or in-flight order, save
// for Quantity, which stores mutate in place while the order is held
// under an exclusive lock.
type Order struct {
	Side     Side
	Price    Price
	Quantity uint64
}

// OrderData is the owning, identified wrapper around an Order.
// Identity is ID; Order is copied by value, which gives a full
// independent copy since Price holds only an immutable
// decimal.Decimal.
type OrderData struct {
	ID    ID
	Order Order
}

// Satisfied reports whether the order's quantity has reached zero.
func (od OrderData) Satisfied() bool {
	return od.Order.Quantity == 0
}

// Clone returns an independent copy suitable for handing to a caller
// across a lock boundary. Order is already a plain value type, so
// Clone is a normal Go copy — named explicitly at call sites that
// cross a lock boundary, since returning a reference into live store
// state there is an easy mistake to reintroduce.
func (od OrderData) Clone() OrderData {
	return OrderData{ID: od.ID, Order: od.Order}
}
