package domain

import "github.com/shopspring/decimal"

// priceScale is the number of decimal places preserved by Price.Key,
// the integer ordering key used by the price-indexed store. Equality
// and ordering for matching itself always go through decimal.Decimal,
// never through Key.
const priceScale = 8

// Price is a limit price. It wraps decimal.Decimal rather than a
// binary float so that two prices parsed from the same textual value
// always compare equal; binary float equality is unsuitable for
// matching, where two textually identical prices must be the same
// price.
type Price struct {
	value decimal.Decimal
}

// NewPriceFromInt builds a Price from an integer-valued price, as used
// throughout the engine's integer-valued test scenarios.
func NewPriceFromInt(i int64) Price {
	return Price{value: decimal.NewFromInt(i)}
}

// NewPriceFromFloat builds a Price from a float64 literal. Prefer
// NewPriceFromString when the value did not originate as a Go float
// literal, to avoid reintroducing binary-float imprecision.
func NewPriceFromFloat(f float64) Price {
	return Price{value: decimal.NewFromFloat(f)}
}

// NewPriceFromString parses a decimal price, e.g. "4.00" or "12345.6".
func NewPriceFromString(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{value: d}, nil
}

// Equal reports exact decimal equality.
func (p Price) Equal(o Price) bool {
	return p.value.Equal(o.value)
}

// Less reports strict decimal ordering.
func (p Price) Less(o Price) bool {
	return p.value.Cmp(o.value) < 0
}

func (p Price) String() string {
	return p.value.String()
}

// Key returns a monotonic integer ordering key suitable for use as a
// red-black tree key, rounding to priceScale decimal places. Two
// prices that are Equal always produce the same Key.
func (p Price) Key() int64 {
	return p.value.Shift(priceScale).Round(0).IntPart()
}
