package common

import (
	"time"

	"hindsight/internal/money"
)

// Tick is an immutable top-of-book quote: the latest bid/ask for a symbol
// at a point in time. No depth beyond best bid/ask is modelled.
type Tick struct {
	Symbol    string
	Bid       money.Amount
	Ask       money.Amount
	Timestamp time.Time
}

// Mid returns the midpoint of bid and ask, at the wider of their two scales.
func (t Tick) Mid() money.Amount {
	return t.Bid.Add(t.Ask).MulFloat(0.5)
}
