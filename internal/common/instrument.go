package common

import "hindsight/internal/money"

// Instrument is static, immutable per-symbol metadata. It never changes
// once loaded into the catalog.
type Instrument struct {
	Symbol         string
	QuoteCurrency  string
	SecurityType   SecurityType
	TickSize       float64
	PricePrecision int32
	MinTradeSize   uint64
	MaxTradeSize   uint64
	MinStopTicks   uint32
	MinLimitTicks  uint32
}

// Price rounds a raw float to this instrument's price precision.
func (i Instrument) Price(value float64) money.Amount {
	return money.New(value, i.PricePrecision)
}

// Slippage is the instrument's slippage unit, defined as one tick.
func (i Instrument) Slippage() money.Amount {
	return i.Price(i.TickSize)
}

// MinStopDistance is the minimum stop distance expressed as a price amount.
func (i Instrument) MinStopDistance() money.Amount {
	return i.Price(i.TickSize * float64(i.MinStopTicks))
}

// MinLimitDistance is the minimum limit distance expressed as a price
// amount.
func (i Instrument) MinLimitDistance() money.Amount {
	return i.Price(i.TickSize * float64(i.MinLimitTicks))
}

// Catalog is the static, read-only instrument table.
type Catalog struct {
	instruments map[string]Instrument
}

// NewCatalog builds a catalog from a set of instruments, keyed by symbol.
func NewCatalog(instruments ...Instrument) *Catalog {
	c := &Catalog{instruments: make(map[string]Instrument, len(instruments))}
	for _, ins := range instruments {
		c.instruments[ins.Symbol] = ins
	}
	return c
}

// Get looks up an instrument by symbol.
func (c *Catalog) Get(symbol string) (Instrument, bool) {
	ins, ok := c.instruments[symbol]
	return ins, ok
}
