package collab

import "hindsight/internal/money"

// BasisPointCommissionCalculator charges a flat basis-point rate on the
// notional value of every fill, converted into account currency via fx.
type BasisPointCommissionCalculator struct {
	RateBP float64
}

// NewBasisPointCommissionCalculator builds a calculator charging rateBP
// basis points (1bp = 0.0001) of notional per fill.
func NewBasisPointCommissionCalculator(rateBP float64) *BasisPointCommissionCalculator {
	return &BasisPointCommissionCalculator{RateBP: rateBP}
}

// Calculate returns the commission owed, in account currency at scale, for
// a fill of quantity units at fillPrice, converted at fx.
func (c *BasisPointCommissionCalculator) Calculate(symbol string, quantity uint64, fillPrice money.Amount, fx float64, currency string, scale int32) money.Amount {
	notional := fillPrice.MulInt(int64(quantity)).MulFloat(fx)
	return notional.MulFloat(c.RateBP / 10000.0).AtScale(scale)
}
