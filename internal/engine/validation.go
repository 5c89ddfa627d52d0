package engine

import (
	"fmt"

	"hindsight/internal/common"
)

// validatePrice implements spec §4.5's four-way rule table. It returns a
// human-readable rejection reason, or "" if the order's price is valid
// against the current market.
func validatePrice(o *Order, ins common.Instrument, tick common.Tick) string {
	if !o.HasPrice {
		return "" // MARKET orders carry no price to validate
	}

	minStop := ins.MinStopDistance()
	minLimit := ins.MinLimitDistance()

	switch {
	case o.Side == common.Buy && o.Type.IsStopKind():
		if o.Price.Lt(tick.Ask.Add(minStop)) {
			return fmt.Sprintf("BUY %s price %s below ask %s + min stop distance %s",
				o.Type, o.Price, tick.Ask, minStop)
		}
	case o.Side == common.Buy && o.Type == common.Limit:
		if o.Price.Gt(tick.Bid.Sub(minLimit)) {
			return fmt.Sprintf("BUY %s price %s above bid %s - min limit distance %s",
				o.Type, o.Price, tick.Bid, minLimit)
		}
	case o.Side == common.Sell && o.Type.IsStopKind():
		if o.Price.Gt(tick.Bid.Sub(minStop)) {
			return fmt.Sprintf("SELL %s price %s above bid %s - min stop distance %s",
				o.Type, o.Price, tick.Bid, minStop)
		}
	case o.Side == common.Sell && o.Type == common.Limit:
		if o.Price.Lt(tick.Ask.Add(minLimit)) {
			return fmt.Sprintf("SELL %s price %s below ask %s + min limit distance %s",
				o.Type, o.Price, tick.Ask, minLimit)
		}
	}
	return ""
}

// validateSize checks the order quantity against the instrument's
// min/max trade size.
func validateSize(o *Order, ins common.Instrument) string {
	if o.Quantity > ins.MaxTradeSize {
		return fmt.Sprintf("quantity %d exceeds max trade size %d", o.Quantity, ins.MaxTradeSize)
	}
	if o.Quantity < ins.MinTradeSize {
		return fmt.Sprintf("quantity %d below min trade size %d", o.Quantity, ins.MinTradeSize)
	}
	return ""
}
