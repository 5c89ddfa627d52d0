package engine

import (
	"fmt"

	"hindsight/internal/collab"
	"hindsight/internal/common"
	"hindsight/internal/money"
)

// testFill implements spec §4.1's fill-trigger table: which side of the
// incoming tick a working order compares against. Every comparison is
// inclusive, so a tick exactly at the order price fills without consulting
// the fill model's IsStopFilled/IsLimitFilled; only IsSlipped is asked, to
// decide the fill price.
func (e *Engine) testFill(o *Order, tick common.Tick, slippage money.Amount) (money.Amount, bool) {
	slip := func(base money.Amount, up bool) money.Amount {
		if !e.fillModel.IsSlipped() {
			return base
		}
		if up {
			return base.Add(slippage)
		}
		return base.Sub(slippage)
	}

	switch {
	case o.Side == common.Buy && o.Type.IsStopKind():
		if tick.Ask.Ge(o.Price) {
			return slip(o.Price, true), true
		}
	case o.Side == common.Buy && o.Type == common.Limit:
		if tick.Ask.Le(o.Price) {
			return slip(o.Price, true), true
		}
	case o.Side == common.Sell && o.Type.IsStopKind():
		if tick.Bid.Le(o.Price) {
			return slip(o.Price, false), true
		}
	case o.Side == common.Sell && o.Type == common.Limit:
		if tick.Bid.Ge(o.Price) {
			return slip(o.Price, false), true
		}
	}
	return money.Amount{}, false
}

// processOrder implements spec §4.3's six-step handling of a freshly
// submitted order: duplicate-id detection, instrument lookup, size and
// price validation, immediate fill for MARKET orders, or registration into
// the working set for everything else.
func (e *Engine) processOrder(o *Order) {
	if e.seenIDs[o.ID] {
		e.logger.Error().Str("order_id", o.ID).Msg("duplicate order id resubmitted")
		panic(ErrDuplicateOrderID)
	}
	e.seenIDs[o.ID] = true
	// Recorded up front, under its own id, so GetOrder can find it (and see
	// its state change through this same pointer) regardless of how
	// processing ends: rejected, working, or filled outright.
	e.db.PutOrder(o.ID, o)

	ins, ok := e.catalog.Get(o.Symbol)
	if !ok {
		e.rejectOrder(o, fmt.Sprintf("unknown symbol %q", o.Symbol))
		return
	}
	if reason := validateSize(o, ins); reason != "" {
		e.rejectOrder(o, reason)
		return
	}

	tick, hasTick := e.market[o.Symbol]
	if !hasTick {
		e.rejectOrder(o, "no market data available for "+o.Symbol)
		return
	}
	if o.Type != common.Market {
		if reason := validatePrice(o, ins, tick); reason != "" {
			e.rejectOrder(o, reason)
			return
		}
	}

	o.BrokerID = "B" + o.ID
	o.State = common.Accepted
	e.emitAccepted(o)

	if o.Type == common.Market {
		fillPrice := tick.Ask
		if o.Side == common.Sell {
			fillPrice = tick.Bid
		}
		e.fillOrder(o, fillPrice)
		return
	}

	o.State = common.Working
	e.reg.addWorking(o)
	e.emitWorking(o)
}

// rejectOrder implements the rejection path of spec §4.3/§4.4: reject
// before ever going working, and unwind any linkage the order was already
// party to (a bracket's pending children, an OCO partner).
func (e *Engine) rejectOrder(o *Order, reason string) {
	o.State = common.Rejected
	e.emitRejected(o, reason)
	e.reg.discardChildren(o.ID)
	e.checkOCO(o.ID)
}

// expireOrder implements spec §4.1's expiry path.
func (e *Engine) expireOrder(o *Order) {
	o.State = common.Expired
	e.emitExpired(o.ID)
	e.reg.discardChildren(o.ID)
	e.checkOCO(o.ID)
}

// checkOCO implements spec §4.4: if id was one leg of an OCO pair, the
// other leg is resolved. A partner already working is cancelled. A partner
// that has not been submitted yet — still sitting in its parent's
// atomic_children list, waiting on releaseChildren to reach it — is
// rejected directly, since it will never be allowed to work now that its
// sibling is done.
func (e *Engine) checkOCO(id string) {
	partner, had := e.reg.unlinkOCO(id)
	if !had {
		return
	}
	if order, ok := e.reg.getWorking(partner); ok {
		e.reg.removeWorking(partner)
		order.State = common.Cancelled
		e.emitCancelled(partner)
		return
	}
	if order, ok := e.reg.findPendingChild(partner); ok {
		e.db.PutOrder(order.ID, order)
		e.rejectOrder(order, fmt.Sprintf("OCO order rejected from %s", id))
	}
}

// releaseChildren implements spec §4.4's atomic-bracket release: once the
// entry order fills, submit its stop-loss and (if present) take-profit
// children. If one child's own submission already resolved the OCO pair
// (rejected and cascaded via checkOCO, which rejects the still-pending
// sibling directly) before its sibling is reached, the sibling is not
// submitted a second time. The parent's child list stays registered until
// every child has been dealt with, so checkOCO can still find a
// not-yet-submitted sibling by id.
func (e *Engine) releaseChildren(parentID string) {
	children, ok := e.reg.atomicChildrenOf(parentID)
	if !ok {
		return
	}

	hadPartner := make(map[string]bool, len(children))
	for _, c := range children {
		_, hadPartner[c.ID] = e.reg.ocoPartner(c.ID)
	}
	for _, child := range children {
		if hadPartner[child.ID] {
			if _, stillLinked := e.reg.ocoPartner(child.ID); !stillLinked {
				continue
			}
		}
		e.submit(child)
	}
	e.reg.cleanUpChildren(parentID)
}

func directionOf(side common.Side) common.MarketPosition {
	if side == common.Buy {
		return common.Long
	}
	return common.Short
}

// fillOrder implements spec §4.3′ and §4.7: it realises the order's fill,
// adjusts the account for any closed PnL and commission, syncs the open
// position, then emits the fill and any linkage cascades.
func (e *Engine) fillOrder(o *Order, fillPrice money.Amount) {
	o.State = common.Filled

	ins, _ := e.catalog.Get(o.Symbol)
	currency := ins.QuoteCurrency

	priceType := common.Ask
	if o.Side == common.Sell {
		priceType = common.Bid
	}
	fx, err := e.fxCalc.GetRate(currency, e.cfg.AccountCurrency, priceType, e.bidRates(), e.askRates())
	if err != nil {
		e.logger.Warn().Err(err).Str("symbol", o.Symbol).Msg("no fx rate available for fill, using 1.0")
		fx = 1.0
	}

	commission := e.commissionCalc.Calculate(o.Symbol, o.Quantity, fillPrice, fx, currency, e.acct.scale)
	e.applyFillToPosition(o, fillPrice, fx, commission)

	// Account state is emitted before the fill event itself, so a reader of
	// the event stream always sees the commission/PnL attribution for a
	// fill already reflected in the account by the time the fill arrives
	// (spec §4.3′, §5).
	e.emitAccountState()
	e.emitFilled(o, currency, fillPrice.Float64())

	e.checkOCO(o.ID)
	e.releaseChildren(o.ID)
}

// applyFillToPosition implements spec §4.7's PnL rules: opening or adding
// to a position realises no PnL (commission still applies); closing or
// reducing realises PnL on the closed quantity; an order larger than the
// existing opposite position flips it, opening a fresh position at the
// fill price for the remainder.
//
// The position is looked up and written through e.db (spec §4.3′'s
// get_position_for_order), keyed by an anchor id: o.PositionID when this
// order names an existing position to act on, otherwise the order's own
// id, which becomes the anchor a fresh position opens under.
func (e *Engine) applyFillToPosition(o *Order, fillPrice money.Amount, fx float64, commission money.Amount) {
	anchorID := o.PositionID
	if anchorID == "" {
		anchorID = o.ID
	}

	pos, exists := e.db.GetPositionForOrder(anchorID)

	if exists && pos.MarketPosition == common.Flat {
		e.logger.Error().Str("symbol", o.Symbol).Msg("position tracked but flat")
		panic(ErrFlatPosition)
	}

	if !exists {
		e.openPosition(anchorID, o, fillPrice)
		e.acct.applyClosingPnL(money.Zero(e.acct.scale), commission)
		return
	}

	if pos.EntryDirection == o.Side {
		total := pos.AverageOpen.MulInt(int64(pos.Quantity)).Add(fillPrice.MulInt(int64(o.Quantity)))
		pos.Quantity += o.Quantity
		pos.AverageOpen = total.DivInt(int64(pos.Quantity))
		e.syncPosition(&pos)
		e.acct.applyClosingPnL(money.Zero(e.acct.scale), commission)
		return
	}

	closeQty := pos.Quantity
	if o.Quantity < closeQty {
		closeQty = o.Quantity
	}

	var pnl money.Amount
	if pos.MarketPosition == common.Long {
		pnl = fillPrice.Sub(pos.AverageOpen).MulInt(int64(closeQty)).MulFloat(fx)
	} else {
		pnl = pos.AverageOpen.Sub(fillPrice).MulInt(int64(closeQty)).MulFloat(fx)
	}
	e.acct.applyClosingPnL(pnl.AtScale(e.acct.scale), commission)

	switch {
	case o.Quantity == pos.Quantity:
		e.closePosition(anchorID)
	case o.Quantity < pos.Quantity:
		pos.Quantity -= o.Quantity
		e.syncPosition(&pos)
	default: // o.Quantity > pos.Quantity: flips direction
		e.closePosition(anchorID)
		e.openPosition(o.ID, o, fillPrice)
		flipped, _ := e.db.GetPositionForOrder(o.ID)
		flipped.Quantity = o.Quantity - closeQty
		e.syncPosition(&flipped)
	}
}

func (e *Engine) openPosition(anchorID string, o *Order, fillPrice money.Amount) {
	pos := collab.Position{
		ID:             anchorID,
		Symbol:         o.Symbol,
		MarketPosition: directionOf(o.Side),
		Quantity:       o.Quantity,
		AverageOpen:    fillPrice,
		EntryDirection: o.Side,
	}
	e.syncPosition(&pos)
}

func (e *Engine) closePosition(anchorID string) {
	e.db.RemovePosition(anchorID)
}

func (e *Engine) syncPosition(pos *collab.Position) {
	e.db.PutPosition(pos.ID, *pos)
}
