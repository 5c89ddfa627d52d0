package engine

import (
	"hindsight/internal/events"
)

// emit stamps an event with a fresh id and dispatches it to the sink,
// preserving the order emit is called in (spec §5's ordering guarantees;
// spec invariant 7: unique id, delivered in generation order).
func (e *Engine) emit(build func(base events.Base) events.Event) {
	base := events.Base{ID: e.guids.Generate(), Time: e.clock.Now()}
	e.sink.HandleEvent(build(base))
}

func (e *Engine) emitAccountState() {
	e.emit(func(base events.Base) events.Event {
		ev := events.NewAccountState(
			base.ID, base.Time, e.accountID, e.cfg.AccountCurrency,
			e.acct.capital.Float64(), e.acct.cashStartOfDay.Float64(), e.acct.cashActivityToday.Float64(),
		)
		return ev
	})
}

func (e *Engine) emitSubmitted(o *Order) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderSubmitted{Base: base, OrderID: o.ID}
	})
}

func (e *Engine) emitAccepted(o *Order) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderAccepted{
			Base:      base,
			OrderID:   o.ID,
			BrokerID:  o.BrokerID,
			Symbol:    o.Symbol,
			Side:      o.Side.String(),
			OrderType: o.Type.String(),
		}
	})
}

func (e *Engine) emitRejected(o *Order, reason string) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderRejected{Base: base, OrderID: o.ID, Reason: reason}
	})
}

func (e *Engine) emitWorking(o *Order) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderWorking{
			Base:       base,
			OrderID:    o.ID,
			BrokerID:   o.BrokerID,
			Symbol:     o.Symbol,
			Side:       o.Side.String(),
			OrderType:  o.Type.String(),
			Quantity:   o.Quantity,
			Price:      o.Price.Float64(),
			ExpireTime: o.ExpireTime,
		}
	})
}

func (e *Engine) emitModified(o *Order, qty uint64, price float64) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderModified{
			Base:             base,
			OrderID:          o.ID,
			ModifiedQuantity: qty,
			ModifiedPrice:    price,
		}
	})
}

func (e *Engine) emitCancelled(orderID string) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderCancelled{Base: base, OrderID: orderID}
	})
}

func (e *Engine) emitCancelReject(orderID, command, reason string) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderCancelReject{
			Base:    base,
			OrderID: orderID,
			Command: command,
			Reason:  reason,
		}
	})
}

func (e *Engine) emitExpired(orderID string) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderExpired{Base: base, OrderID: orderID}
	})
}

func (e *Engine) emitFilled(o *Order, currency string, fillPrice float64) {
	e.emit(func(base events.Base) events.Event {
		return events.OrderFilled{
			Base:             base,
			OrderID:          o.ID,
			ExecutionID:      "E-" + o.ID,
			PositionIDBroker: "ET-" + o.ID,
			Symbol:           o.Symbol,
			Currency:         currency,
			Side:             o.Side.String(),
			Quantity:         o.Quantity,
			FillPrice:        fillPrice,
		}
	})
}
