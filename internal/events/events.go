// Package events defines the discriminated union of execution events the
// engine emits, and the single-sink contract it emits them through.
//
// The union is closed over nine members plus the account-state snapshot
// the spec calls out separately: Submitted, Accepted, Rejected, Working,
// Modified, Cancelled, CancelReject, Expired, Filled, AccountState. Every
// event carries its own generated id and the clock time at generation.
package events

import "time"

// Event is implemented by every concrete event type. Kind lets a sink
// switch on the concrete type without a type assertion chain if it only
// cares about routing, not payload.
type Event interface {
	Kind() string
	EventID() string
	EventTime() time.Time
}

// Sink is the single collaborator every event is dispatched to, in
// generation order.
type Sink interface {
	HandleEvent(Event)
}

// Base carries the fields common to every event. Construct it directly
// when building a concrete event: events.OrderFilled{Base: events.Base{ID:
// id, Time: t}, ...}.
type Base struct {
	ID   string
	Time time.Time
}

func (b Base) EventID() string      { return b.ID }
func (b Base) EventTime() time.Time { return b.Time }

// AccountState mirrors the shape a real broker emits for account snapshots
// and updates. Margins are always reported as zero; this engine performs
// no margin modelling.
type AccountState struct {
	Base
	AccountID          string
	Currency           string
	CashBalance        float64
	CashStartOfDay     float64
	CashActivityToday  float64
	MarginLiquidation  float64
	MarginMaintenance  float64
	MarginRatio        float64
	MarginCallStatus   byte
}

func (AccountState) Kind() string { return "AccountState" }

// NewAccountState builds an AccountState event with the fixed-zero margin
// fields the engine always reports.
func NewAccountState(id string, t time.Time, accountID, currency string, cashBalance, cashStartOfDay, cashActivityToday float64) AccountState {
	return AccountState{
		Base:              Base{ID: id, Time: t},
		AccountID:         accountID,
		Currency:          currency,
		CashBalance:       cashBalance,
		CashStartOfDay:    cashStartOfDay,
		CashActivityToday: cashActivityToday,
		MarginCallStatus:  'N',
	}
}

// OrderSubmitted is always emitted first for any inbound order, before it
// is validated.
type OrderSubmitted struct {
	Base
	OrderID string
}

func (OrderSubmitted) Kind() string { return "OrderSubmitted" }

// OrderAccepted marks an order as having passed validation.
type OrderAccepted struct {
	Base
	OrderID   string
	BrokerID  string
	Symbol    string
	Side      string
	OrderType string
}

func (OrderAccepted) Kind() string { return "OrderAccepted" }

// OrderRejected carries a human-readable rejection reason.
type OrderRejected struct {
	Base
	OrderID string
	Reason  string
}

func (OrderRejected) Kind() string { return "OrderRejected" }

// OrderWorking is emitted once an accepted non-market order is placed into
// the working set.
type OrderWorking struct {
	Base
	OrderID    string
	BrokerID   string
	Symbol     string
	Side       string
	OrderType  string
	Quantity   uint64
	Price      float64
	ExpireTime *time.Time
}

func (OrderWorking) Kind() string { return "OrderWorking" }

// OrderModified is emitted after a successful modify command.
type OrderModified struct {
	Base
	OrderID          string
	ModifiedQuantity uint64
	ModifiedPrice    float64
}

func (OrderModified) Kind() string { return "OrderModified" }

// OrderCancelled is emitted after a successful cancel, and for the losing
// side of an OCO pair.
type OrderCancelled struct {
	Base
	OrderID string
}

func (OrderCancelled) Kind() string { return "OrderCancelled" }

// OrderCancelReject is emitted when a cancel or modify command cannot be
// applied (order not found, zero quantity, and similar).
type OrderCancelReject struct {
	Base
	OrderID string
	Command string
	Reason  string
}

func (OrderCancelReject) Kind() string { return "OrderCancelReject" }

// OrderExpired is emitted when a working order's ExpireTime has passed
// without a fill.
type OrderExpired struct {
	Base
	OrderID string
}

func (OrderExpired) Kind() string { return "OrderExpired" }

// OrderFilled is emitted on execution, carrying the broker-shaped
// execution and position identifiers.
type OrderFilled struct {
	Base
	OrderID          string
	ExecutionID      string
	PositionIDBroker string
	Symbol           string
	Currency         string
	Side             string
	Quantity         uint64
	FillPrice        float64
}

func (OrderFilled) Kind() string { return "OrderFilled" }
