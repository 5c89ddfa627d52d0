package engine

import (
	"time"

	"hindsight/internal/common"
	"hindsight/internal/money"
)

// AccountInquiry requests a point-in-time AccountState event.
type AccountInquiry struct {
	AccountID string
}

// NewOrderRequest describes an order to submit, before the engine assigns
// it lifecycle state.
type NewOrderRequest struct {
	ID       string
	Symbol   string
	Side     common.Side
	Type     common.OrderType
	Quantity uint64
	Price      money.Amount
	HasPrice   bool
	TIF        common.TimeInForce
	ExpireTime *time.Time // GTD orders only; nil for GTC/DAY (spec §3)
	Label      string
}

func (r NewOrderRequest) toOrder() *Order {
	return &Order{
		ID:         r.ID,
		Symbol:     r.Symbol,
		Side:       r.Side,
		Type:       r.Type,
		Quantity:   r.Quantity,
		Price:      r.Price,
		HasPrice:   r.HasPrice,
		TIF:        r.TIF,
		ExpireTime: r.ExpireTime,
		Label:      r.Label,
		State:      common.Initialized,
	}
}

// SubmitOrder submits a single standalone order.
type SubmitOrder struct {
	AccountID  string
	TraderID   string
	StrategyID string
	PositionID string
	Order      NewOrderRequest
}

// AtomicOrder is a bracket: an entry plus one or two exit children.
type AtomicOrder struct {
	Entry      NewOrderRequest
	StopLoss   NewOrderRequest
	TakeProfit *NewOrderRequest // optional
}

// SubmitAtomicOrder submits an entry order plus its bracket children.
type SubmitAtomicOrder struct {
	AccountID  string
	TraderID   string
	StrategyID string
	PositionID string
	Atomic     AtomicOrder
}

// ModifyOrder requests a quantity/price change to a working order.
type ModifyOrder struct {
	AccountID        string
	OrderID          string
	ModifiedQuantity uint64
	ModifiedPrice    money.Amount
	HasPrice         bool
}

// CancelOrder requests cancellation of a working order.
type CancelOrder struct {
	AccountID string
	OrderID   string
}
