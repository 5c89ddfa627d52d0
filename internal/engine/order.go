package engine

import (
	"time"

	"hindsight/internal/collab"
	"hindsight/internal/common"
	"hindsight/internal/money"
)

// Order is the engine's mutable order record. BrokerID is assigned on
// accept, as "B"+ID (spec §3).
type Order struct {
	ID         string
	BrokerID   string
	Symbol     string
	Side       common.Side
	Type       common.OrderType
	Quantity   uint64
	Price      money.Amount // absent (zero value) for MARKET orders
	HasPrice   bool
	TIF        common.TimeInForce
	ExpireTime *time.Time
	Label      string
	State      common.OrderState

	// PositionID names the position (by its opening order's id) this order
	// acts against. Empty means: opening a fresh position, anchored at
	// this order's own id, once it fills (spec §4.3′).
	PositionID string
}

func (o *Order) isTerminal() bool {
	return o.State.IsTerminal()
}

// Position is re-exported from collab so engine code and the
// ExecutionDatabase collaborator share one definition (spec §3).
type Position = collab.Position
