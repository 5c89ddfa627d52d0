package collab

import (
	"sync"

	"github.com/tidwall/btree"
)

// InMemoryExecutionDatabase is a reference ExecutionDatabase: the engine's
// one authoritative store of orders and open positions. The engine reads
// it (GetOrder, GetPositionForOrder, GetPositionsOpen) to decide what each
// fill does, and writes back through it (PutOrder, PutPosition,
// RemovePosition) as the only way that state changes.
//
// Open positions are kept in a btree.BTreeG ordered by position id, the
// same structure the teacher (fenrir) uses for order-book price levels,
// repurposed here for positions. GetPositionsOpen hands them back as a
// plain Go map, so a caller that needs a stable order (spec §8's
// determinism requirement) sorts the ids itself, as the engine's rollover
// walk does.
type InMemoryExecutionDatabase struct {
	mu        sync.RWMutex
	orders    map[string]any
	positions *btree.BTreeG[Position]
}

// NewInMemoryExecutionDatabase builds an empty reference database.
func NewInMemoryExecutionDatabase() *InMemoryExecutionDatabase {
	return &InMemoryExecutionDatabase{
		orders: make(map[string]any),
		positions: btree.NewBTreeG(func(a, b Position) bool {
			return a.ID < b.ID
		}),
	}
}

// PutOrder records an order under its id.
func (db *InMemoryExecutionDatabase) PutOrder(id string, order any) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.orders[id] = order
}

// PutPosition upserts a position, keyed by the order id it was opened
// under (spec's get_position_for_order looks positions up by order id).
func (db *InMemoryExecutionDatabase) PutPosition(orderID string, p Position) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p.ID = orderID
	if p.MarketPosition == 0 && p.Quantity == 0 {
		db.positions.Delete(p)
		return
	}
	db.positions.Set(p)
}

// RemovePosition deletes any position tracked under orderID.
func (db *InMemoryExecutionDatabase) RemovePosition(orderID string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.positions.Delete(Position{ID: orderID})
}

func (db *InMemoryExecutionDatabase) GetOrder(id string) (any, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	o, ok := db.orders[id]
	return o, ok
}

func (db *InMemoryExecutionDatabase) GetPositionForOrder(orderID string) (Position, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.positions.Get(Position{ID: orderID})
}

// GetPositionsOpen returns every open position, keyed by order id. The
// result is a Go map, so its iteration order is not the btree's
// position-id order; the engine sorts this map's keys before iterating it
// for reproducibility — see engine.rollover.
func (db *InMemoryExecutionDatabase) GetPositionsOpen() map[string]Position {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make(map[string]Position, db.positions.Len())
	db.positions.Scan(func(p Position) bool {
		out[p.ID] = p
		return true
	})
	return out
}
