package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hindsight/internal/collab"
	"hindsight/internal/common"
	"hindsight/internal/config"
	"hindsight/internal/events"
	"hindsight/internal/money"
)

// --- Setup & Helpers --------------------------------------------------------

type recordingSink struct {
	events []events.Event
}

func (s *recordingSink) HandleEvent(ev events.Event) {
	s.events = append(s.events, ev)
}

func (s *recordingSink) kinds() []string {
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.Kind()
	}
	return out
}

func testInstrument(symbol string, tickSize float64) common.Instrument {
	return common.Instrument{
		Symbol:         symbol,
		QuoteCurrency:  "USD",
		SecurityType:   common.FX,
		TickSize:       tickSize,
		PricePrecision: 5,
		MinTradeSize:   1,
		MaxTradeSize:   1_000_000,
		MinStopTicks:   5,
		MinLimitTicks:  5,
	}
}

func createTestEngine(ins common.Instrument, opts ...Option) (*Engine, *recordingSink) {
	catalog := common.NewCatalog(ins)
	cfg := config.New(100000, "USD")
	sink := &recordingSink{}
	base := []Option{
		WithGUIDFactory(collab.NewSeededGUIDFactory(7)),
		WithFillModel(collab.NewBernoulliFillModel(7)),
		WithExecutionDatabase(collab.NewInMemoryExecutionDatabase()),
	}
	eng := New(cfg, catalog, "ACC-1", sink, append(base, opts...)...)
	return eng, sink
}

func px(v float64) money.Amount { return money.New(v, 5) }

func tickAt(symbol string, bid, ask float64, t time.Time) common.Tick {
	return common.Tick{Symbol: symbol, Bid: px(bid), Ask: px(ask), Timestamp: t}
}

var epoch = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) // a Wednesday

// --- Tests ------------------------------------------------------------------

func TestMarketBuy_NoSlip(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, sink := createTestEngine(ins, WithFillModel(collab.NewBernoulliFillModel(1))) // pSlipped defaults 0
	eng.ProcessTick(tickAt("EURUSD", 1.1000, 1.1002, epoch))

	eng.HandleSubmitOrder(SubmitOrder{
		Order: NewOrderRequest{ID: "o1", Symbol: "EURUSD", Side: common.Buy, Type: common.Market, Quantity: 1000},
	})

	assert.Equal(t, []string{"OrderSubmitted", "OrderAccepted", "AccountState", "OrderFilled"}, sink.kinds())
	filled := sink.events[3].(events.OrderFilled)
	assert.Equal(t, 1.1002, filled.FillPrice)
	assert.Equal(t, "BUY", filled.Side)
}

func TestStopBuy_TriggersOnAskAboveTouch(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, sink := createTestEngine(ins)
	eng.ProcessTick(tickAt("EURUSD", 1.0990, 1.0992, epoch))

	eng.HandleSubmitOrder(SubmitOrder{
		Order: NewOrderRequest{
			ID: "o1", Symbol: "EURUSD", Side: common.Buy, Type: common.Stop,
			Quantity: 1000, Price: px(1.1000), HasPrice: true,
		},
	})
	assert.Contains(t, sink.kinds(), "OrderWorking")

	eng.ProcessTick(tickAt("EURUSD", 1.1005, 1.1007, epoch.Add(time.Second)))
	assert.Contains(t, sink.kinds(), "OrderFilled")
}

func TestStopBuy_FillsOnExactTouch(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	// is_stop_filled=false: the touch must still fill on the >= branch alone.
	fillModel := collab.NewBernoulliFillModel(3, collab.WithStopFillProbability(0))
	eng, sink := createTestEngine(ins, WithFillModel(fillModel))
	eng.ProcessTick(tickAt("EURUSD", 1.0990, 1.0992, epoch))

	eng.HandleSubmitOrder(SubmitOrder{
		Order: NewOrderRequest{
			ID: "o1", Symbol: "EURUSD", Side: common.Buy, Type: common.Stop,
			Quantity: 1000, Price: px(1.1020), HasPrice: true,
		},
	})

	eng.ProcessTick(tickAt("EURUSD", 1.1018, 1.1020, epoch.Add(time.Second)))

	var filled events.OrderFilled
	var sawFilled bool
	for _, ev := range sink.events {
		if f, ok := ev.(events.OrderFilled); ok {
			filled, sawFilled = f, true
		}
	}
	assert.True(t, sawFilled)
	assert.Equal(t, 1.1020, filled.FillPrice)
}

func TestLimitSell_FillsWithSlippage(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	fillModel := collab.NewBernoulliFillModel(9, collab.WithSlipProbability(1.0))
	eng, sink := createTestEngine(ins, WithFillModel(fillModel))
	eng.ProcessTick(tickAt("EURUSD", 1.0990, 1.0992, epoch))

	eng.HandleSubmitOrder(SubmitOrder{
		Order: NewOrderRequest{
			ID: "o1", Symbol: "EURUSD", Side: common.Sell, Type: common.Limit,
			Quantity: 1000, Price: px(1.1010), HasPrice: true,
		},
	})

	eng.ProcessTick(tickAt("EURUSD", 1.1015, 1.1017, epoch.Add(time.Second)))

	var filled events.OrderFilled
	for _, ev := range sink.events {
		if f, ok := ev.(events.OrderFilled); ok {
			filled = f
		}
	}
	// Sell limit fills at the order price minus one slippage unit (one tick).
	assert.InDelta(t, 1.10099, filled.FillPrice, 1e-9)
}

func TestOCO_FillCancelsPartner(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, sink := createTestEngine(ins)
	eng.ProcessTick(tickAt("EURUSD", 1.1000, 1.1002, epoch))

	eng.HandleSubmitAtomicOrder(SubmitAtomicOrder{
		Atomic: AtomicOrder{
			Entry:    NewOrderRequest{ID: "entry", Symbol: "EURUSD", Side: common.Buy, Type: common.Market, Quantity: 1000},
			StopLoss: NewOrderRequest{ID: "sl", Symbol: "EURUSD", Side: common.Sell, Type: common.Stop, Quantity: 1000, Price: px(1.0950), HasPrice: true},
			TakeProfit: &NewOrderRequest{
				ID: "tp", Symbol: "EURUSD", Side: common.Sell, Type: common.Limit, Quantity: 1000, Price: px(1.1050), HasPrice: true,
			},
		},
	})

	_, slWorking := eng.reg.getWorking("sl")
	_, tpWorking := eng.reg.getWorking("tp")
	assert.True(t, slWorking)
	assert.True(t, tpWorking)

	eng.ProcessTick(tickAt("EURUSD", 1.1052, 1.1055, epoch.Add(time.Second)))

	_, slStillWorking := eng.reg.getWorking("sl")
	_, tpStillWorking := eng.reg.getWorking("tp")
	assert.False(t, slStillWorking, "stop-loss should be cancelled once take-profit fills")
	assert.False(t, tpStillWorking)

	var sawFilled, sawCancelled bool
	for _, ev := range sink.events {
		switch e := ev.(type) {
		case events.OrderFilled:
			if e.OrderID == "tp" {
				sawFilled = true
			}
		case events.OrderCancelled:
			if e.OrderID == "sl" {
				sawCancelled = true
			}
		}
	}
	assert.True(t, sawFilled)
	assert.True(t, sawCancelled)
}

func TestOCO_PendingSiblingRejectedWhenFirstChildFails(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, sink := createTestEngine(ins)
	eng.ProcessTick(tickAt("EURUSD", 1.1000, 1.1002, epoch))

	eng.HandleSubmitAtomicOrder(SubmitAtomicOrder{
		Atomic: AtomicOrder{
			Entry: NewOrderRequest{ID: "entry", Symbol: "EURUSD", Side: common.Buy, Type: common.Market, Quantity: 1000},
			// Zero quantity fails size validation outright, so "sl" is
			// rejected before "tp" is ever reached by releaseChildren.
			StopLoss: NewOrderRequest{ID: "sl", Symbol: "EURUSD", Side: common.Sell, Type: common.Stop, Quantity: 0, Price: px(1.0950), HasPrice: true},
			TakeProfit: &NewOrderRequest{
				ID: "tp", Symbol: "EURUSD", Side: common.Sell, Type: common.Limit, Quantity: 1000, Price: px(1.1050), HasPrice: true,
			},
		},
	})

	var slRejected, tpRejected bool
	for _, ev := range sink.events {
		if r, ok := ev.(events.OrderRejected); ok {
			switch r.OrderID {
			case "sl":
				slRejected = true
			case "tp":
				tpRejected = true
				assert.Equal(t, "OCO order rejected from sl", r.Reason)
			}
		}
	}
	assert.True(t, slRejected)
	assert.True(t, tpRejected, "the still-pending tp sibling must also get a terminal event")
	_, tpWorking := eng.reg.getWorking("tp")
	assert.False(t, tpWorking)
}

func TestLimitOrder_NoPriorTick_RejectsNoMarket(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, sink := createTestEngine(ins)

	eng.HandleSubmitOrder(SubmitOrder{
		Order: NewOrderRequest{
			ID: "o1", Symbol: "EURUSD", Side: common.Buy, Type: common.Limit,
			Quantity: 1000, Price: px(1.1000), HasPrice: true,
		},
	})

	var rejected events.OrderRejected
	var sawRejected bool
	for _, ev := range sink.events {
		if r, ok := ev.(events.OrderRejected); ok {
			rejected, sawRejected = r, true
		}
	}
	assert.True(t, sawRejected)
	assert.Contains(t, rejected.Reason, "no market data available")
	_, working := eng.reg.getWorking("o1")
	assert.False(t, working)
}

func TestWorkingOrder_ExpiresAtExpireTime(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, sink := createTestEngine(ins)
	eng.ProcessTick(tickAt("EURUSD", 1.0990, 1.0992, epoch))

	expiry := epoch.Add(time.Minute)
	eng.HandleSubmitOrder(SubmitOrder{
		Order: NewOrderRequest{
			ID: "o1", Symbol: "EURUSD", Side: common.Buy, Type: common.Stop,
			Quantity: 1000, Price: px(1.2000), HasPrice: true, TIF: common.GTD,
			ExpireTime: &expiry,
		},
	})

	eng.ProcessTick(tickAt("EURUSD", 1.0991, 1.0993, expiry.Add(time.Second)))

	assert.Contains(t, sink.kinds(), "OrderExpired")
	_, stillWorking := eng.reg.getWorking("o1")
	assert.False(t, stillWorking)
}

func TestRollover_TriplesOnWednesday(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	db := collab.NewInMemoryExecutionDatabase()
	rolloverCalc := constantRollover{rate: 0.0001}
	eng, sink := createTestEngine(ins, WithExecutionDatabase(db), WithRolloverCalculator(rolloverCalc))

	db.PutPosition("pos-1", collab.Position{
		ID: "pos-1", Symbol: "EURUSD", MarketPosition: common.Long,
		Quantity: 100000, AverageOpen: px(1.1000), EntryDirection: common.Buy,
	})

	// epoch is a Wednesday. The rollover moment is 17:00 US/Eastern minus
	// 56 minutes, which on this date (standard time, UTC-5) is 21:04 UTC;
	// this tick lands after it.
	afterRollover := time.Date(2026, 3, 4, 22, 0, 0, 0, time.UTC)
	eng.ProcessTick(tickAt("EURUSD", 1.1000, 1.1000, afterRollover))

	var accountEvents []events.AccountState
	for _, ev := range sink.events {
		if a, ok := ev.(events.AccountState); ok {
			accountEvents = append(accountEvents, a)
		}
	}
	assert.NotEmpty(t, accountEvents)
	last := accountEvents[len(accountEvents)-1]
	// 1.1000 * 100000 * 0.0001 * 1.0 * 3 = 33.0
	assert.InDelta(t, 100033.0, last.CashBalance, 1e-6)
}

type constantRollover struct{ rate float64 }

func (c constantRollover) CalcOvernightRate(symbol string, t time.Time) (float64, error) {
	return c.rate, nil
}

func TestDuplicateOrderID_Panics(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, _ := createTestEngine(ins)
	eng.ProcessTick(tickAt("EURUSD", 1.1000, 1.1002, epoch))

	req := NewOrderRequest{ID: "dup", Symbol: "EURUSD", Side: common.Buy, Type: common.Market, Quantity: 1000}
	eng.HandleSubmitOrder(SubmitOrder{Order: req})

	assert.PanicsWithValue(t, ErrDuplicateOrderID, func() {
		eng.HandleSubmitOrder(SubmitOrder{Order: req})
	})
}

func TestCancelOrder_NotFound_EmitsCancelReject(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, sink := createTestEngine(ins)

	eng.HandleCancelOrder(CancelOrder{OrderID: "missing"})

	assert.Equal(t, []string{"OrderCancelReject"}, sink.kinds())
}

func TestModifyOrder_InvalidPrice_EmitsCancelReject(t *testing.T) {
	ins := testInstrument("EURUSD", 0.00001)
	eng, sink := createTestEngine(ins)
	eng.ProcessTick(tickAt("EURUSD", 1.0990, 1.0992, epoch))

	eng.HandleSubmitOrder(SubmitOrder{
		Order: NewOrderRequest{
			ID: "o1", Symbol: "EURUSD", Side: common.Buy, Type: common.Stop,
			Quantity: 1000, Price: px(1.1000), HasPrice: true,
		},
	})

	eng.HandleModifyOrder(ModifyOrder{
		OrderID: "o1", ModifiedQuantity: 1000, ModifiedPrice: px(1.0991), HasPrice: true,
	})

	assert.Equal(t, "OrderCancelReject", sink.kinds()[len(sink.kinds())-1])
	order, ok := eng.reg.getWorking("o1")
	assert.True(t, ok)
	assert.Equal(t, common.Working, order.State)
}
