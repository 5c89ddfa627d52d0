// Package engine implements the deterministic, event-driven order
// execution simulator: it consumes ticks and commands and emits
// broker-shaped execution events while maintaining a cash account.
package engine

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hindsight/internal/collab"
	"hindsight/internal/common"
	"hindsight/internal/config"
	"hindsight/internal/events"
)

// Programmer errors (spec §7 category 1): conditions a correctly-behaving
// caller can never trigger. The engine panics with one of these rather
// than returning it, so a bug surfaces immediately at its call site instead
// of silently corrupting the event stream.
var (
	ErrDuplicateOrderID = errors.New("engine: duplicate order id resubmitted")
	ErrFlatPosition     = errors.New("engine: position tracked but flat")
)

// Engine is the core matching and bookkeeping state machine (spec §2). It
// is single-threaded and non-reentrant: a caller must not invoke a public
// method from inside a collaborator callback triggered by another public
// method (spec §5).
type Engine struct {
	cfg     config.Config
	catalog *common.Catalog
	logger  zerolog.Logger

	clock          collab.Clock
	guids          collab.GUIDFactory
	fillModel      collab.FillModel
	db             collab.ExecutionDatabase
	sink           events.Sink
	rolloverCalc   collab.RolloverInterestCalculator
	commissionCalc collab.CommissionCalculator
	fxCalc         collab.ExchangeRateCalculator

	accountID string
	market    map[string]common.Tick
	reg       *registry
	acct      *account
	seenIDs   map[string]bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

func WithClock(c collab.Clock) Option            { return func(e *Engine) { e.clock = c } }
func WithGUIDFactory(g collab.GUIDFactory) Option { return func(e *Engine) { e.guids = g } }
func WithFillModel(f collab.FillModel) Option     { return func(e *Engine) { e.fillModel = f } }
func WithExecutionDatabase(db collab.ExecutionDatabase) Option {
	return func(e *Engine) { e.db = db }
}
func WithRolloverCalculator(r collab.RolloverInterestCalculator) Option {
	return func(e *Engine) { e.rolloverCalc = r }
}
func WithCommissionCalculator(c collab.CommissionCalculator) Option {
	return func(e *Engine) { e.commissionCalc = c }
}
func WithExchangeRateCalculator(fx collab.ExchangeRateCalculator) Option {
	return func(e *Engine) { e.fxCalc = fx }
}
func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.logger = l } }

// noRolloverCalculator is the default RolloverInterestCalculator: every
// symbol reports as unconfigured, which applyRolloverInterest treats as an
// environmental gap (spec §7 category 3) rather than a fatal error.
type noRolloverCalculator struct{}

func (noRolloverCalculator) CalcOvernightRate(symbol string, t time.Time) (float64, error) {
	return 0, errRolloverNotConfigured
}

type rolloverNotConfiguredError string

func (e rolloverNotConfiguredError) Error() string { return string(e) }

const errRolloverNotConfigured = rolloverNotConfiguredError("no rollover interest calculator configured")

// New builds an Engine. sink receives every emitted event, in generation
// order. Collaborators left unconfigured by opts fall back to
// deterministic reference implementations from the collab package, except
// the rollover calculator, which falls back to noRolloverCalculator.
func New(cfg config.Config, catalog *common.Catalog, accountID string, sink events.Sink, opts ...Option) *Engine {
	e := &Engine{
		cfg:            cfg,
		catalog:        catalog,
		logger:         log.Logger,
		clock:          collab.NewVirtualClock(),
		guids:          collab.NewSeededGUIDFactory(1),
		fillModel:      collab.NewBernoulliFillModel(1),
		db:             collab.NewInMemoryExecutionDatabase(),
		fxCalc:         collab.NewTriangulatingExchangeRateCalculator(),
		commissionCalc: collab.NewBasisPointCommissionCalculator(cfg.CommissionRateBP),
		rolloverCalc:   noRolloverCalculator{},
		sink:           sink,
		accountID:      accountID,
		market:         make(map[string]common.Tick),
		reg:            newRegistry(),
		acct:           newAccount(accountID, cfg.AccountCurrency, cfg.StartingCapital, cfg.FrozenAccount),
		seenIDs:        make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) bidRates() map[string]float64 {
	out := make(map[string]float64, len(e.market))
	for sym, t := range e.market {
		out[sym] = t.Bid.Float64()
	}
	return out
}

func (e *Engine) askRates() map[string]float64 {
	out := make(map[string]float64, len(e.market))
	for sym, t := range e.market {
		out[sym] = t.Ask.Float64()
	}
	return out
}

// ProcessTick implements spec §4.1's matching loop, run synchronously for
// one tick.
func (e *Engine) ProcessTick(tick common.Tick) {
	e.clock.SetTime(tick.Timestamp)
	e.market[tick.Symbol] = tick

	e.maybeRolloverDay(tick.Timestamp)

	if !e.acct.rolloverApplied && !e.acct.rolloverTime.IsZero() && !tick.Timestamp.Before(e.acct.rolloverTime) {
		e.applyRolloverInterest()
		e.acct.rolloverApplied = true
	}

	for _, id := range e.reg.snapshotWorking() {
		order, ok := e.reg.getWorking(id)
		if !ok || order.Symbol != tick.Symbol || order.State != common.Working {
			continue
		}
		e.evaluateWorkingOrder(order, tick)
	}
}

// maybeRolloverDay implements spec §4.1 step 2: on a calendar-day change,
// reset the day-boundary bookkeeping and compute today's rollover moment
// (17:00 US/Eastern, converted to UTC, plus the configured offset —
// nominally -56 minutes, spec §4.6).
func (e *Engine) maybeRolloverDay(t time.Time) {
	day := dayNumber(t)
	if day == e.acct.dayNumber && !e.acct.rolloverTime.IsZero() {
		return
	}
	e.acct.rolloverDay(day, rolloverMomentFor(t, e.cfg.RolloverOffset))
}

func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// rolloverMomentFor returns 17:00 US/Eastern on t's calendar date,
// converted to UTC, plus offset (spec §4.6).
func rolloverMomentFor(t time.Time, offset time.Duration) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}
	local := t.In(loc)
	y, m, d := local.Date()
	moment := time.Date(y, m, d, 17, 0, 0, 0, loc).UTC()
	return moment.Add(offset)
}

// evaluateWorkingOrder applies spec §4.1's per-order fill/expire test for
// one tick.
func (e *Engine) evaluateWorkingOrder(o *Order, tick common.Tick) {
	ins, ok := e.catalog.Get(o.Symbol)
	if !ok {
		return
	}

	if fillPrice, filled := e.testFill(o, tick, ins.Slippage()); filled {
		e.reg.removeWorking(o.ID)
		e.fillOrder(o, fillPrice)
		return
	}

	if o.ExpireTime != nil && !tick.Timestamp.Before(*o.ExpireTime) {
		e.reg.removeWorking(o.ID)
		e.expireOrder(o)
	}
}

// --- Command handlers (spec §4.2) ------------------------------------

// HandleAccountInquiry emits an AccountState snapshot. No other effects.
func (e *Engine) HandleAccountInquiry(cmd AccountInquiry) {
	e.emitAccountState()
}

// HandleSubmitOrder implements spec §4.2's submit_order. PositionID, when
// set, names the existing position (by its opening order's id) this order
// adds to or closes; left empty, a fill opens a fresh position anchored at
// this order's own id (spec §4.3′).
func (e *Engine) HandleSubmitOrder(cmd SubmitOrder) {
	order := cmd.Order.toOrder()
	order.PositionID = cmd.PositionID
	e.submit(order)
}

// HandleSubmitAtomicOrder implements spec §4.2's submit_atomic. The entry
// and both exit children share one position anchor: cmd.PositionID if the
// bracket is meant to act on an existing position, otherwise the entry
// order's own id once it opens a fresh one.
func (e *Engine) HandleSubmitAtomicOrder(cmd SubmitAtomicOrder) {
	entry := cmd.Atomic.Entry.toOrder()
	entry.PositionID = cmd.PositionID
	anchorID := cmd.PositionID
	if anchorID == "" {
		anchorID = entry.ID
	}

	stop := cmd.Atomic.StopLoss.toOrder()
	stop.PositionID = anchorID
	children := []*Order{stop}
	if cmd.Atomic.TakeProfit != nil {
		tp := cmd.Atomic.TakeProfit.toOrder()
		tp.PositionID = anchorID
		children = append(children, tp)
		e.reg.linkOCO(stop.ID, tp.ID)
	}
	e.reg.setAtomicChildren(entry.ID, children)
	e.submit(entry)
}

func (e *Engine) submit(order *Order) {
	e.emitSubmitted(order)
	e.processOrder(order)
}

// notWorkingReason distinguishes an id the engine has never seen from one
// it has already processed to a terminal state, by consulting the
// execution database rather than just reporting a generic "not found" for
// both (spec §1's execution database as the engine's directory of orders).
func (e *Engine) notWorkingReason(orderID string) string {
	if _, seen := e.db.GetOrder(orderID); seen {
		return "order already in a terminal state"
	}
	return "order not found"
}

// HandleCancelOrder implements spec §4.2's cancel_order.
func (e *Engine) HandleCancelOrder(cmd CancelOrder) {
	if _, ok := e.reg.getWorking(cmd.OrderID); !ok {
		e.emitCancelReject(cmd.OrderID, "cancel order", e.notWorkingReason(cmd.OrderID))
		return
	}
	e.reg.removeWorking(cmd.OrderID)
	e.emitCancelled(cmd.OrderID)
	e.reg.discardChildren(cmd.OrderID)
	e.checkOCO(cmd.OrderID)
}

// HandleModifyOrder implements spec §4.2's modify_order. A successful
// modify emits OrderModified but does not rewrite the stored order's
// price/quantity — see DESIGN.md for why that open question is preserved
// rather than silently patched over.
func (e *Engine) HandleModifyOrder(cmd ModifyOrder) {
	order, ok := e.reg.getWorking(cmd.OrderID)
	if !ok {
		e.emitCancelReject(cmd.OrderID, "modify order", e.notWorkingReason(cmd.OrderID))
		return
	}
	if cmd.ModifiedQuantity == 0 {
		e.emitCancelReject(cmd.OrderID, "modify order", "modified quantity is zero")
		return
	}

	tick, ok := e.market[order.Symbol]
	if !ok {
		e.emitCancelReject(cmd.OrderID, "modify order", "no market data for "+order.Symbol)
		return
	}
	ins, _ := e.catalog.Get(order.Symbol)
	probe := *order
	probe.Price = cmd.ModifiedPrice
	probe.HasPrice = cmd.HasPrice
	if reason := validatePrice(&probe, ins, tick); reason != "" {
		e.emitCancelReject(cmd.OrderID, "modify order", reason)
		return
	}

	e.emitModified(order, cmd.ModifiedQuantity, cmd.ModifiedPrice.Float64())
}
