package engine

import (
	"time"

	"hindsight/internal/money"
)

// account tracks the cash bookkeeping scalars spec §3 lists under "Engine
// state": capital, daily activity, commissions and rollover accumulators,
// and the day-rollover bookkeeping fields. Every scalar is a money.Amount
// at the configured cash scale, per spec §9's fixed-point money rule — the
// account side accumulates over an entire replay, so binary-float drift
// here would be the one place it could actually show up in the emitted
// event stream.
type account struct {
	id       string
	currency string
	scale    int32

	startingCapital money.Amount
	capital         money.Amount

	cashStartOfDay    money.Amount
	cashActivityToday money.Amount

	totalCommissions money.Amount // accumulates negative, per spec §4.7's note
	totalRollover    money.Amount

	frozen bool

	dayNumber       int
	rolloverTime    time.Time
	rolloverApplied bool
}

func newAccount(id, currency string, startingCapital money.Amount, frozen bool) *account {
	scale := startingCapital.Scale()
	return &account{
		id:                id,
		currency:          currency,
		scale:             scale,
		startingCapital:   startingCapital,
		capital:           startingCapital,
		cashStartOfDay:    startingCapital,
		cashActivityToday: money.Zero(scale),
		totalCommissions:  money.Zero(scale),
		totalRollover:     money.Zero(scale),
		frozen:            frozen,
	}
}

// applyClosingPnL applies a closing fill's net PnL and commission to the
// account, per spec §4.7. Commission is subtracted from both the running
// commission total and from the net pnl added to capital.
func (a *account) applyClosingPnL(pnl, commission money.Amount) (netPnL money.Amount) {
	a.totalCommissions = a.totalCommissions.Sub(commission)
	netPnL = pnl.Sub(commission)
	if !a.frozen {
		a.capital = a.capital.Add(netPnL)
		a.cashActivityToday = a.cashActivityToday.Add(netPnL)
	}
	return netPnL
}

// applyRollover applies accumulated rollover interest to the account, per
// spec §4.6. Rollover totals accumulate regardless of frozen state; only
// the capital and activity change is gated on !frozen (spec §9 open
// question, resolved in DESIGN.md: frozen suppresses the capital change
// but the AccountState event is still emitted so downstream consumers see
// that rollover was computed).
func (a *account) applyRollover(rollover money.Amount) {
	a.totalRollover = a.totalRollover.Add(rollover)
	if !a.frozen {
		a.capital = a.capital.Add(rollover)
		a.cashActivityToday = a.cashActivityToday.Add(rollover)
	}
}

// rolloverDay resets the day-boundary bookkeeping fields, per spec §4.1
// step 2.
func (a *account) rolloverDay(newDayNumber int, rolloverTime time.Time) {
	a.dayNumber = newDayNumber
	a.cashStartOfDay = a.capital
	a.cashActivityToday = money.Zero(a.scale)
	a.rolloverApplied = false
	a.rolloverTime = rolloverTime
}
