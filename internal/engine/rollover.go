package engine

import (
	"sort"
	"time"

	"hindsight/internal/common"
	"hindsight/internal/money"
)

// applyRolloverInterest implements spec §4.6: for each open FX position,
// accumulate mid-price overnight interest, tripled on Wednesday/Friday,
// then apply it to the account.
//
// Positions are walked in a deterministic order (sorted by order id)
// regardless of what iteration order the ExecutionDatabase's map returns,
// so the accumulated total — and therefore the emitted AccountState event
// — is reproducible across runs, per spec §8.
func (e *Engine) applyRolloverInterest() {
	if e.db == nil {
		// spec §7 category 3: environmental gap, logged and silently
		// skipped, no event.
		e.logger.Warn().Msg("rollover requested with no execution database configured, skipping")
		return
	}

	open := e.db.GetPositionsOpen()
	if len(open) == 0 {
		return
	}
	ids := make([]string, 0, len(open))
	for id := range open {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var total float64
	for _, id := range ids {
		pos := open[id]
		ins, ok := e.catalog.Get(pos.Symbol)
		if !ok || ins.SecurityType != common.FX {
			continue
		}
		tick, ok := e.market[pos.Symbol]
		if !ok {
			continue
		}

		mid := tick.Mid().Float64()
		rate, err := e.rolloverCalc.CalcOvernightRate(pos.Symbol, e.clock.Now())
		if err != nil {
			e.logger.Warn().Err(err).Str("symbol", pos.Symbol).Msg("no overnight rate available, skipping position")
			continue
		}
		fx, err := e.fxCalc.GetRate(ins.QuoteCurrency, e.cfg.AccountCurrency, common.Mid, e.bidRates(), e.askRates())
		if err != nil {
			e.logger.Warn().Err(err).Str("symbol", pos.Symbol).Msg("no fx rate available for rollover, skipping position")
			continue
		}

		raw := mid * float64(pos.Quantity) * rate * fx
		total += raw - raw*e.cfg.RolloverSpread
	}

	if total == 0 {
		return
	}

	if wd := isoWeekday(e.clock.Now()); wd == 3 || wd == 5 {
		total *= 3
	}

	e.acct.applyRollover(money.New(total, e.acct.scale))
	e.emitAccountState()
}

// isoWeekday returns ISO-8601 weekday numbering (Mon=1 ... Sun=7), which is
// what spec §4.6's "weekday 3 or 5" (Wed, Fri) refers to. time.Weekday
// numbers Sunday=0, so Sunday needs remapping to 7.
func isoWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}
