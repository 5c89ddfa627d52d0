// Package config holds engine configuration, built with functional
// options rather than global mutable state — spec §9's note that "the
// virtual clock is engine-scoped, not process-scoped... pass it through a
// config struct" generalises to the whole configuration surface.
//
// The options pattern itself is grounded in the domain corpus's own
// simulator constructors (e.g. NewSimulator(router, currency, balance,
// options ...Option)), adapted here to this engine's configuration knobs.
package config

import (
	"time"

	"hindsight/internal/money"
)

// defaultCashScale is the number of digits after the decimal point account
// currency amounts round to. Spec §9 rules out binary floats for money;
// CashScale lets a caller widen it for a currency that needs more (or
// fewer) places than the usual two.
const defaultCashScale int32 = 2

// Config is the engine's configuration surface (spec §6).
type Config struct {
	StartingCapital  money.Amount
	CashScale        int32
	AccountCurrency  string
	FrozenAccount    bool
	CommissionRateBP float64

	ShortTermInterestCSVPath string

	RolloverSpread float64
	// RolloverOffset is spec §4.6's "-56 minutes" applied to 17:00
	// US/Eastern converted to UTC. Preserved as a configurable constant
	// per spec §4.6's note that the source marks it unexplained.
	RolloverOffset time.Duration
}

// Option configures a Config.
type Option func(*Config)

// New builds a Config with the required fields and any options applied.
// startingCapital is taken as a float64 for caller convenience and rounded
// once, here, to CashScale places — every account computation downstream
// stays in money.Amount from that point on.
func New(startingCapital float64, accountCurrency string, opts ...Option) Config {
	c := Config{
		CashScale:       defaultCashScale,
		AccountCurrency: accountCurrency,
		RolloverOffset:  -56 * time.Minute,
	}
	for _, opt := range opts {
		opt(&c)
	}
	c.StartingCapital = money.New(startingCapital, c.CashScale)
	return c
}

// WithCashScale overrides the number of decimal places account currency
// amounts round to (default 2).
func WithCashScale(scale int32) Option {
	return func(c *Config) { c.CashScale = scale }
}

// WithFrozenAccount sets frozen-account mode: PnL and rollover are
// computed but never alter account capital (spec §9 open question,
// resolved in DESIGN.md).
func WithFrozenAccount(frozen bool) Option {
	return func(c *Config) { c.FrozenAccount = frozen }
}

// WithCommissionRateBP sets the flat commission rate in basis points.
func WithCommissionRateBP(bp float64) Option {
	return func(c *Config) { c.CommissionRateBP = bp }
}

// WithShortTermInterestCSV points the rollover collaborator at its rate
// table.
func WithShortTermInterestCSV(path string) Option {
	return func(c *Config) { c.ShortTermInterestCSVPath = path }
}

// WithRolloverSpread sets the markup applied to raw rollover interest.
func WithRolloverSpread(spread float64) Option {
	return func(c *Config) { c.RolloverSpread = spread }
}

// WithRolloverOffset overrides the default -56 minute offset applied to
// the 17:00 US/Eastern rollover wall-clock moment.
func WithRolloverOffset(d time.Duration) Option {
	return func(c *Config) { c.RolloverOffset = d }
}
