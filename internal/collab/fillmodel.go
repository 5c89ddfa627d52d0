package collab

import "math/rand"

// BernoulliFillModel is a reference FillModel. Each query is an independent
// Bernoulli draw from a seeded source, so a fixed seed and a fixed call
// sequence reproduce the exact same slip/marginal-fill decisions run over
// run, per spec §8's determinism requirement.
type BernoulliFillModel struct {
	rng *rand.Rand

	pSlipped     float64
	pStopFilled  float64
	pLimitFilled float64
}

// FillModelOption configures a BernoulliFillModel.
type FillModelOption func(*BernoulliFillModel)

// WithSlipProbability sets the chance a filling order slips by one
// slippage unit.
func WithSlipProbability(p float64) FillModelOption {
	return func(m *BernoulliFillModel) { m.pSlipped = p }
}

// WithStopFillProbability sets the probability that IsStopFilled reports
// true. The engine's fill test fills a stop-kind order on an exact touch
// without calling IsStopFilled.
func WithStopFillProbability(p float64) FillModelOption {
	return func(m *BernoulliFillModel) { m.pStopFilled = p }
}

// WithLimitFillProbability sets the probability that IsLimitFilled reports
// true. The engine's fill test fills a limit order on an exact touch
// without calling IsLimitFilled.
func WithLimitFillProbability(p float64) FillModelOption {
	return func(m *BernoulliFillModel) { m.pLimitFilled = p }
}

// NewBernoulliFillModel builds a fill model seeded for reproducibility.
func NewBernoulliFillModel(seed int64, opts ...FillModelOption) *BernoulliFillModel {
	m := &BernoulliFillModel{rng: rand.New(rand.NewSource(seed))}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *BernoulliFillModel) IsSlipped() bool     { return m.rng.Float64() < m.pSlipped }
func (m *BernoulliFillModel) IsStopFilled() bool  { return m.rng.Float64() < m.pStopFilled }
func (m *BernoulliFillModel) IsLimitFilled() bool { return m.rng.Float64() < m.pLimitFilled }
