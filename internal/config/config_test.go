package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	c := New(50000, "USD")
	assert.Equal(t, "50000.00", c.StartingCapital.String())
	assert.Equal(t, int32(2), c.CashScale)
	assert.False(t, c.FrozenAccount)
	assert.Equal(t, -56*time.Minute, c.RolloverOffset)
}

func TestOptions_Apply(t *testing.T) {
	c := New(50000, "USD",
		WithFrozenAccount(true),
		WithCommissionRateBP(1.5),
		WithRolloverSpread(0.1),
		WithRolloverOffset(-10*time.Minute),
	)
	assert.True(t, c.FrozenAccount)
	assert.Equal(t, 1.5, c.CommissionRateBP)
	assert.Equal(t, 0.1, c.RolloverSpread)
	assert.Equal(t, -10*time.Minute, c.RolloverOffset)
}
