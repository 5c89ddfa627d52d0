package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdd_RoundsToWiderScale(t *testing.T) {
	a := New(1.1, 2)
	b := New(0.001, 5)
	assert.Equal(t, "1.10100", a.Add(b).String())
}

func TestComparisons_IgnoreScale(t *testing.T) {
	a := New(1.5, 1)
	b := New(1.50000, 5)
	assert.True(t, a.Eq(b))
	assert.False(t, a.Lt(b))
	assert.True(t, a.Le(b))
}

func TestMulInt(t *testing.T) {
	p := New(1.1000, 4)
	assert.Equal(t, "110000.0000", p.MulInt(100000).String())
}

func TestParse_InvalidReturnsError(t *testing.T) {
	_, err := Parse("not-a-number", 2)
	assert.Error(t, err)
}

func TestNeg(t *testing.T) {
	p := New(3.5, 2)
	assert.True(t, p.Neg().Eq(New(-3.5, 2)))
}

func TestDivInt_WeightedAverage(t *testing.T) {
	total := New(1.1000, 5).MulInt(1000).Add(New(1.1010, 5).MulInt(500))
	avg := total.DivInt(1500)
	assert.Equal(t, "1.10033", avg.String())
}

func TestAtScale_Rerounds(t *testing.T) {
	p := New(1.10499, 5)
	assert.Equal(t, "1.10", p.AtScale(2).String())
}
