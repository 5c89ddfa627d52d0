package replay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hindsight/internal/common"
	"hindsight/internal/money"
)

func tick(sym string, sec int) common.Tick {
	return common.Tick{
		Symbol:    sym,
		Bid:       money.New(1.1, 5),
		Ask:       money.New(1.1002, 5),
		Timestamp: time.Unix(int64(sec), 0),
	}
}

func TestLoadTicks_MergesInTimestampOrder(t *testing.T) {
	loader := NewLoader(2)

	files := map[string][]common.Tick{
		"a.csv": {tick("EURUSD", 3), tick("EURUSD", 5)},
		"b.csv": {tick("EURUSD", 1), tick("EURUSD", 4)},
	}
	parse := func(path string) ([]common.Tick, error) {
		return files[path], nil
	}

	ticks, err := loader.LoadTicks(context.Background(), []string{"a.csv", "b.csv"}, parse)
	assert.NoError(t, err)
	assert.Len(t, ticks, 4)
	for i := 1; i < len(ticks); i++ {
		assert.False(t, ticks[i].Timestamp.Before(ticks[i-1].Timestamp))
	}
}

func TestLoadTicks_PropagatesParseError(t *testing.T) {
	loader := NewLoader(2)
	parse := func(path string) ([]common.Tick, error) {
		return nil, assert.AnError
	}

	_, err := loader.LoadTicks(context.Background(), []string{"bad.csv"}, parse)
	assert.Error(t, err)
}

func TestLoadTicks_Empty(t *testing.T) {
	loader := NewLoader(2)
	ticks, err := loader.LoadTicks(context.Background(), nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, ticks)
}
