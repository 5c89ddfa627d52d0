package collab

import (
	"fmt"
	"strings"

	"hindsight/internal/common"
)

// TriangulatingExchangeRateCalculator resolves a rate between any two
// currencies from a snapshot of 6-letter BASE+QUOTE bid/ask rate maps,
// trying direct quote, inverse quote, and triangulation through a bridge
// currency quoted against the source currency, in that order (spec §4.8).
type TriangulatingExchangeRateCalculator struct{}

// NewTriangulatingExchangeRateCalculator builds a stateless resolver; all
// state lives in the bid/ask maps passed to GetRate.
func NewTriangulatingExchangeRateCalculator() *TriangulatingExchangeRateCalculator {
	return &TriangulatingExchangeRateCalculator{}
}

func rateFor(pt common.PriceType, bid, ask float64) float64 {
	switch pt {
	case common.Bid:
		return bid
	case common.Ask:
		return ask
	default:
		return (bid + ask) / 2
	}
}

func (r *TriangulatingExchangeRateCalculator) GetRate(from, to string, priceType common.PriceType, bidRates, askRates map[string]float64) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1.0, nil
	}

	// Direct quote: FROMTO
	if bid, ok := bidRates[from+to]; ok {
		return rateFor(priceType, bid, askRates[from+to]), nil
	}
	// Inverse quote: TOFROM
	if bid, ok := bidRates[to+from]; ok {
		ask := askRates[to+from]
		invBid, invAsk := 1/ask, 1/bid // buying FROM via TOFROM's ask inverts to the tighter side
		return rateFor(priceType, invBid, invAsk), nil
	}
	// Triangulate through every currency we have both legs quoted against.
	seen := map[string]bool{}
	for symbol := range bidRates {
		if len(symbol) != 6 {
			continue
		}
		base, quote := symbol[:3], symbol[3:]
		var bridge string
		switch {
		case base == from:
			bridge = quote
		case quote == from:
			bridge = base
		default:
			continue
		}
		if seen[bridge] {
			continue
		}
		seen[bridge] = true

		legBid, legAsk, err := r.leg(from, bridge, bidRates, askRates)
		if err != nil {
			continue
		}
		bridgeBid, bridgeAsk, err := r.leg(bridge, to, bidRates, askRates)
		if err != nil {
			continue
		}
		bid := legBid * bridgeBid
		ask := legAsk * bridgeAsk
		return rateFor(priceType, bid, ask), nil
	}

	return 0, fmt.Errorf("collab: no rate path from %s to %s", from, to)
}

// leg resolves a single-hop rate (direct or inverse only, no further
// triangulation) between two currencies.
func (r *TriangulatingExchangeRateCalculator) leg(from, to string, bidRates, askRates map[string]float64) (bid, ask float64, err error) {
	if from == to {
		return 1, 1, nil
	}
	if b, ok := bidRates[from+to]; ok {
		return b, askRates[from+to], nil
	}
	if b, ok := bidRates[to+from]; ok {
		a := askRates[to+from]
		return 1 / a, 1 / b, nil
	}
	return 0, 0, fmt.Errorf("collab: no direct or inverse quote for %s/%s", from, to)
}
