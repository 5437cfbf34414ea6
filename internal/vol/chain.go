package vol

import (
	"fmt"
	"time"
)

// Side distinguishes calls from puts.
type Side int

const (
	SideCall Side = iota
	SidePut
)

func (s Side) String() string {
	if s == SidePut {
		return "puts"
	}
	return "calls"
}

// ParseSide maps a side name to its Side value.
func ParseSide(s string) (Side, error) {
	switch s {
	case "calls", "call":
		return SideCall, nil
	case "puts", "put":
		return SidePut, nil
	default:
		return 0, fmt.Errorf("%w: unknown option type %q, use 'calls' or 'puts'", ErrInvalidParameter, s)
	}
}

// OptionQuote is a single option quote. An ImpliedVol of zero or below
// means the quote carries no usable implied volatility.
type OptionQuote struct {
	Strike     float64
	Bid        float64
	Ask        float64
	Last       float64
	ImpliedVol float64
	Expiry     time.Time
	Side       Side
}

// Usable reports whether the quote can contribute to a skew curve.
func (q OptionQuote) Usable() bool { return q.ImpliedVol > 0 }

// OptionChain is a snapshot of quotes for one underlying, one expiry and
// one side, with unique strikes. Filters never mutate a chain; they
// return a new one.
type OptionChain struct {
	Underlying float64 // current underlying price
	Expiry     time.Time
	Side       Side
	Quotes     []OptionQuote
}

// FilterOTM returns the out-of-the-money subset of the chain: calls with
// strike above the underlying price, puts with strike below it. The
// at-the-money strike is excluded from both sides on purpose; it belongs
// to neither OTM set. Quotes without a usable implied volatility are
// dropped as well. Original strike ordering is preserved, the input is
// untouched, and an empty result is valid output.
func FilterOTM(chain OptionChain) OptionChain {
	out := OptionChain{
		Underlying: chain.Underlying,
		Expiry:     chain.Expiry,
		Side:       chain.Side,
	}

	for _, q := range chain.Quotes {
		if !q.Usable() {
			continue
		}
		switch chain.Side {
		case SideCall:
			if q.Strike > chain.Underlying {
				out.Quotes = append(out.Quotes, q)
			}
		case SidePut:
			if q.Strike < chain.Underlying {
				out.Quotes = append(out.Quotes, q)
			}
		}
	}
	return out
}
