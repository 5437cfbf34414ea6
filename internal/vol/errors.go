package vol

import "errors"

// Error kinds returned by the volatility core. Callers match with
// errors.Is; the terminal layer owns any user-facing wording.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidPriceData = errors.New("invalid price data")
	ErrEmptyChain       = errors.New("empty option chain")
)
