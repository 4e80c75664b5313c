package amm

import "errors"

// Sentinel errors for the AMM + TWAP component (spec §7). Callers
// compare with errors.Is.
var (
	ErrInvalidAmount       = errors.New("amm: invalid amount")
	ErrInvalidFee          = errors.New("amm: fee exceeds maximum")
	ErrInvalidAdmin        = errors.New("amm: caller is not the pool admin")
	ErrInvalidLP           = errors.New("amm: caller is not the liquidity provider")
	ErrInvalidState        = errors.New("amm: operation invalid for pool state")
	ErrInvalidPool         = errors.New("amm: pool identity mismatch")
	ErrInvalidMint         = errors.New("amm: mint identity mismatch")
	ErrEmptyPool           = errors.New("amm: reserve is empty")
	ErrSlippageExceeded    = errors.New("amm: output below minimum")
	ErrInsufficientReserve = errors.New("amm: withdrawal exceeds reserve")
	ErrOutputTooSmall      = errors.New("amm: computed output is zero")
	ErrMathOverflow        = errors.New("amm: arithmetic overflow")
	ErrInvariantViolated   = errors.New("amm: constant-product invariant violated")
	ErrTwapNotReady        = errors.New("amm: twap not ready")
	ErrCrankThrottled      = errors.New("amm: crank rate limit exceeded")
)
