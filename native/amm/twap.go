package amm

import (
	"github.com/holiman/uint256"
)

// u128Max is the saturation ceiling every TWAP quantity is clamped to;
// the protocol's wire format is u128 even though intermediate products
// are computed in a wider 256-bit register.
var u128Max = new(uint256.Int).Sub(
	new(uint256.Int).Lsh(uint256.NewInt(1), 128),
	uint256.NewInt(1),
)

func saturatingMulU128(a, b *uint256.Int) *uint256.Int {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow || product.Gt(u128Max) {
		return new(uint256.Int).Set(u128Max)
	}
	return product
}

func saturatingAddU128(a, b *uint256.Int) *uint256.Int {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.Gt(u128Max) {
		return new(uint256.Int).Set(u128Max)
	}
	return sum
}

func saturatingSubU128(a, b *uint256.Int) *uint256.Int {
	if b.Gt(a) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(a, b)
}

// wrappingAddU128 adds b to a and truncates to 128 bits. Both operands
// are already ≤ u128Max so the 256-bit Add itself never overflows; the
// mask reproduces addition modulo 2^128, the documented wraparound
// behaviour of the cumulative accumulator (spec §4.A.3 step 4).
func wrappingAddU128(a, b *uint256.Int) *uint256.Int {
	sum := new(uint256.Int).Add(a, b)
	return new(uint256.Int).And(sum, u128Max)
}

func clampU128(price, prevObservation, maxDelta *uint256.Int) *uint256.Int {
	lower := saturatingSubU128(prevObservation, maxDelta)
	upper := saturatingAddU128(prevObservation, maxDelta)
	switch {
	case price.Lt(lower):
		return lower
	case price.Gt(upper):
		return upper
	default:
		return new(uint256.Int).Set(price)
	}
}

// TwapOracle accumulates a manipulation-resistant time-weighted average
// of the base-in-quote price over a pool's reserves (spec §4.A.3). Every
// u128 quantity is stored as its 32-byte big-endian uint256 encoding so
// the struct round-trips through RLP without depending on uint256's own
// wire-format support.
type TwapOracle struct {
	CreatedAt              int64
	WarmupDuration         int64
	LastCrankTs            int64
	MaxObservationDelta    [32]byte
	LastObservation        [32]byte
	LastPrice              [32]byte
	CumulativeObservations [32]byte
}

// NewTwapOracle seeds an oracle for a pool created at createdAt.
func NewTwapOracle(createdAt int64, params TwapParams) TwapOracle {
	starting := uint256.NewInt(params.StartingObservation)
	return TwapOracle{
		CreatedAt:              createdAt,
		WarmupDuration:         params.WarmupDuration,
		LastCrankTs:            createdAt,
		MaxObservationDelta:    uint256.NewInt(params.MaxObservationDelta).Bytes32(),
		LastObservation:        starting.Bytes32(),
		LastPrice:              starting.Bytes32(),
		CumulativeObservations: [32]byte{},
	}
}

func (o *TwapOracle) maxDelta() *uint256.Int {
	return new(uint256.Int).SetBytes(o.MaxObservationDelta[:])
}

func (o *TwapOracle) lastObservation() *uint256.Int {
	return new(uint256.Int).SetBytes(o.LastObservation[:])
}

func (o *TwapOracle) cumulative() *uint256.Int {
	return new(uint256.Int).SetBytes(o.CumulativeObservations[:])
}

func (o *TwapOracle) warmupEnd() int64 {
	return o.CreatedAt + o.WarmupDuration
}

// Crank records a new spot observation derived from reserveA and
// reserveB (the pool's mint_a/mint_b reserves) at time now (spec
// §4.A.3). A crank inside MinRecordingInterval of the last one, or
// against an empty reserve, is accepted but mutates nothing — the
// permissionless rate limit. The returned bool reports whether the
// observation was actually recorded.
func (o *TwapOracle) Crank(now int64, reserveA, reserveB uint64) bool {
	if now-o.LastCrankTs < MinRecordingInterval || reserveA == 0 || reserveB == 0 {
		return false
	}

	numerator := saturatingMulU128(uint256.NewInt(reserveA), uint256.NewInt(PriceScale))
	price := new(uint256.Int).Div(numerator, uint256.NewInt(reserveB))
	newObs := clampU128(price, o.lastObservation(), o.maxDelta())

	if now > o.warmupEnd() {
		baseT := o.LastCrankTs
		if o.warmupEnd() > baseT {
			baseT = o.warmupEnd()
		}
		weighted := saturatingMulU128(newObs, uint256.NewInt(uint64(now-baseT)))
		o.CumulativeObservations = wrappingAddU128(o.cumulative(), weighted).Bytes32()
	}

	o.LastCrankTs = now
	o.LastPrice = price.Bytes32()
	o.LastObservation = newObs.Bytes32()
	return true
}

// FetchTWAP returns the time-weighted average observation accumulated
// since the end of warmup, or ErrTwapNotReady if the pool is still
// warming up or no crank has contributed to the accumulator yet.
func (o *TwapOracle) FetchTWAP() (*uint256.Int, error) {
	denom := o.LastCrankTs - o.warmupEnd()
	cum := o.cumulative()
	if denom <= 0 || cum.IsZero() {
		return nil, ErrTwapNotReady
	}
	return new(uint256.Int).Div(cum, uint256.NewInt(uint64(denom))), nil
}

// Ready reports whether enough time has elapsed since pool creation for
// TWAP reads to be attempted.
func (o *TwapOracle) Ready(now int64) bool {
	return now >= o.warmupEnd()
}

// Price returns the last recorded spot price (scaled by PriceScale).
func (o *TwapOracle) Price() *uint256.Int {
	return new(uint256.Int).SetBytes(o.LastPrice[:])
}
