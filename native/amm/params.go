package amm

// Fixed numeric constants (spec §6.4).
const (
	// PriceScale is the fixed-point scale applied to the base-in-quote
	// ratio before it enters the TWAP accumulator.
	PriceScale = 1_000_000_000_000 // 10^12

	// MinRecordingInterval is the minimum number of seconds between two
	// TWAP-mutating cranks.
	MinRecordingInterval int64 = 60

	// MaxFeeBps is the hard ceiling on a pool's fee, fixed at 50% per
	// spec §9 (the source carried a conflicting 10_000 definition
	// elsewhere; this spec resolves it to 5_000).
	MaxFeeBps uint32 = 5_000

	// FeeDenominatorBps is the basis-point denominator for fees.
	FeeDenominatorBps uint64 = 10_000
)

// TwapParams configures a freshly created pool's oracle.
type TwapParams struct {
	// StartingObservation seeds last_observation/last_price so the
	// very first crank has a baseline to clamp against.
	StartingObservation uint64
	// MaxObservationDelta bounds how far a single crank may move
	// last_observation from its previous value.
	MaxObservationDelta uint64
	// WarmupDuration is the number of seconds after creation before
	// cranks start accumulating into the TWAP.
	WarmupDuration int64
}

// Validate checks the invariants spec §3 places on TwapParams in
// isolation (the cross-field length/warmup check lives on the
// proposal's config, spec §4.C.1).
func (p TwapParams) Validate() error {
	if p.MaxObservationDelta == 0 {
		return ErrInvalidAmount
	}
	return nil
}
