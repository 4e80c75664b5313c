package amm

import "github.com/holiman/uint256"

// Direction identifies which side of a pool a swap's input lands on.
type Direction uint8

const (
	// AToB swaps mint_a (quote) in for mint_b (base) out.
	AToB Direction = iota
	// BToA swaps mint_b (base) in for mint_a (quote) out.
	BToA
)

// String renders the direction as the label used on metrics and logs.
func (d Direction) String() string {
	if d == BToA {
		return "b_to_a"
	}
	return "a_to_b"
}

// SwapQuote is the result of computing a swap against a pool's
// reserves, before any tokens move (spec §4.A.2). OutputFromReserve is
// the amount that leaves the output-side reserve; Out is what the
// caller actually receives. The two differ only for B→A, where the fee
// is skimmed from the reserve's gross output on its way to the fee
// vault.
type SwapQuote struct {
	Direction         Direction
	Fee               uint64
	InputToReserve    uint64
	OutputFromReserve uint64
	Out               uint64
}

// ComputeSwap prices a swap of input against p's current reserves
// without mutating the pool. The fee is always denominated in mint_a:
// charged on the input leg for A→B, on the gross output leg for B→A.
func ComputeSwap(p *Pool, direction Direction, input, minOutput uint64) (SwapQuote, error) {
	if p.State != PoolTrading {
		return SwapQuote{}, ErrInvalidState
	}
	if input == 0 {
		return SwapQuote{}, ErrInvalidAmount
	}
	if p.ReserveA == 0 || p.ReserveB == 0 {
		return SwapQuote{}, ErrEmptyPool
	}

	var quote SwapQuote
	quote.Direction = direction

	var out uint64
	switch direction {
	case AToB:
		fee, err := bpsOf(input, p.FeeBps)
		if err != nil {
			return SwapQuote{}, err
		}
		taxedIn, err := subChecked(input, fee)
		if err != nil {
			return SwapQuote{}, err
		}
		o, err := constantProductOut(taxedIn, p.ReserveA, p.ReserveB)
		if err != nil {
			return SwapQuote{}, err
		}
		out = o
		quote.Fee = fee
		quote.InputToReserve = taxedIn
		quote.OutputFromReserve = out
		quote.Out = out

	case BToA:
		grossOut, err := constantProductOut(input, p.ReserveB, p.ReserveA)
		if err != nil {
			return SwapQuote{}, err
		}
		fee, err := bpsOf(grossOut, p.FeeBps)
		if err != nil {
			return SwapQuote{}, err
		}
		netOut, err := subChecked(grossOut, fee)
		if err != nil {
			return SwapQuote{}, err
		}
		out = netOut
		quote.Fee = fee
		quote.InputToReserve = input
		quote.OutputFromReserve = grossOut
		quote.Out = netOut

	default:
		return SwapQuote{}, ErrInvalidAmount
	}

	if out < minOutput {
		return SwapQuote{}, ErrSlippageExceeded
	}
	if out == 0 {
		return SwapQuote{}, ErrOutputTooSmall
	}

	if err := checkInvariant(p, direction, quote); err != nil {
		return SwapQuote{}, err
	}

	return quote, nil
}

// checkInvariant recomputes post-swap reserves from input_to_reserve
// and output_from_reserve only (the fee never enters the AMM's own
// balance) and requires the constant product not decrease. Products are
// computed in u128 per spec §4.A.2.
func checkInvariant(p *Pool, direction Direction, q SwapQuote) error {
	before := mulU128(p.ReserveA, p.ReserveB)

	var expectedA, expectedB uint64
	var err error
	switch direction {
	case AToB:
		expectedA, err = addChecked(p.ReserveA, q.InputToReserve)
		if err != nil {
			return err
		}
		expectedB, err = subChecked(p.ReserveB, q.OutputFromReserve)
		if err != nil {
			return err
		}
	case BToA:
		expectedB, err = addChecked(p.ReserveB, q.InputToReserve)
		if err != nil {
			return err
		}
		expectedA, err = subChecked(p.ReserveA, q.OutputFromReserve)
		if err != nil {
			return err
		}
	}

	after := mulU128(expectedA, expectedB)
	if after.Lt(before) {
		return ErrInvariantViolated
	}
	return nil
}

// Apply mutates the pool's reserves to reflect a quote already priced
// by ComputeSwap, then re-reads the invariant against the new reserves
// as a post-transfer sanity check (spec §4.A.2).
func (p *Pool) Apply(q SwapQuote) error {
	before := [2]uint64{p.ReserveA, p.ReserveB}
	beforeProduct := mulU128(before[0], before[1])

	switch q.Direction {
	case AToB:
		next, err := addChecked(p.ReserveA, q.InputToReserve)
		if err != nil {
			return err
		}
		p.ReserveA = next
		p.ReserveB -= q.OutputFromReserve
	case BToA:
		next, err := addChecked(p.ReserveB, q.InputToReserve)
		if err != nil {
			return err
		}
		p.ReserveB = next
		p.ReserveA -= q.OutputFromReserve
	}

	afterProduct := mulU128(p.ReserveA, p.ReserveB)
	if afterProduct.Lt(beforeProduct) {
		p.ReserveA, p.ReserveB = before[0], before[1]
		return ErrInvariantViolated
	}
	return nil
}

// constantProductOut computes floor(inputAmount*reserveOut /
// (reserveIn+inputAmount)) using a u128 intermediate product, then
// checks the result still fits in u64 before returning it.
func constantProductOut(inputAmount, reserveIn, reserveOut uint64) (uint64, error) {
	denom, err := addChecked(reserveIn, inputAmount)
	if err != nil {
		return 0, err
	}
	if denom == 0 {
		return 0, ErrEmptyPool
	}
	numerator := mulU128(inputAmount, reserveOut)
	out := new(uint256.Int).Div(numerator, uint256.NewInt(denom))
	if !out.IsUint64() {
		return 0, ErrMathOverflow
	}
	return out.Uint64(), nil
}

// bpsOf computes floor(amount*bps/10_000) with the dust-fee guard: any
// non-zero fee rate must charge at least 1 unit.
func bpsOf(amount uint64, bps uint32) (uint64, error) {
	product := mulU128(amount, uint64(bps))
	fee := new(uint256.Int).Div(product, uint256.NewInt(FeeDenominatorBps))
	if bps > 0 && fee.IsZero() {
		return 1, nil
	}
	if !fee.IsUint64() {
		return 0, ErrMathOverflow
	}
	return fee.Uint64(), nil
}

func subChecked(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}

func mulU128(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}
