package amm

import "testing"

func TestSwapPreservesInvariant(t *testing.T) {
	p := Pool{
		State:    PoolTrading,
		ReserveA: 1_000_000,
		ReserveB: 1_000_000,
		FeeBps:   30,
	}

	quote, err := ComputeSwap(&p, AToB, 10_000, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Fee != 30 {
		t.Fatalf("expected fee 30, got %d", quote.Fee)
	}
	if quote.InputToReserve != 9_970 {
		t.Fatalf("expected taxed_in 9970, got %d", quote.InputToReserve)
	}
	if quote.Out != 9_871 {
		t.Fatalf("expected out 9871, got %d", quote.Out)
	}

	if err := p.Apply(quote); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.ReserveA != 1_009_970 || p.ReserveB != 990_129 {
		t.Fatalf("unexpected post-swap reserves a=%d b=%d", p.ReserveA, p.ReserveB)
	}
}

func TestDustFeeGuardPromotesZeroFeeToOne(t *testing.T) {
	p := Pool{
		State:    PoolTrading,
		ReserveA: 1_000_000,
		ReserveB: 1_000_000,
		FeeBps:   30,
	}
	quote, err := ComputeSwap(&p, AToB, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Fee != 1 {
		t.Fatalf("expected dust-fee guard to promote fee to 1, got %d", quote.Fee)
	}
	if quote.InputToReserve != 9 {
		t.Fatalf("expected taxed_in 9, got %d", quote.InputToReserve)
	}
}

func TestSwapRejectsBelowMinOutput(t *testing.T) {
	p := Pool{State: PoolTrading, ReserveA: 1_000_000, ReserveB: 1_000_000, FeeBps: 30}
	if _, err := ComputeSwap(&p, AToB, 10_000, 9_872); err != ErrSlippageExceeded {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}
}

func TestSwapRejectsEmptyPool(t *testing.T) {
	p := Pool{State: PoolTrading}
	if _, err := ComputeSwap(&p, AToB, 100, 1); err != ErrEmptyPool {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestSwapRejectsWhenNotTrading(t *testing.T) {
	p := Pool{State: PoolFinalized, ReserveA: 100, ReserveB: 100}
	if _, err := ComputeSwap(&p, AToB, 10, 1); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestBToASwapSkimsFeeFromGrossOutput(t *testing.T) {
	p := Pool{State: PoolTrading, ReserveA: 1_000_000, ReserveB: 1_000_000, FeeBps: 30}
	quote, err := ComputeSwap(&p, BToA, 10_000, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Fee == 0 {
		t.Fatalf("expected nonzero fee")
	}
	if quote.Out != quote.OutputFromReserve-quote.Fee {
		t.Fatalf("net out should equal gross minus fee: out=%d gross=%d fee=%d", quote.Out, quote.OutputFromReserve, quote.Fee)
	}

	before := mulU128(p.ReserveA, p.ReserveB)
	if err := p.Apply(quote); err != nil {
		t.Fatalf("apply: %v", err)
	}
	after := mulU128(p.ReserveA, p.ReserveB)
	if after.Lt(before) {
		t.Fatalf("invariant decreased: before=%s after=%s", before.Dec(), after.Dec())
	}
}
