package amm

import (
	"testing"

	"github.com/marketlayer/futarchy/crypto"
)

func TestNewPoolRejectsFeeAboveCeiling(t *testing.T) {
	admin := crypto.DeriveAddress("t", []byte("admin"))
	mintA := crypto.DeriveAddress("t", []byte("a"))
	mintB := crypto.DeriveAddress("t", []byte("b"))
	_, err := NewPool(admin, admin, admin, mintA, mintB, MaxFeeBps+1, 0, TwapParams{MaxObservationDelta: 1})
	if err != ErrInvalidFee {
		t.Fatalf("expected ErrInvalidFee, got %v", err)
	}
}

func TestCeaseTradingThenOnlyRemoveLiquidityPermitted(t *testing.T) {
	admin := crypto.DeriveAddress("t", []byte("admin"))
	lp := crypto.DeriveAddress("t", []byte("lp"))
	mintA := crypto.DeriveAddress("t", []byte("a"))
	mintB := crypto.DeriveAddress("t", []byte("b"))
	p, err := NewPool(admin, admin, lp, mintA, mintB, 30, 0, TwapParams{MaxObservationDelta: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddLiquidity(lp, 1_000, 1_000); err != nil {
		t.Fatal(err)
	}
	if err := p.CeaseTrading(admin); err != nil {
		t.Fatal(err)
	}
	if p.State != PoolFinalized {
		t.Fatalf("expected Finalized state")
	}
	if _, err := ComputeSwap(&p, AToB, 10, 1); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState for swap on finalized pool, got %v", err)
	}
	if err := p.RemoveLiquidity(lp, 500, 500); err != nil {
		t.Fatalf("remove_liquidity should remain permitted after finalization: %v", err)
	}
}

func TestCeaseTradingRequiresAdmin(t *testing.T) {
	admin := crypto.DeriveAddress("t", []byte("admin"))
	stranger := crypto.DeriveAddress("t", []byte("stranger"))
	mintA := crypto.DeriveAddress("t", []byte("a"))
	mintB := crypto.DeriveAddress("t", []byte("b"))
	p, err := NewPool(admin, admin, admin, mintA, mintB, 30, 0, TwapParams{MaxObservationDelta: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.CeaseTrading(stranger); err != ErrInvalidAdmin {
		t.Fatalf("expected ErrInvalidAdmin, got %v", err)
	}
}

func TestAddLiquidityRequiresLP(t *testing.T) {
	admin := crypto.DeriveAddress("t", []byte("admin"))
	lp := crypto.DeriveAddress("t", []byte("lp"))
	stranger := crypto.DeriveAddress("t", []byte("stranger"))
	mintA := crypto.DeriveAddress("t", []byte("a"))
	mintB := crypto.DeriveAddress("t", []byte("b"))
	p, err := NewPool(admin, admin, lp, mintA, mintB, 30, 0, TwapParams{MaxObservationDelta: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddLiquidity(stranger, 100, 100); err != ErrInvalidLP {
		t.Fatalf("expected ErrInvalidLP, got %v", err)
	}
}
