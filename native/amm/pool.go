package amm

import (
	"github.com/marketlayer/futarchy/crypto"
)

// PoolState is the lifecycle stage of a Pool (spec §4.A.4).
type PoolState uint8

const (
	// PoolTrading accepts swap/add/remove/crank.
	PoolTrading PoolState = iota
	// PoolFinalized accepts only remove_liquidity.
	PoolFinalized
)

func (s PoolState) String() string {
	switch s {
	case PoolTrading:
		return "trading"
	case PoolFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Pool is a single constant-product market over (MintA, MintB), owned
// by the PDA derived from state.PoolAddress. MintA is always the
// quote-side asset: fees are denominated in it (spec §4.A.2).
type Pool struct {
	Address           crypto.Address
	Admin             crypto.Address
	LiquidityProvider crypto.Address
	MintA             crypto.Address
	MintB             crypto.Address
	FeeBps            uint32
	ReserveA          uint64
	ReserveB          uint64
	State             PoolState
	Oracle            TwapOracle
}

// NewPool constructs a fresh Trading pool with zeroed reserves and a
// newly seeded oracle. Returns ErrInvalidFee if feeBps exceeds
// MaxFeeBps.
func NewPool(addr, admin, lp, mintA, mintB crypto.Address, feeBps uint32, now int64, twap TwapParams) (Pool, error) {
	if feeBps > MaxFeeBps {
		return Pool{}, ErrInvalidFee
	}
	if err := twap.Validate(); err != nil {
		return Pool{}, err
	}
	return Pool{
		Address:           addr,
		Admin:             admin,
		LiquidityProvider: lp,
		MintA:             mintA,
		MintB:             mintB,
		FeeBps:            feeBps,
		State:             PoolTrading,
		Oracle:            NewTwapOracle(now, twap),
	}, nil
}

// AddLiquidity credits both reserves by the stated amounts. Only the
// pool's liquidity provider may call this, and only while Trading.
func (p *Pool) AddLiquidity(caller crypto.Address, amountA, amountB uint64) error {
	if p.State != PoolTrading {
		return ErrInvalidState
	}
	if !caller.Equal(p.LiquidityProvider) {
		return ErrInvalidLP
	}
	if amountA == 0 || amountB == 0 {
		return ErrInvalidAmount
	}
	nextA, err := addChecked(p.ReserveA, amountA)
	if err != nil {
		return err
	}
	nextB, err := addChecked(p.ReserveB, amountB)
	if err != nil {
		return err
	}
	p.ReserveA, p.ReserveB = nextA, nextB
	return nil
}

// RemoveLiquidity debits both reserves by the stated amounts. Callable
// by the liquidity provider while Trading, or by anyone recovering the
// sole remaining balance once Finalized (spec §4.A.4 — "only
// remove_liquidity permitted").
func (p *Pool) RemoveLiquidity(caller crypto.Address, amountA, amountB uint64) error {
	if p.State == PoolTrading && !caller.Equal(p.LiquidityProvider) {
		return ErrInvalidLP
	}
	if amountA > p.ReserveA || amountB > p.ReserveB {
		return ErrInsufficientReserve
	}
	p.ReserveA -= amountA
	p.ReserveB -= amountB
	return nil
}

// CeaseTrading transitions Trading → Finalized. Admin-only, idempotent
// under the constraint that the pool was already Trading when called
// (spec §4.A.1).
func (p *Pool) CeaseTrading(caller crypto.Address) error {
	if !caller.Equal(p.Admin) {
		return ErrInvalidAdmin
	}
	if p.State != PoolTrading {
		return ErrInvalidState
	}
	p.State = PoolFinalized
	return nil
}

// CrankTWAP advances the oracle against the pool's current reserves.
// The returned bool reports whether the observation was applied.
func (p *Pool) CrankTWAP(now int64) bool {
	return p.Oracle.Crank(now, p.ReserveA, p.ReserveB)
}

func addChecked(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrMathOverflow
	}
	return sum, nil
}
