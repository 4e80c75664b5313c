package amm

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/marketlayer/futarchy/core/events"
	"github.com/marketlayer/futarchy/core/state"
	"github.com/marketlayer/futarchy/crypto"
	"github.com/marketlayer/futarchy/native/ledger"
	"github.com/marketlayer/futarchy/pkg/observability"
)

// store is the minimal persistence surface Keeper needs.
type store interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVSet(key []byte, value interface{}) error
}

// Keeper wires Pool lifecycle operations to persistence, the token
// ledger, the clock, and event emission (spec §4.A.1).
type Keeper struct {
	store        store
	ledger       *ledger.Ledger
	clock        state.Clock
	emitter      events.Emitter
	crankLimiter *rate.Limiter
	logger       *slog.Logger
	metrics      *observability.FutarchyMetrics
}

// NewKeeper constructs a Keeper. A nil emitter defaults to a no-op.
func NewKeeper(s store, l *ledger.Ledger, clock state.Clock, emitter events.Emitter) *Keeper {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Keeper{store: s, ledger: l, clock: clock, emitter: emitter, metrics: observability.Metrics()}
}

// WithCrankLimiter installs a process-wide rate limit on the
// permissionless CrankTWAP entry point, guarding against a caller
// spamming the RPC faster than the oracle's own per-pool recording
// interval would otherwise need to reject — defense in depth, not a
// substitute for the oracle's internal rate limit. Returns k for
// chaining off NewKeeper.
func (k *Keeper) WithCrankLimiter(limiter *rate.Limiter) *Keeper {
	k.crankLimiter = limiter
	return k
}

// WithLogger attaches a structured logger for pool lifecycle
// diagnostics. A nil Keeper logger stays silent. Returns k for
// chaining off NewKeeper.
func (k *Keeper) WithLogger(logger *slog.Logger) *Keeper {
	k.logger = logger
	return k
}

func poolKey(addr crypto.Address) []byte {
	return crypto.DeriveAddress("pool_record", addr.Bytes()).Bytes()
}

// LoadPool reads a pool by its PDA address.
func (k *Keeper) LoadPool(addr crypto.Address) (Pool, bool, error) {
	var p Pool
	found, err := k.store.KVGet(poolKey(addr), &p)
	if err != nil {
		return Pool{}, false, err
	}
	return p, found, nil
}

func (k *Keeper) savePool(p Pool) error {
	return k.store.KVSet(poolKey(p.Address), p)
}

// CreatePool allocates a new pool at the PDA derived from
// (admin, mint_a, mint_b), zeroing its reserves and seeding its
// oracle (spec §4.A.1).
func (k *Keeper) CreatePool(admin, mintA, mintB, lp crypto.Address, feeBps uint32, twap TwapParams) (Pool, error) {
	addr := state.PoolAddress(admin, mintA, mintB)
	if _, found, err := k.LoadPool(addr); err != nil {
		return Pool{}, err
	} else if found {
		return Pool{}, ErrInvalidPool
	}

	now := k.clock.Now()
	p, err := NewPool(addr, admin, lp, mintA, mintB, feeBps, now, twap)
	if err != nil {
		return Pool{}, err
	}

	reserveA := state.ReserveAddress(addr, mintA)
	reserveB := state.ReserveAddress(addr, mintB)
	feeVault := state.FeeVaultAddress(addr)
	if err := k.ledger.EnsureAccount(ledger.AccountRef{Owner: reserveA, Mint: mintA}); err != nil {
		return Pool{}, err
	}
	if err := k.ledger.EnsureAccount(ledger.AccountRef{Owner: reserveB, Mint: mintB}); err != nil {
		return Pool{}, err
	}
	if err := k.ledger.EnsureAccount(ledger.AccountRef{Owner: feeVault, Mint: mintA}); err != nil {
		return Pool{}, err
	}

	if err := k.savePool(p); err != nil {
		return Pool{}, err
	}
	k.emitter.Emit(PoolCreated{Pool: addr, Admin: admin, LP: lp, MintA: mintA, MintB: mintB, FeeBps: feeBps, UnixTime: now})
	return p, nil
}

// CreatePoolWithLiquidity is a convenience wrapper that creates a pool
// and immediately seeds it with liquidity in one call, matching the
// combined instruction the original AMM program exposed for its
// common case (supplemented feature, see DESIGN.md).
func (k *Keeper) CreatePoolWithLiquidity(admin, mintA, mintB, lp crypto.Address, feeBps uint32, twap TwapParams, amountA, amountB uint64) (Pool, error) {
	p, err := k.CreatePool(admin, mintA, mintB, lp, feeBps, twap)
	if err != nil {
		return Pool{}, err
	}
	if err := k.AddLiquidity(p.Address, lp, amountA, amountB); err != nil {
		return Pool{}, err
	}
	updated, _, err := k.LoadPool(p.Address)
	if err != nil {
		return Pool{}, err
	}
	return updated, nil
}

// AddLiquidity transfers amountA/amountB from the pool's liquidity
// provider into its reserve escrows.
func (k *Keeper) AddLiquidity(poolAddr, caller crypto.Address, amountA, amountB uint64) error {
	p, found, err := k.LoadPool(poolAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidPool
	}
	if err := p.AddLiquidity(caller, amountA, amountB); err != nil {
		return err
	}

	reserveA := state.ReserveAddress(poolAddr, p.MintA)
	reserveB := state.ReserveAddress(poolAddr, p.MintB)
	if err := k.ledger.Transfer(
		ledger.AccountRef{Owner: caller, Mint: p.MintA},
		ledger.AccountRef{Owner: reserveA, Mint: p.MintA},
		caller, amountA); err != nil {
		return err
	}
	if err := k.ledger.Transfer(
		ledger.AccountRef{Owner: caller, Mint: p.MintB},
		ledger.AccountRef{Owner: reserveB, Mint: p.MintB},
		caller, amountB); err != nil {
		return err
	}

	if err := k.savePool(p); err != nil {
		return err
	}
	k.emitter.Emit(LiquidityAdded{Pool: poolAddr, AmountA: amountA, AmountB: amountB, UnixTime: k.clock.Now()})
	return nil
}

// RemoveLiquidity is the PDA-signed mirror of AddLiquidity.
func (k *Keeper) RemoveLiquidity(poolAddr, caller crypto.Address, amountA, amountB uint64) error {
	p, found, err := k.LoadPool(poolAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidPool
	}
	if err := p.RemoveLiquidity(caller, amountA, amountB); err != nil {
		return err
	}

	reserveA := state.ReserveAddress(poolAddr, p.MintA)
	reserveB := state.ReserveAddress(poolAddr, p.MintB)
	if amountA > 0 {
		if err := k.ledger.TransferWithDelegate(
			ledger.AccountRef{Owner: reserveA, Mint: p.MintA},
			ledger.AccountRef{Owner: caller, Mint: p.MintA},
			reserveA, amountA); err != nil {
			return err
		}
	}
	if amountB > 0 {
		if err := k.ledger.TransferWithDelegate(
			ledger.AccountRef{Owner: reserveB, Mint: p.MintB},
			ledger.AccountRef{Owner: caller, Mint: p.MintB},
			reserveB, amountB); err != nil {
			return err
		}
	}

	if err := k.savePool(p); err != nil {
		return err
	}
	k.emitter.Emit(LiquidityRemoved{Pool: poolAddr, AmountA: amountA, AmountB: amountB, UnixTime: k.clock.Now()})
	return nil
}

// Swap cranks the oracle against the pre-swap reserves, prices and
// executes a swap, then re-checks the invariant against freshly read
// reserves as a post-transfer sanity pass (spec §4.A.2).
func (k *Keeper) Swap(poolAddr, caller crypto.Address, direction Direction, input, minOutput uint64) (SwapQuote, error) {
	p, found, err := k.LoadPool(poolAddr)
	if err != nil {
		return SwapQuote{}, err
	}
	if !found {
		return SwapQuote{}, ErrInvalidPool
	}

	now := k.clock.Now()
	p.CrankTWAP(now)

	quote, err := ComputeSwap(&p, direction, input, minOutput)
	if err != nil {
		if k.logger != nil {
			k.logger.Warn("amm: swap rejected", "pool", poolAddr.String(), "direction", direction.String(), "error", err)
		}
		return SwapQuote{}, err
	}

	reserveA := state.ReserveAddress(poolAddr, p.MintA)
	reserveB := state.ReserveAddress(poolAddr, p.MintB)
	feeVault := state.FeeVaultAddress(poolAddr)

	switch direction {
	case AToB:
		if err := k.ledger.Transfer(
			ledger.AccountRef{Owner: caller, Mint: p.MintA},
			ledger.AccountRef{Owner: reserveA, Mint: p.MintA},
			caller, quote.InputToReserve); err != nil {
			return SwapQuote{}, err
		}
		if quote.Fee > 0 {
			if err := k.ledger.Transfer(
				ledger.AccountRef{Owner: caller, Mint: p.MintA},
				ledger.AccountRef{Owner: feeVault, Mint: p.MintA},
				caller, quote.Fee); err != nil {
				return SwapQuote{}, err
			}
		}
		if err := k.ledger.TransferWithDelegate(
			ledger.AccountRef{Owner: reserveB, Mint: p.MintB},
			ledger.AccountRef{Owner: caller, Mint: p.MintB},
			reserveB, quote.Out); err != nil {
			return SwapQuote{}, err
		}

	case BToA:
		if err := k.ledger.Transfer(
			ledger.AccountRef{Owner: caller, Mint: p.MintB},
			ledger.AccountRef{Owner: reserveB, Mint: p.MintB},
			caller, quote.InputToReserve); err != nil {
			return SwapQuote{}, err
		}
		if err := k.ledger.TransferWithDelegate(
			ledger.AccountRef{Owner: reserveA, Mint: p.MintA},
			ledger.AccountRef{Owner: caller, Mint: p.MintA},
			reserveA, quote.Out); err != nil {
			return SwapQuote{}, err
		}
		if quote.Fee > 0 {
			if err := k.ledger.TransferWithDelegate(
				ledger.AccountRef{Owner: reserveA, Mint: p.MintA},
				ledger.AccountRef{Owner: feeVault, Mint: p.MintA},
				reserveA, quote.Fee); err != nil {
				return SwapQuote{}, err
			}
		}
	}

	kBefore := mulU128(p.ReserveA, p.ReserveB)
	if err := p.Apply(quote); err != nil {
		return SwapQuote{}, err
	}
	balA, err := k.ledger.BalanceOf(ledger.AccountRef{Owner: reserveA, Mint: p.MintA})
	if err != nil {
		return SwapQuote{}, err
	}
	balB, err := k.ledger.BalanceOf(ledger.AccountRef{Owner: reserveB, Mint: p.MintB})
	if err != nil {
		return SwapQuote{}, err
	}
	if mulU128(balA, balB).Lt(kBefore) {
		return SwapQuote{}, ErrInvariantViolated
	}

	if err := k.savePool(p); err != nil {
		return SwapQuote{}, err
	}
	k.emitter.Emit(CondSwap{Pool: poolAddr, Direction: direction, Input: input, Output: quote.Out, Fee: quote.Fee, UnixTime: now})
	k.metrics.ObserveSwap(poolAddr.String(), direction.String(), input)
	if k.logger != nil {
		k.logger.Info("amm: swap applied", "pool", poolAddr.String(), "direction", direction.String(), "input", input, "output", quote.Out, "fee", quote.Fee)
	}
	return quote, nil
}

// CrankTWAP advances a pool's oracle against its current reserves.
// Callable by anyone; internally rate-limited by the oracle itself,
// and additionally throttled here if a crank limiter was installed.
func (k *Keeper) CrankTWAP(poolAddr crypto.Address) error {
	if k.crankLimiter != nil && !k.crankLimiter.Allow() {
		if k.logger != nil {
			k.logger.Warn("amm: crank throttled", "pool", poolAddr.String())
		}
		return ErrCrankThrottled
	}
	p, found, err := k.LoadPool(poolAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidPool
	}
	now := k.clock.Now()
	applied := p.CrankTWAP(now)
	if err := k.savePool(p); err != nil {
		return err
	}
	k.emitter.Emit(TWAPUpdate{Pool: poolAddr, LastObservation: p.Oracle.lastObservation(), UnixTime: now})
	k.metrics.ObserveCrank(poolAddr.String(), applied)
	if k.logger != nil {
		k.logger.Info("amm: crank advanced", "pool", poolAddr.String(), "applied", applied)
	}
	return nil
}

// CeaseTrading transitions a pool from Trading to Finalized.
func (k *Keeper) CeaseTrading(poolAddr, caller crypto.Address) error {
	p, found, err := k.LoadPool(poolAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidPool
	}
	if err := p.CeaseTrading(caller); err != nil {
		return err
	}
	if err := k.savePool(p); err != nil {
		return err
	}
	k.emitter.Emit(PoolCeased{Pool: poolAddr, UnixTime: k.clock.Now()})
	return nil
}
