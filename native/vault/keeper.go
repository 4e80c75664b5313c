package vault

import (
	"log/slog"

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

// Keeper wires Vault lifecycle operations to persistence, the token
// ledger, the clock, and event emission (spec §4.B.1).
type Keeper struct {
	store   store
	ledger  *ledger.Ledger
	clock   state.Clock
	emitter events.Emitter
	logger  *slog.Logger
	metrics *observability.FutarchyMetrics
}

// NewKeeper constructs a Keeper. A nil emitter defaults to a no-op.
func NewKeeper(s store, l *ledger.Ledger, clock state.Clock, emitter events.Emitter) *Keeper {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Keeper{store: s, ledger: l, clock: clock, emitter: emitter, metrics: observability.Metrics()}
}

// WithLogger attaches a structured logger for vault lifecycle
// diagnostics. A nil Keeper logger stays silent. Returns k for
// chaining off NewKeeper.
func (k *Keeper) WithLogger(logger *slog.Logger) *Keeper {
	k.logger = logger
	return k
}

func vaultKey(addr crypto.Address) []byte {
	return crypto.DeriveAddress("vault_record", addr.Bytes()).Bytes()
}

// LoadVault reads a vault by its PDA address.
func (k *Keeper) LoadVault(addr crypto.Address) (Vault, bool, error) {
	var v Vault
	found, err := k.store.KVGet(vaultKey(addr), &v)
	if err != nil {
		return Vault{}, false, err
	}
	return v, found, nil
}

func (k *Keeper) saveVault(v Vault) error {
	return k.store.KVSet(vaultKey(v.Address), v)
}

func sideTag(s Side) state.SideTag {
	if s == Base {
		return state.SideBase
	}
	return state.SideQuote
}

func (k *Keeper) escrow(v Vault, side Side) ledger.AccountRef {
	return ledger.AccountRef{Owner: v.Address, Mint: v.UnderlyingMint(side)}
}

// Initialize allocates a vault in Setup with two conditional mints per
// side, owned by the proposal PDA `owner` (spec §4.B.1).
func (k *Keeper) Initialize(owner, baseMint, quoteMint crypto.Address, nonce uint64) (Vault, error) {
	addr := state.VaultAddress(owner, nonce)
	if _, found, err := k.LoadVault(addr); err != nil {
		return Vault{}, err
	} else if found {
		return Vault{}, ErrInvalidVault
	}

	condBase0 := state.CondMintAddress(addr, state.SideBase, 0)
	condBase1 := state.CondMintAddress(addr, state.SideBase, 1)
	condQuote0 := state.CondMintAddress(addr, state.SideQuote, 0)
	condQuote1 := state.CondMintAddress(addr, state.SideQuote, 1)

	for _, m := range []crypto.Address{condBase0, condBase1, condQuote0, condQuote1} {
		if err := k.ledger.RegisterMint(m, addr); err != nil {
			return Vault{}, err
		}
	}

	v := NewVault(addr, owner, baseMint, quoteMint, nonce, condBase0, condBase1, condQuote0, condQuote1)
	if err := k.ledger.EnsureAccount(k.escrow(v, Base)); err != nil {
		return Vault{}, err
	}
	if err := k.ledger.EnsureAccount(k.escrow(v, Quote)); err != nil {
		return Vault{}, err
	}
	if err := k.saveVault(v); err != nil {
		return Vault{}, err
	}
	k.emitter.Emit(VaultInitialized{Vault: addr, Owner: owner, BaseMint: baseMint, QuoteMint: quoteMint, UnixTime: k.clock.Now()})
	return v, nil
}

// AddOption mints a new conditional-base/conditional-quote pair and
// registers the vault as their mint authority. Setup only (spec
// §4.B.1); the orchestrator is responsible for the proposal.creator
// authorization this operation itself does not check.
func (k *Keeper) AddOption(vaultAddr crypto.Address) (Vault, error) {
	v, found, err := k.LoadVault(vaultAddr)
	if err != nil {
		return Vault{}, err
	}
	if !found {
		return Vault{}, ErrInvalidVault
	}

	newIdx := v.NumOptions
	condBase := state.CondMintAddress(vaultAddr, state.SideBase, newIdx)
	condQuote := state.CondMintAddress(vaultAddr, state.SideQuote, newIdx)
	if err := v.AddOption(condBase, condQuote); err != nil {
		return Vault{}, err
	}
	if err := k.ledger.RegisterMint(condBase, vaultAddr); err != nil {
		return Vault{}, err
	}
	if err := k.ledger.RegisterMint(condQuote, vaultAddr); err != nil {
		return Vault{}, err
	}
	if err := k.saveVault(v); err != nil {
		return Vault{}, err
	}
	k.emitter.Emit(OptionAdded{Vault: vaultAddr, OptionIdx: newIdx, CondBase: condBase, CondQuote: condQuote, UnixTime: k.clock.Now()})
	return v, nil
}

// Activate transitions Setup → Active.
func (k *Keeper) Activate(vaultAddr crypto.Address) error {
	v, found, err := k.LoadVault(vaultAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidVault
	}
	if err := v.Activate(); err != nil {
		return err
	}
	if err := k.saveVault(v); err != nil {
		return err
	}
	k.emitter.Emit(VaultActivated{Vault: vaultAddr, NumOptions: v.NumOptions, UnixTime: k.clock.Now()})
	return nil
}

// Deposit is the split: amount of the side's underlying moves from
// user into the vault's escrow, and amount of every one of the side's
// N conditional mints is credited to user.
func (k *Keeper) Deposit(vaultAddr, user crypto.Address, side Side, amount uint64) error {
	v, found, err := k.LoadVault(vaultAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidVault
	}
	if v.State != VaultActive {
		return ErrInvalidState
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	underlying := ledger.AccountRef{Owner: user, Mint: v.UnderlyingMint(side)}
	if err := k.ledger.Transfer(underlying, k.escrow(v, side), user, amount); err != nil {
		return err
	}
	for _, mint := range v.mintsFor(side) {
		if err := k.ledger.MintTo(mint, ledger.AccountRef{Owner: user, Mint: mint}, vaultAddr, amount); err != nil {
			return err
		}
	}
	k.emitter.Emit(Deposited{Vault: vaultAddr, User: user, Side: side, Amount: amount, UnixTime: k.clock.Now()})
	k.metrics.ObserveSplit(vaultAddr.String(), sideLabel(side))
	if k.logger != nil {
		k.logger.Info("vault: split applied", "vault", vaultAddr.String(), "side", sideLabel(side), "amount", amount)
	}
	return nil
}

// Withdraw is deposit's inverse: burns amount from every one of the
// side's conditional mints (the user must hold at least amount of
// each), then returns amount of underlying from escrow.
func (k *Keeper) Withdraw(vaultAddr, user crypto.Address, side Side, amount uint64) error {
	v, found, err := k.LoadVault(vaultAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidVault
	}
	if v.State != VaultActive {
		return ErrInvalidState
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	for _, mint := range v.mintsFor(side) {
		ref := ledger.AccountRef{Owner: user, Mint: mint}
		bal, err := k.ledger.BalanceOf(ref)
		if err != nil {
			return err
		}
		if bal < amount {
			return ErrInsufficientBalance
		}
	}
	for _, mint := range v.mintsFor(side) {
		if err := k.ledger.BurnFrom(mint, ledger.AccountRef{Owner: user, Mint: mint}, vaultAddr, amount); err != nil {
			return err
		}
	}

	underlying := ledger.AccountRef{Owner: user, Mint: v.UnderlyingMint(side)}
	escrow := k.escrow(v, side)
	if err := k.ledger.TransferWithDelegate(escrow, underlying, vaultAddr, amount); err != nil {
		return err
	}
	k.emitter.Emit(Withdrawn{Vault: vaultAddr, User: user, Side: side, Amount: amount, UnixTime: k.clock.Now()})
	if k.logger != nil {
		k.logger.Info("vault: withdraw applied", "vault", vaultAddr.String(), "side", sideLabel(side), "amount", amount)
	}
	return nil
}

// Finalize transitions Active → Finalized(winnerIdx). Only the vault
// owner (proposal PDA) may call this.
func (k *Keeper) Finalize(vaultAddr, caller crypto.Address, winnerIdx uint32) error {
	v, found, err := k.LoadVault(vaultAddr)
	if err != nil {
		return err
	}
	if !found {
		return ErrInvalidVault
	}
	if err := v.Finalize(caller, winnerIdx); err != nil {
		return err
	}
	if err := k.saveVault(v); err != nil {
		return err
	}
	k.emitter.Emit(VaultFinalized{Vault: vaultAddr, WinnerIdx: winnerIdx, UnixTime: k.clock.Now()})
	return nil
}

// RedeemWinnings burns every conditional balance the user holds on
// side, credits the winning option's balance as a 1:1 payout of
// underlying, and closes the now-empty conditional accounts (spec
// §4.B.1). Finalized only.
func (k *Keeper) RedeemWinnings(vaultAddr, user crypto.Address, side Side) (uint64, error) {
	v, found, err := k.LoadVault(vaultAddr)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrInvalidVault
	}
	if v.State != VaultFinalized {
		if k.logger != nil {
			k.logger.Warn("vault: redemption rejected", "vault", vaultAddr.String(), "side", sideLabel(side), "error", ErrInvalidState)
		}
		return 0, ErrInvalidState
	}

	var payout uint64
	mints := v.mintsFor(side)
	for i, mint := range mints {
		ref := ledger.AccountRef{Owner: user, Mint: mint}
		bal, err := k.ledger.BalanceOf(ref)
		if err != nil {
			return 0, err
		}
		if bal == 0 {
			continue
		}
		if err := k.ledger.BurnFrom(mint, ref, vaultAddr, bal); err != nil {
			return 0, err
		}
		if uint32(i) == v.WinnerIdx {
			payout = bal
		}
		if err := k.ledger.CloseAccount(ref, user, user); err != nil {
			return 0, err
		}
	}

	if payout > 0 {
		underlying := ledger.AccountRef{Owner: user, Mint: v.UnderlyingMint(side)}
		escrow := k.escrow(v, side)
		if err := k.ledger.TransferWithDelegate(escrow, underlying, vaultAddr, payout); err != nil {
			return 0, err
		}
	}

	k.emitter.Emit(Redeemed{Vault: vaultAddr, User: user, Side: side, Payout: payout, UnixTime: k.clock.Now()})
	k.metrics.ObserveRedemption(vaultAddr.String(), sideLabel(side))
	if k.logger != nil {
		k.logger.Info("vault: redemption applied", "vault", vaultAddr.String(), "side", sideLabel(side), "payout", payout)
	}
	return payout, nil
}
