package vault

import (
	"github.com/marketlayer/futarchy/crypto"
)

// Fixed option-count bounds (spec §6.4).
const (
	MinOptions = 2
	MaxOptions = 6
)

// VaultState is the lifecycle stage of a Vault (spec §4.B.3).
type VaultState uint8

const (
	VaultSetup VaultState = iota
	VaultActive
	VaultFinalized
)

func (s VaultState) String() string {
	switch s {
	case VaultSetup:
		return "setup"
	case VaultActive:
		return "active"
	case VaultFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Side distinguishes the base vs quote collateral leg.
type Side uint8

const (
	Base Side = iota
	Quote
)

// Vault is a proposal's collateral splitter: one unit of base (or
// quote) collateral becomes a conditional unit of every option, minted
// from a dedicated per-option, per-side mint (spec §4.B).
type Vault struct {
	Address     crypto.Address
	Owner       crypto.Address
	BaseMint    crypto.Address
	QuoteMint   crypto.Address
	Nonce       uint64
	State       VaultState
	NumOptions  uint32
	WinnerIdx   uint32
	CondBase    []crypto.Address
	CondQuote   []crypto.Address
}

// NewVault constructs a vault in Setup with the first two conditional
// mints for each side already allocated (spec §4.B.1 initialize).
func NewVault(addr, owner, baseMint, quoteMint crypto.Address, nonce uint64, condBase0, condBase1, condQuote0, condQuote1 crypto.Address) Vault {
	return Vault{
		Address:    addr,
		Owner:      owner,
		BaseMint:   baseMint,
		QuoteMint:  quoteMint,
		Nonce:      nonce,
		State:      VaultSetup,
		NumOptions: MinOptions,
		CondBase:   []crypto.Address{condBase0, condBase1},
		CondQuote:  []crypto.Address{condQuote0, condQuote1},
	}
}

// AddOption appends a new conditional-base/conditional-quote pair,
// provided by the caller (their addresses are PDA-derived from the
// vault and the new option index by the keeper). Setup only.
func (v *Vault) AddOption(condBase, condQuote crypto.Address) error {
	if v.State != VaultSetup {
		return ErrInvalidState
	}
	if v.NumOptions >= MaxOptions {
		return ErrOptionLimitReached
	}
	v.CondBase = append(v.CondBase, condBase)
	v.CondQuote = append(v.CondQuote, condQuote)
	v.NumOptions++
	return nil
}

// Activate transitions Setup → Active.
func (v *Vault) Activate() error {
	if v.State != VaultSetup {
		return ErrInvalidState
	}
	if v.NumOptions < MinOptions || v.NumOptions > MaxOptions {
		return ErrNotEnoughOptions
	}
	v.State = VaultActive
	return nil
}

// Finalize transitions Active → Finalized(winnerIdx). Only the vault
// owner (the proposal PDA) may call this.
func (v *Vault) Finalize(caller crypto.Address, winnerIdx uint32) error {
	if !caller.Equal(v.Owner) {
		return ErrInvalidOwner
	}
	if v.State != VaultActive {
		return ErrInvalidState
	}
	if winnerIdx >= v.NumOptions {
		return ErrInvalidWinningIndex
	}
	v.State = VaultFinalized
	v.WinnerIdx = winnerIdx
	return nil
}

// mintsFor returns the side's conditional mint slice.
func (v *Vault) mintsFor(side Side) []crypto.Address {
	if side == Base {
		return v.CondBase
	}
	return v.CondQuote
}

// UnderlyingMint returns the side's collateral mint.
func (v *Vault) UnderlyingMint(side Side) crypto.Address {
	if side == Base {
		return v.BaseMint
	}
	return v.QuoteMint
}
