package state

import (
	"github.com/marketlayer/futarchy/crypto"
)

// Seed domain tags. Deterministic seed strings are part of the
// external contract (spec §6.5) — renaming one changes every address
// derived under it.
const (
	DomainPool      = "pool"
	DomainReserve   = "reserve"
	DomainFeeVault  = "fee_vault"
	DomainVault     = "vault"
	DomainCondMint  = "cmint"
	DomainProposal  = "proposal"
	DomainModerator = "moderator"
)

// SideTag distinguishes the base vs quote side of a vault's
// conditional mints within the "cmint" seed.
type SideTag byte

const (
	SideBase  SideTag = 0
	SideQuote SideTag = 1
)

// PoolAddress derives a Pool's identity from ("pool", admin, mint_a, mint_b).
func PoolAddress(admin, mintA, mintB crypto.Address) crypto.Address {
	return crypto.DeriveAddress(DomainPool, admin.Bytes(), mintA.Bytes(), mintB.Bytes())
}

// ReserveAddress derives a per-side reserve escrow from ("reserve", pool, mint).
func ReserveAddress(pool, mint crypto.Address) crypto.Address {
	return crypto.DeriveAddress(DomainReserve, pool.Bytes(), mint.Bytes())
}

// FeeVaultAddress derives a pool's fee-collection escrow from ("fee_vault", pool).
func FeeVaultAddress(pool crypto.Address) crypto.Address {
	return crypto.DeriveAddress(DomainFeeVault, pool.Bytes())
}

// VaultAddress derives a Vault's identity from ("vault", owner, nonce_le_bytes).
func VaultAddress(owner crypto.Address, nonce uint64) crypto.Address {
	return crypto.DeriveAddress(DomainVault, owner.Bytes(), crypto.Uint64Seed(nonce))
}

// CondMintAddress derives a conditional mint from ("cmint", vault, side_tag, option_idx).
func CondMintAddress(vault crypto.Address, side SideTag, optionIdx uint32) crypto.Address {
	return crypto.DeriveAddress(DomainCondMint, vault.Bytes(), []byte{byte(side)}, crypto.Uint32Seed(optionIdx))
}

// ProposalAddress derives a Proposal's identity from ("proposal", moderator, id_le_bytes).
func ProposalAddress(moderator crypto.Address, id uint64) crypto.Address {
	return crypto.DeriveAddress(DomainProposal, moderator.Bytes(), crypto.Uint64Seed(id))
}

// ModeratorAddress derives a Moderator's identity from ("moderator", id_le_bytes).
func ModeratorAddress(id uint64) crypto.Address {
	return crypto.DeriveAddress(DomainModerator, crypto.Uint64Seed(id))
}
