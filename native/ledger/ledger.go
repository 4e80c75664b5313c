// Package ledger implements the TokenLedger trusted primitive of spec
// §6.1. The rest of the protocol treats token transfer, minting,
// burning, and account lifecycle as an external collaborator; this
// package is that collaborator's in-process implementation, letting
// the AMM, vault, and orchestrator keepers be exercised without a real
// token program. Accounts are keyed by (owner, mint) pairs, the
// "associated account" convention spec §6.1 calls for.
package ledger

import (
	"errors"
	"fmt"

	"github.com/marketlayer/futarchy/crypto"
)

var (
	// ErrAccountNotFound is returned when an account referenced by a
	// transfer or burn does not exist and init_if_needed was not
	// requested.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrInsufficientBalance is returned when a transfer or burn would
	// drive a balance negative.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	// ErrUnauthorized is returned when the supplied authority does not
	// match the account owner (Transfer) or the registered mint
	// authority (MintTo/BurnFrom), or when the delegate presented to
	// TransferWithDelegate does not reproduce the account's owning PDA.
	ErrUnauthorized = errors.New("ledger: unauthorized")
	// ErrAccountNotEmpty is returned by CloseAccount when the account
	// still carries a balance.
	ErrAccountNotEmpty = errors.New("ledger: account not empty")
	// ErrMintNotRegistered is returned by MintTo/BurnFrom for a mint
	// this ledger has never been told the authority of.
	ErrMintNotRegistered = errors.New("ledger: mint not registered")
)

// AccountRef identifies a token account by its (owner, mint) pair.
type AccountRef struct {
	Owner crypto.Address
	Mint  crypto.Address
}

func (r AccountRef) key() []byte {
	return crypto.DeriveAddress("ledger_account", r.Owner.Bytes(), r.Mint.Bytes()).Bytes()
}

func mintKey(mint crypto.Address) []byte {
	return crypto.DeriveAddress("ledger_mint", mint.Bytes()).Bytes()
}

type account struct {
	Owner   crypto.Address
	Mint    crypto.Address
	Balance uint64
}

type mintRecord struct {
	Authority   crypto.Address
	TotalSupply uint64
}

// store is the minimal persistence surface Ledger needs; *state.Manager
// satisfies it.
type store interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVSet(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

// Ledger is the in-process TokenLedger implementation.
type Ledger struct {
	store store
}

// New constructs a Ledger over the given persistence backend.
func New(s store) *Ledger {
	return &Ledger{store: s}
}

// EnsureAccount creates a zero-balance record for ref if one does not
// already exist (init_if_needed semantics).
func (l *Ledger) EnsureAccount(ref AccountRef) error {
	var a account
	found, err := l.store.KVGet(ref.key(), &a)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return l.store.KVSet(ref.key(), account{Owner: ref.Owner, Mint: ref.Mint, Balance: 0})
}

func (l *Ledger) load(ref AccountRef) (account, bool, error) {
	var a account
	found, err := l.store.KVGet(ref.key(), &a)
	if err != nil {
		return account{}, false, err
	}
	return a, found, nil
}

// BalanceOf returns the current balance of ref, 0 if the account does
// not exist.
func (l *Ledger) BalanceOf(ref AccountRef) (uint64, error) {
	a, found, err := l.load(ref)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return a.Balance, nil
}

// RegisterMint records the mint authority for mint, used by MintTo and
// BurnFrom's authorization check. Conditional mints are registered by
// the vault keeper at creation time (the vault PDA is always the
// authority); base/quote mints are pre-existing external tokens the
// protocol never mints, so no keeper registers them (tests that fund
// users register them under an outside authority).
func (l *Ledger) RegisterMint(mint crypto.Address, authority crypto.Address) error {
	return l.store.KVSet(mintKey(mint), mintRecord{Authority: authority, TotalSupply: 0})
}

func (l *Ledger) loadMint(mint crypto.Address) (mintRecord, error) {
	var m mintRecord
	found, err := l.store.KVGet(mintKey(mint), &m)
	if err != nil {
		return mintRecord{}, err
	}
	if !found {
		return mintRecord{}, ErrMintNotRegistered
	}
	return m, nil
}

// TotalSupply returns the total outstanding supply of a registered
// mint.
func (l *Ledger) TotalSupply(mint crypto.Address) (uint64, error) {
	m, err := l.loadMint(mint)
	if err != nil {
		return 0, err
	}
	return m.TotalSupply, nil
}

func (l *Ledger) adjustBalance(ref AccountRef, delta int64) (uint64, error) {
	a, found, err := l.load(ref)
	if err != nil {
		return 0, err
	}
	if !found {
		if delta < 0 {
			return 0, ErrAccountNotFound
		}
		a = account{Owner: ref.Owner, Mint: ref.Mint}
	}
	if delta < 0 && a.Balance < uint64(-delta) {
		return 0, ErrInsufficientBalance
	}
	if delta < 0 {
		a.Balance -= uint64(-delta)
	} else {
		next := a.Balance + uint64(delta)
		if next < a.Balance {
			return 0, fmt.Errorf("ledger: balance overflow")
		}
		a.Balance = next
	}
	if err := l.store.KVSet(ref.key(), a); err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// Transfer moves amount from `from` to `to`. authority must equal
// from.Owner — the ordinary, externally-authorized transfer path (a
// user moving their own tokens).
func (l *Ledger) Transfer(from, to AccountRef, authority crypto.Address, amount uint64) error {
	if !authority.Equal(from.Owner) {
		return ErrUnauthorized
	}
	return l.transfer(from, to, amount)
}

// TransferWithDelegate moves amount from `from` to `to` where the
// authority is a PDA the caller reconstructed from its seed preimage
// (spec §9), not the account's plain owner. delegate must equal
// from.Owner: in this protocol every delegate-authorized account (pool
// reserves, vault escrows) is itself owned by the PDA that signs for
// it, so reproducing the owning PDA's address from its seeds is the
// "signing" act.
func (l *Ledger) TransferWithDelegate(from, to AccountRef, delegate crypto.Address, amount uint64) error {
	if !delegate.Equal(from.Owner) {
		return ErrUnauthorized
	}
	return l.transfer(from, to, amount)
}

func (l *Ledger) transfer(from, to AccountRef, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if _, err := l.adjustBalance(from, -int64(amount)); err != nil {
		return err
	}
	if err := l.EnsureAccount(to); err != nil {
		return err
	}
	if _, err := l.adjustBalance(to, int64(amount)); err != nil {
		return err
	}
	return nil
}

// MintTo increases to's balance and the mint's total supply by amount.
// authority must equal the mint's registered authority.
func (l *Ledger) MintTo(mint crypto.Address, to AccountRef, authority crypto.Address, amount uint64) error {
	m, err := l.loadMint(mint)
	if err != nil {
		return err
	}
	if !authority.Equal(m.Authority) {
		return ErrUnauthorized
	}
	if amount == 0 {
		return nil
	}
	if err := l.EnsureAccount(to); err != nil {
		return err
	}
	if _, err := l.adjustBalance(to, int64(amount)); err != nil {
		return err
	}
	m.TotalSupply += amount
	return l.store.KVSet(mintKey(mint), m)
}

// BurnFrom decreases from's balance and the mint's total supply by
// amount. authority must equal the mint's registered authority.
func (l *Ledger) BurnFrom(mint crypto.Address, from AccountRef, authority crypto.Address, amount uint64) error {
	m, err := l.loadMint(mint)
	if err != nil {
		return err
	}
	if !authority.Equal(m.Authority) {
		return ErrUnauthorized
	}
	if amount == 0 {
		return nil
	}
	if _, err := l.adjustBalance(from, -int64(amount)); err != nil {
		return err
	}
	if m.TotalSupply < amount {
		return fmt.Errorf("ledger: mint %s supply underflow", mint)
	}
	m.TotalSupply -= amount
	return l.store.KVSet(mintKey(mint), m)
}

// CloseAccount removes an empty account, crediting rentBeneficiary in
// spirit only (this in-process ledger has no rent model; the
// parameter is kept to match the external TokenLedger contract and is
// otherwise ignored).
func (l *Ledger) CloseAccount(account AccountRef, rentBeneficiary crypto.Address, authority crypto.Address) error {
	if !authority.Equal(account.Owner) {
		return ErrUnauthorized
	}
	a, found, err := l.load(account)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if a.Balance != 0 {
		return ErrAccountNotEmpty
	}
	_ = rentBeneficiary
	return l.store.KVDelete(account.key())
}
