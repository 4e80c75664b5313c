package ledger

import (
	"testing"

	"github.com/marketlayer/futarchy/core/state"
	"github.com/marketlayer/futarchy/crypto"
	"github.com/marketlayer/futarchy/storage"
	"github.com/marketlayer/futarchy/storage/trie"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	mgr := state.NewManager(trie.New(storage.NewMemDB()))
	return New(mgr)
}

func addr(seed string) crypto.Address {
	return crypto.DeriveAddress("test", []byte(seed))
}

func TestTransferRequiresOwnerAuthority(t *testing.T) {
	l := newTestLedger(t)
	mint := addr("mint")
	alice := AccountRef{Owner: addr("alice"), Mint: mint}
	bob := AccountRef{Owner: addr("bob"), Mint: mint}

	if err := l.RegisterMint(mint, addr("vault")); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(mint, alice, addr("vault"), 100); err != nil {
		t.Fatal(err)
	}

	if err := l.Transfer(alice, bob, addr("bob"), 10); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := l.Transfer(alice, bob, alice.Owner, 40); err != nil {
		t.Fatalf("unexpected transfer error: %v", err)
	}
	bal, err := l.BalanceOf(alice)
	if err != nil || bal != 60 {
		t.Fatalf("expected alice balance 60, got %d err=%v", bal, err)
	}
	bal, err = l.BalanceOf(bob)
	if err != nil || bal != 40 {
		t.Fatalf("expected bob balance 40, got %d err=%v", bal, err)
	}
}

func TestMintBurnConservesSupply(t *testing.T) {
	l := newTestLedger(t)
	mint := addr("cond-mint")
	vaultAuthority := addr("vault-pda")
	holder := AccountRef{Owner: addr("holder"), Mint: mint}

	if err := l.RegisterMint(mint, vaultAuthority); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(mint, holder, vaultAuthority, 1000); err != nil {
		t.Fatal(err)
	}
	supply, err := l.TotalSupply(mint)
	if err != nil || supply != 1000 {
		t.Fatalf("expected supply 1000, got %d err=%v", supply, err)
	}
	if err := l.BurnFrom(mint, holder, vaultAuthority, 400); err != nil {
		t.Fatal(err)
	}
	supply, err = l.TotalSupply(mint)
	if err != nil || supply != 600 {
		t.Fatalf("expected supply 600 after burn, got %d err=%v", supply, err)
	}
	bal, _ := l.BalanceOf(holder)
	if bal != 600 {
		t.Fatalf("expected holder balance 600, got %d", bal)
	}
}

func TestInsufficientBalanceRejected(t *testing.T) {
	l := newTestLedger(t)
	mint := addr("mint2")
	alice := AccountRef{Owner: addr("alice2"), Mint: mint}
	bob := AccountRef{Owner: addr("bob2"), Mint: mint}
	if err := l.EnsureAccount(alice); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(alice, bob, alice.Owner, 1); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestCloseAccountRequiresZeroBalance(t *testing.T) {
	l := newTestLedger(t)
	mint := addr("mint3")
	vaultAuthority := addr("vault-pda-3")
	holder := AccountRef{Owner: addr("holder3"), Mint: mint}
	if err := l.RegisterMint(mint, vaultAuthority); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(mint, holder, vaultAuthority, 5); err != nil {
		t.Fatal(err)
	}
	if err := l.CloseAccount(holder, addr("rent-payer"), holder.Owner); err != ErrAccountNotEmpty {
		t.Fatalf("expected ErrAccountNotEmpty, got %v", err)
	}
	if err := l.BurnFrom(mint, holder, vaultAuthority, 5); err != nil {
		t.Fatal(err)
	}
	if err := l.CloseAccount(holder, addr("rent-payer"), holder.Owner); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
}
