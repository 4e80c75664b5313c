package vault

import (
	"testing"

	"github.com/marketlayer/futarchy/core/events"
	"github.com/marketlayer/futarchy/core/state"
	"github.com/marketlayer/futarchy/crypto"
	"github.com/marketlayer/futarchy/native/ledger"
	"github.com/marketlayer/futarchy/storage"
	"github.com/marketlayer/futarchy/storage/trie"
)

func newTestKeeper(t *testing.T, now int64) (*Keeper, *ledger.Ledger, *events.Recorder) {
	t.Helper()
	mgr := state.NewManager(trie.New(storage.NewMemDB()))
	l := ledger.New(mgr)
	rec := &events.Recorder{}
	return NewKeeper(mgr, l, state.FixedClock(now), rec), l, rec
}

func TestDepositSplitsIntoEveryConditionalMint(t *testing.T) {
	k, l, _ := newTestKeeper(t, 0)
	owner := crypto.DeriveAddress("t", []byte("proposal"))
	baseMint := crypto.DeriveAddress("t", []byte("base"))
	quoteMint := crypto.DeriveAddress("t", []byte("quote"))
	user := crypto.DeriveAddress("t", []byte("user"))

	v, err := k.Initialize(owner, baseMint, quoteMint, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Activate(v.Address); err != nil {
		t.Fatal(err)
	}

	external := crypto.DeriveAddress("t", []byte("external-authority"))
	if err := l.RegisterMint(baseMint, external); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(baseMint, ledger.AccountRef{Owner: user, Mint: baseMint}, external, 1_000); err != nil {
		t.Fatal(err)
	}

	if err := k.Deposit(v.Address, user, Base, 100); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	loaded, _, err := k.LoadVault(v.Address)
	if err != nil {
		t.Fatal(err)
	}
	for _, mint := range loaded.CondBase {
		supply, err := l.TotalSupply(mint)
		if err != nil || supply != 100 {
			t.Fatalf("expected supply 100 for %s, got %d err=%v", mint, supply, err)
		}
		bal, err := l.BalanceOf(ledger.AccountRef{Owner: user, Mint: mint})
		if err != nil || bal != 100 {
			t.Fatalf("expected user balance 100 for %s, got %d err=%v", mint, bal, err)
		}
	}
	escrowBal, err := l.BalanceOf(ledger.AccountRef{Owner: v.Address, Mint: baseMint})
	if err != nil || escrowBal != 100 {
		t.Fatalf("expected escrow balance 100, got %d err=%v", escrowBal, err)
	}
}

func TestWithdrawIsDepositInverse(t *testing.T) {
	k, l, _ := newTestKeeper(t, 0)
	owner := crypto.DeriveAddress("t", []byte("proposal2"))
	baseMint := crypto.DeriveAddress("t", []byte("base2"))
	quoteMint := crypto.DeriveAddress("t", []byte("quote2"))
	user := crypto.DeriveAddress("t", []byte("user2"))
	external := crypto.DeriveAddress("t", []byte("external2"))

	v, err := k.Initialize(owner, baseMint, quoteMint, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Activate(v.Address); err != nil {
		t.Fatal(err)
	}
	if err := l.RegisterMint(baseMint, external); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(baseMint, ledger.AccountRef{Owner: user, Mint: baseMint}, external, 500); err != nil {
		t.Fatal(err)
	}
	if err := k.Deposit(v.Address, user, Base, 300); err != nil {
		t.Fatal(err)
	}
	if err := k.Withdraw(v.Address, user, Base, 300); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	bal, err := l.BalanceOf(ledger.AccountRef{Owner: user, Mint: baseMint})
	if err != nil || bal != 500 {
		t.Fatalf("expected user base balance restored to 500, got %d err=%v", bal, err)
	}
	loaded, _, err := k.LoadVault(v.Address)
	if err != nil {
		t.Fatal(err)
	}
	for _, mint := range loaded.CondBase {
		supply, err := l.TotalSupply(mint)
		if err != nil || supply != 0 {
			t.Fatalf("expected supply drained to 0 for %s, got %d err=%v", mint, supply, err)
		}
	}
}

func TestRedeemWinningsIsSolventAfterFinalization(t *testing.T) {
	k, l, _ := newTestKeeper(t, 0)
	owner := crypto.DeriveAddress("t", []byte("proposal3"))
	baseMint := crypto.DeriveAddress("t", []byte("base3"))
	quoteMint := crypto.DeriveAddress("t", []byte("quote3"))
	userA := crypto.DeriveAddress("t", []byte("userA"))
	userB := crypto.DeriveAddress("t", []byte("userB"))
	external := crypto.DeriveAddress("t", []byte("external3"))

	v, err := k.Initialize(owner, baseMint, quoteMint, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Activate(v.Address); err != nil {
		t.Fatal(err)
	}
	if err := l.RegisterMint(baseMint, external); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(baseMint, ledger.AccountRef{Owner: userA, Mint: baseMint}, external, 1_000); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(baseMint, ledger.AccountRef{Owner: userB, Mint: baseMint}, external, 1_000); err != nil {
		t.Fatal(err)
	}

	if err := k.Deposit(v.Address, userA, Base, 400); err != nil {
		t.Fatal(err)
	}
	if err := k.Deposit(v.Address, userB, Base, 600); err != nil {
		t.Fatal(err)
	}

	// Before redemption, the winning option's total supply never
	// exceeds the escrow balance (spec §4.B.2).
	loaded, _, err := k.LoadVault(v.Address)
	if err != nil {
		t.Fatal(err)
	}
	winnerMint := loaded.CondBase[1]
	supply, err := l.TotalSupply(winnerMint)
	if err != nil {
		t.Fatal(err)
	}
	escrowBal, err := l.BalanceOf(ledger.AccountRef{Owner: v.Address, Mint: baseMint})
	if err != nil {
		t.Fatal(err)
	}
	if escrowBal < supply {
		t.Fatalf("conservation invariant violated before finalize: escrow=%d supply=%d", escrowBal, supply)
	}

	if err := k.Finalize(v.Address, owner, 1); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	payoutA, err := k.RedeemWinnings(v.Address, userA, Base)
	if err != nil {
		t.Fatalf("redeem userA: %v", err)
	}
	if payoutA != 400 {
		t.Fatalf("expected userA payout 400, got %d", payoutA)
	}
	payoutB, err := k.RedeemWinnings(v.Address, userB, Base)
	if err != nil {
		t.Fatalf("redeem userB: %v", err)
	}
	if payoutB != 600 {
		t.Fatalf("expected userB payout 600, got %d", payoutB)
	}

	finalEscrow, err := l.BalanceOf(ledger.AccountRef{Owner: v.Address, Mint: baseMint})
	if err != nil || finalEscrow != 0 {
		t.Fatalf("expected escrow drained to 0 after full redemption, got %d err=%v", finalEscrow, err)
	}
	balA, _ := l.BalanceOf(ledger.AccountRef{Owner: userA, Mint: baseMint})
	balB, _ := l.BalanceOf(ledger.AccountRef{Owner: userB, Mint: baseMint})
	if balA != 1_000 || balB != 1_000 {
		t.Fatalf("expected both users restored to original balance, got A=%d B=%d", balA, balB)
	}
}
