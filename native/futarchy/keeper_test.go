package futarchy

import (
	"context"
	"testing"

	"github.com/holiman/uint256"

	"github.com/marketlayer/futarchy/core/events"
	"github.com/marketlayer/futarchy/core/state"
	"github.com/marketlayer/futarchy/crypto"
	"github.com/marketlayer/futarchy/native/amm"
	"github.com/marketlayer/futarchy/native/ledger"
	"github.com/marketlayer/futarchy/native/vault"
	"github.com/marketlayer/futarchy/storage"
	"github.com/marketlayer/futarchy/storage/trie"
)

func newTestKeeper(t *testing.T, now int64) (*Keeper, *ledger.Ledger, *events.Recorder, *state.OffsetClock) {
	t.Helper()
	mgr := state.NewManager(trie.New(storage.NewMemDB()))
	l := ledger.New(mgr)
	rec := &events.Recorder{}
	clock := &state.OffsetClock{Base: state.FixedClock(0), Offset: now}
	ammKeeper := amm.NewKeeper(mgr, l, clock, rec)
	vaultKeeper := vault.NewKeeper(mgr, l, clock, rec)
	return NewKeeper(mgr, ammKeeper, vaultKeeper, clock, rec), l, rec, clock
}

func defaultConfig() ProposalConfig {
	return ProposalConfig{
		LengthSeconds:       3600,
		StartingObservation: 1_000_000,
		MaxObservationDelta: 100_000,
		WarmupDuration:      0,
		MarketBiasBps:       0,
		FeeBps:              30,
	}
}

func TestProposalLifecycleResolvesToChallenger(t *testing.T) {
	k, l, _, clock := newTestKeeper(t, 1_000)
	modAddr := crypto.DeriveAddress("t", []byte("moderator"))
	if _, err := k.CreateModerator(1, AddressAuthority(modAddr)); err != nil {
		t.Fatalf("create moderator: %v", err)
	}

	creator := crypto.DeriveAddress("t", []byte("creator"))
	baseMint := crypto.DeriveAddress("t", []byte("base"))
	quoteMint := crypto.DeriveAddress("t", []byte("quote"))
	external := crypto.DeriveAddress("t", []byte("external"))

	if err := l.RegisterMint(baseMint, external); err != nil {
		t.Fatal(err)
	}
	if err := l.RegisterMint(quoteMint, external); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(baseMint, ledger.AccountRef{Owner: creator, Mint: baseMint}, external, 1_000_000); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(quoteMint, ledger.AccountRef{Owner: creator, Mint: quoteMint}, external, 1_000_000); err != nil {
		t.Fatal(err)
	}

	// A max observation delta far above the ~10^12 scaled prices lets each
	// pool's observation follow its own price; with the default 100_000
	// both observations would climb in identical clamped steps and tie.
	cfg := defaultConfig()
	cfg.MaxObservationDelta = 10_000_000_000_000

	p, err := k.InitializeProposal(modAddr, creator, baseMint, quoteMint, cfg)
	if err != nil {
		t.Fatalf("initialize proposal: %v", err)
	}
	if p.State != ProposalSetup {
		t.Fatalf("expected Setup, got %s", p.State)
	}
	if len(p.Pools) != 2 {
		t.Fatalf("expected 2 pools at init, got %d", len(p.Pools))
	}

	p, err = k.LaunchProposal(context.Background(), p.Address, 100_000, 100_000)
	if err != nil {
		t.Fatalf("launch proposal: %v", err)
	}
	if p.State != ProposalPending {
		t.Fatalf("expected Pending, got %s", p.State)
	}

	// AddLiquidity already spent every conditional token minted during
	// launch; split a bit more collateral so the creator has something
	// to swap with on the challenger pool.
	if err := k.vault.Deposit(p.Vault, creator, vault.Quote, 50_000); err != nil {
		t.Fatalf("top-up deposit: %v", err)
	}

	// Swap on pool 1 (the challenger) to push its TWAP above the
	// status-quo pool's, so finalization should pick option 1.
	clock.Advance(1_000)
	if err := k.amm.CrankTWAP(p.Pools[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := k.amm.Swap(p.Pools[1], creator, amm.AToB, 50_000, 0); err != nil {
		t.Fatalf("swap: %v", err)
	}

	clock.Advance(1_000)
	if err := k.amm.CrankTWAP(p.Pools[0]); err != nil {
		t.Fatal(err)
	}
	if err := k.amm.CrankTWAP(p.Pools[1]); err != nil {
		t.Fatal(err)
	}

	clock.Advance(defaultConfig().LengthSeconds)
	p, err = k.FinalizeProposal(context.Background(), p.Address)
	if err != nil {
		t.Fatalf("finalize proposal: %v", err)
	}
	if p.State != ProposalResolved {
		t.Fatalf("expected Resolved, got %s", p.State)
	}
	if p.WinnerIdx != 1 {
		t.Fatalf("expected challenger option 1 to win, got %d", p.WinnerIdx)
	}

	base, quote, err := k.RedeemLiquidity(context.Background(), p.Address)
	if err != nil {
		t.Fatalf("redeem liquidity: %v", err)
	}
	if base == 0 && quote == 0 {
		t.Fatalf("expected nonzero liquidity payout, got base=%d quote=%d", base, quote)
	}
}

func TestSelectWinnerFavoursStatusQuoOnTie(t *testing.T) {
	twaps := []*uint256.Int{uint256.NewInt(1_000_000), uint256.NewInt(1_000_000)}
	if got := SelectWinner(twaps, 100); got != 0 {
		t.Fatalf("expected status quo to win a tie, got %d", got)
	}
}

func TestSelectWinnerRequiresBeatingBiasThreshold(t *testing.T) {
	twap0 := uint256.NewInt(1_000_000)
	// 1% above twap0, bias set to 2%: challenger must not win.
	justUnder := uint256.NewInt(1_010_000)
	if got := SelectWinner([]*uint256.Int{twap0, justUnder}, 200); got != 0 {
		t.Fatalf("expected status quo to hold under the bias threshold, got %d", got)
	}

	// 3% above twap0, bias set to 2%: challenger should win.
	over := uint256.NewInt(1_030_000)
	if got := SelectWinner([]*uint256.Int{twap0, over}, 200); got != 1 {
		t.Fatalf("expected challenger to win past the bias threshold, got %d", got)
	}
}

func TestFinalizeProposalRejectsBeforeExpiry(t *testing.T) {
	k, l, _, _ := newTestKeeper(t, 1_000)
	modAddr := crypto.DeriveAddress("t", []byte("moderator2"))
	if _, err := k.CreateModerator(1, AddressAuthority(modAddr)); err != nil {
		t.Fatal(err)
	}
	creator := crypto.DeriveAddress("t", []byte("creator2"))
	baseMint := crypto.DeriveAddress("t", []byte("base2"))
	quoteMint := crypto.DeriveAddress("t", []byte("quote2"))
	external := crypto.DeriveAddress("t", []byte("external2"))
	if err := l.RegisterMint(baseMint, external); err != nil {
		t.Fatal(err)
	}
	if err := l.RegisterMint(quoteMint, external); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(baseMint, ledger.AccountRef{Owner: creator, Mint: baseMint}, external, 100_000); err != nil {
		t.Fatal(err)
	}
	if err := l.MintTo(quoteMint, ledger.AccountRef{Owner: creator, Mint: quoteMint}, external, 100_000); err != nil {
		t.Fatal(err)
	}

	p, err := k.InitializeProposal(modAddr, creator, baseMint, quoteMint, defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := k.LaunchProposal(context.Background(), p.Address, 10_000, 10_000); err != nil {
		t.Fatal(err)
	}
	if _, err := k.FinalizeProposal(context.Background(), p.Address); err != ErrProposalNotExpired {
		t.Fatalf("expected ErrProposalNotExpired, got %v", err)
	}
}
