package futarchy

import (
	"context"
	"log/slog"

	"github.com/holiman/uint256"

	"github.com/marketlayer/futarchy/core/events"
	"github.com/marketlayer/futarchy/core/state"
	"github.com/marketlayer/futarchy/crypto"
	"github.com/marketlayer/futarchy/native/amm"
	"github.com/marketlayer/futarchy/native/vault"
	"github.com/marketlayer/futarchy/pkg/observability"
)

var tracer = observability.Tracer("futarchy")

// store is the minimal persistence surface Keeper needs.
type store interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVSet(key []byte, value interface{}) error
}

// Keeper coordinates the amm and vault keepers through a proposal's
// full lifecycle (spec §4.C). It never touches their persisted records
// directly — every cross-component effect goes through the component
// keeper's own public operations, matching the PDA-signed call
// convention spec §5 describes.
type Keeper struct {
	store   store
	amm     *amm.Keeper
	vault   *vault.Keeper
	clock   state.Clock
	emitter events.Emitter
	logger  *slog.Logger
	metrics *observability.FutarchyMetrics
}

// NewKeeper constructs an orchestrator Keeper over the given component
// keepers. A nil emitter defaults to a no-op.
func NewKeeper(s store, ammKeeper *amm.Keeper, vaultKeeper *vault.Keeper, clock state.Clock, emitter events.Emitter) *Keeper {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &Keeper{store: s, amm: ammKeeper, vault: vaultKeeper, clock: clock, emitter: emitter, metrics: observability.Metrics()}
}

// WithLogger attaches a structured logger for proposal lifecycle
// diagnostics. A nil Keeper logger stays silent. Returns k for
// chaining off NewKeeper.
func (k *Keeper) WithLogger(logger *slog.Logger) *Keeper {
	k.logger = logger
	return k
}

func proposalKey(addr crypto.Address) []byte {
	return crypto.DeriveAddress("proposal_record", addr.Bytes()).Bytes()
}

func moderatorKey(addr crypto.Address) []byte {
	return crypto.DeriveAddress("moderator_record", addr.Bytes()).Bytes()
}

// LoadProposal reads a proposal by its PDA address.
func (k *Keeper) LoadProposal(addr crypto.Address) (Proposal, bool, error) {
	var p Proposal
	found, err := k.store.KVGet(proposalKey(addr), &p)
	if err != nil {
		return Proposal{}, false, err
	}
	return p, found, nil
}

func (k *Keeper) saveProposal(p Proposal) error {
	return k.store.KVSet(proposalKey(p.Address), p)
}

// LoadModerator reads a moderator by its PDA address.
func (k *Keeper) LoadModerator(addr crypto.Address) (Moderator, bool, error) {
	var m Moderator
	found, err := k.store.KVGet(moderatorKey(addr), &m)
	if err != nil {
		return Moderator{}, false, err
	}
	return m, found, nil
}

func (k *Keeper) saveModerator(m Moderator) error {
	return k.store.KVSet(moderatorKey(m.Address), m)
}

// CreateModerator allocates a new moderator namespace.
func (k *Keeper) CreateModerator(id uint64, admin Authority) (Moderator, error) {
	addr := state.ModeratorAddress(id)
	if _, found, err := k.LoadModerator(addr); err != nil {
		return Moderator{}, err
	} else if found {
		return Moderator{}, ErrInvalidModerator
	}
	m := Moderator{Address: addr, ID: id, Admin: admin.AdminAddress()}
	if err := k.saveModerator(m); err != nil {
		return Moderator{}, err
	}
	return m, nil
}

// InitializeProposal allocates a proposal in Setup, initializes its
// vault, and creates pools 0 and 1 with the proposal PDA as admin and
// creator as liquidity provider (spec §4.C.1).
func (k *Keeper) InitializeProposal(moderatorAddr, creator, baseMint, quoteMint crypto.Address, cfg ProposalConfig) (Proposal, error) {
	if err := cfg.Validate(); err != nil {
		return Proposal{}, err
	}
	mod, found, err := k.LoadModerator(moderatorAddr)
	if err != nil {
		return Proposal{}, err
	}
	if !found {
		return Proposal{}, ErrInvalidModerator
	}

	id := mod.ProposalIDCounter
	addr := state.ProposalAddress(moderatorAddr, id)

	v, err := k.vault.Initialize(addr, baseMint, quoteMint, id)
	if err != nil {
		return Proposal{}, err
	}

	twapParams := amm.TwapParams{
		StartingObservation: cfg.StartingObservation,
		MaxObservationDelta: cfg.MaxObservationDelta,
		WarmupDuration:      cfg.WarmupDuration,
	}

	pool0, err := k.amm.CreatePool(addr, v.CondQuote[0], v.CondBase[0], creator, cfg.FeeBps, twapParams)
	if err != nil {
		return Proposal{}, err
	}
	pool1, err := k.amm.CreatePool(addr, v.CondQuote[1], v.CondBase[1], creator, cfg.FeeBps, twapParams)
	if err != nil {
		return Proposal{}, err
	}

	p := Proposal{
		Address:    addr,
		ID:         id,
		Moderator:  moderatorAddr,
		Creator:    creator,
		BaseMint:   baseMint,
		QuoteMint:  quoteMint,
		Vault:      v.Address,
		Pools:      []crypto.Address{pool0.Address, pool1.Address},
		NumOptions: 2,
		State:      ProposalSetup,
		Config:     cfg,
	}
	if err := k.saveProposal(p); err != nil {
		return Proposal{}, err
	}

	mod.ProposalIDCounter++
	if err := k.saveModerator(mod); err != nil {
		return Proposal{}, err
	}

	k.emitter.Emit(ProposalInitialized{Proposal: addr, Moderator: moderatorAddr, Creator: creator, Vault: v.Address, UnixTime: k.clock.Now()})
	return p, nil
}

// AddOption appends option k = num_options: a new conditional pair in
// the vault, and a fresh pool over it. Setup only; callable by
// proposal.creator.
func (k *Keeper) AddOption(proposalAddr, caller crypto.Address) (Proposal, error) {
	p, found, err := k.LoadProposal(proposalAddr)
	if err != nil {
		return Proposal{}, err
	}
	if !found {
		return Proposal{}, ErrInvalidProposal
	}
	if !caller.Equal(p.Creator) {
		return Proposal{}, ErrInvalidCreator
	}

	v, err := k.vault.AddOption(p.Vault)
	if err != nil {
		return Proposal{}, err
	}
	idx := v.NumOptions - 1
	newPool, err := k.amm.CreatePool(p.Address, v.CondQuote[idx], v.CondBase[idx], p.Creator, p.Config.FeeBps, amm.TwapParams{
		StartingObservation: p.Config.StartingObservation,
		MaxObservationDelta: p.Config.MaxObservationDelta,
		WarmupDuration:      p.Config.WarmupDuration,
	})
	if err != nil {
		return Proposal{}, err
	}

	if err := p.addOption(newPool.Address); err != nil {
		return Proposal{}, err
	}
	if err := k.saveProposal(p); err != nil {
		return Proposal{}, err
	}
	k.emitter.Emit(OptionAddedProposal{Proposal: proposalAddr, OptionIdx: idx, Pool: newPool.Address, UnixTime: k.clock.Now()})
	return p, nil
}

// LaunchProposal transitions Setup → Pending: activates the vault,
// splits baseAmount/quoteAmount of collateral into every option's
// conditional pair, and seeds every pool's liquidity from the
// creator's freshly minted conditional tokens (spec §4.C.1). A failure
// stops the remaining steps and leaves the proposal in Setup, but the
// steps are not rolled back: a vault activation, deposit or liquidity
// addition that already succeeded stays persisted.
func (k *Keeper) LaunchProposal(ctx context.Context, proposalAddr crypto.Address, baseAmount, quoteAmount uint64) (Proposal, error) {
	_, span := tracer.Start(ctx, "launch_proposal")
	defer span.End()

	p, found, err := k.LoadProposal(proposalAddr)
	if err != nil {
		return Proposal{}, err
	}
	if !found {
		return Proposal{}, ErrInvalidProposal
	}
	if p.State != ProposalSetup {
		return Proposal{}, ErrInvalidState
	}

	if err := k.vault.Activate(p.Vault); err != nil {
		return Proposal{}, err
	}
	if err := k.vault.Deposit(p.Vault, p.Creator, vault.Base, baseAmount); err != nil {
		return Proposal{}, err
	}
	if err := k.vault.Deposit(p.Vault, p.Creator, vault.Quote, quoteAmount); err != nil {
		return Proposal{}, err
	}

	for _, poolAddr := range p.Pools {
		if err := k.amm.AddLiquidity(poolAddr, p.Creator, quoteAmount, baseAmount); err != nil {
			return Proposal{}, err
		}
	}

	now := k.clock.Now()
	if err := p.launch(now); err != nil {
		return Proposal{}, err
	}
	if err := k.saveProposal(p); err != nil {
		return Proposal{}, err
	}
	k.emitter.Emit(ProposalLaunched{Proposal: proposalAddr, BaseAmount: baseAmount, QuoteAmount: quoteAmount, UnixTime: now})
	k.metrics.SetProposalLiquidity(proposalAddr.String(), quoteAmount)
	if k.logger != nil {
		k.logger.Info("futarchy: proposal launched", "proposal", proposalAddr.String(), "base_amount", baseAmount, "quote_amount", quoteAmount)
	}
	return p, nil
}

// FinalizeProposal transitions Pending → Resolved(winner). Permissionless,
// callable once the betting window has elapsed. Crank every pool's
// TWAP, select a winner under the market-bias threshold, freeze every
// pool, and finalize the vault (spec §4.C.1).
func (k *Keeper) FinalizeProposal(ctx context.Context, proposalAddr crypto.Address) (Proposal, error) {
	_, span := tracer.Start(ctx, "finalize_proposal")
	defer span.End()

	p, found, err := k.LoadProposal(proposalAddr)
	if err != nil {
		return Proposal{}, err
	}
	if !found {
		return Proposal{}, ErrInvalidProposal
	}
	now := k.clock.Now()
	if p.State != ProposalPending {
		return Proposal{}, ErrInvalidState
	}
	if now < p.CreatedAt+p.Config.LengthSeconds {
		return Proposal{}, ErrProposalNotExpired
	}

	twaps := make([]*uint256.Int, len(p.Pools))
	for i, poolAddr := range p.Pools {
		if err := k.amm.CrankTWAP(poolAddr); err != nil {
			return Proposal{}, err
		}
		pool, found, err := k.amm.LoadPool(poolAddr)
		if err != nil {
			return Proposal{}, err
		}
		if !found {
			return Proposal{}, amm.ErrInvalidPool
		}
		twap, err := pool.Oracle.FetchTWAP()
		if err != nil {
			return Proposal{}, err
		}
		twaps[i] = twap
	}

	winner := SelectWinner(twaps, p.Config.MarketBiasBps)

	for _, poolAddr := range p.Pools {
		if err := k.amm.CeaseTrading(poolAddr, p.Address); err != nil {
			return Proposal{}, err
		}
	}
	if err := k.vault.Finalize(p.Vault, p.Address, winner); err != nil {
		return Proposal{}, err
	}

	if err := p.finalize(now, winner); err != nil {
		return Proposal{}, err
	}
	if err := k.saveProposal(p); err != nil {
		return Proposal{}, err
	}
	k.emitter.Emit(ProposalFinalized{Proposal: proposalAddr, WinnerIdx: winner, UnixTime: now})
	k.metrics.ObserveFinalize(winner)
	if k.logger != nil {
		k.logger.Info("futarchy: proposal finalized", "proposal", proposalAddr.String(), "winner_idx", winner)
	}
	return p, nil
}

// SelectWinner applies the market-bias threshold of spec §4.C.1 step 2:
// option 0 wins by default unless some alternative beats it by more
// than marketBiasBps basis points. Ties favour option 0.
func SelectWinner(twaps []*uint256.Int, marketBiasBps uint32) uint32 {
	threshold := new(uint256.Int).Mul(twaps[0], uint256.NewInt(uint64(amm.FeeDenominatorBps)+uint64(marketBiasBps)))
	winner := uint32(0)
	best := new(uint256.Int).Mul(twaps[0], uint256.NewInt(amm.FeeDenominatorBps))
	for i := 1; i < len(twaps); i++ {
		scaled := new(uint256.Int).Mul(twaps[i], uint256.NewInt(amm.FeeDenominatorBps))
		if scaled.Gt(threshold) && scaled.Gt(best) {
			winner = uint32(i)
			best = scaled
		}
	}
	return winner
}

// RedeemLiquidity withdraws the creator's share of the winning pool's
// liquidity and redeems the resulting conditional balances for
// underlying base and quote, 1:1 (spec §4.C.1). Resolved only.
func (k *Keeper) RedeemLiquidity(ctx context.Context, proposalAddr crypto.Address) (baseOut, quoteOut uint64, err error) {
	_, span := tracer.Start(ctx, "redeem_liquidity")
	defer span.End()

	p, found, err := k.LoadProposal(proposalAddr)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return 0, 0, ErrInvalidProposal
	}
	if p.State != ProposalResolved {
		return 0, 0, ErrInvalidState
	}

	winningPool := p.Pools[p.WinnerIdx]
	pool, found, err := k.amm.LoadPool(winningPool)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return 0, 0, amm.ErrInvalidPool
	}
	amountA, amountB := pool.ReserveA, pool.ReserveB

	if err := k.amm.RemoveLiquidity(winningPool, p.Creator, amountA, amountB); err != nil {
		return 0, 0, err
	}

	quotePayout, err := k.vault.RedeemWinnings(p.Vault, p.Creator, vault.Quote)
	if err != nil {
		return 0, 0, err
	}
	basePayout, err := k.vault.RedeemWinnings(p.Vault, p.Creator, vault.Base)
	if err != nil {
		return 0, 0, err
	}

	k.emitter.Emit(LiquidityRedeemed{Proposal: proposalAddr, BaseAmount: basePayout, QuoteAmount: quotePayout, UnixTime: k.clock.Now()})
	if k.logger != nil {
		k.logger.Info("futarchy: liquidity redeemed", "proposal", proposalAddr.String(), "base_amount", basePayout, "quote_amount", quotePayout)
	}
	return basePayout, quotePayout, nil
}
