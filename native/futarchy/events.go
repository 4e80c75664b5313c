package futarchy

import (
	"github.com/marketlayer/futarchy/core/events"
	"github.com/marketlayer/futarchy/core/types"
	"github.com/marketlayer/futarchy/crypto"
)

// ProposalInitialized fires when initialize_proposal allocates a new
// proposal, its vault, and its first two pools.
type ProposalInitialized struct {
	Proposal  crypto.Address
	Moderator crypto.Address
	Creator   crypto.Address
	Vault     crypto.Address
	UnixTime  int64
}

func (e ProposalInitialized) EventType() string { return "ProposalInitialized" }

func (e ProposalInitialized) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"proposal":  e.Proposal.String(),
			"moderator": e.Moderator.String(),
			"creator":   e.Creator.String(),
			"vault":     e.Vault.String(),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

// OptionAddedProposal fires when add_option appends an option to a
// proposal already in Setup. Named distinctly from vault.OptionAdded
// since both packages model the same verb at different layers.
type OptionAddedProposal struct {
	Proposal  crypto.Address
	OptionIdx uint32
	Pool      crypto.Address
	UnixTime  int64
}

func (e OptionAddedProposal) EventType() string { return "OptionAdded" }

func (e OptionAddedProposal) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"proposal":   e.Proposal.String(),
			"option_idx": events.FormatUint32(e.OptionIdx),
			"pool":       e.Pool.String(),
			"unix_time":  events.FormatInt64(e.UnixTime),
		},
	}
}

// ProposalLaunched fires when launch_proposal moves Setup → Pending.
type ProposalLaunched struct {
	Proposal    crypto.Address
	BaseAmount  uint64
	QuoteAmount uint64
	UnixTime    int64
}

func (e ProposalLaunched) EventType() string { return "ProposalLaunched" }

func (e ProposalLaunched) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"proposal":     e.Proposal.String(),
			"base_amount":  events.FormatUint64(e.BaseAmount),
			"quote_amount": events.FormatUint64(e.QuoteAmount),
			"unix_time":    events.FormatInt64(e.UnixTime),
		},
	}
}

// ProposalFinalized fires when finalize_proposal moves Pending →
// Resolved with a winning option index.
type ProposalFinalized struct {
	Proposal  crypto.Address
	WinnerIdx uint32
	UnixTime  int64
}

func (e ProposalFinalized) EventType() string { return "ProposalFinalized" }

func (e ProposalFinalized) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"proposal":   e.Proposal.String(),
			"winner_idx": events.FormatUint32(e.WinnerIdx),
			"unix_time":  events.FormatInt64(e.UnixTime),
		},
	}
}

// LiquidityRedeemed fires when redeem_liquidity pays out the
// creator's share of the winning pool's liquidity.
type LiquidityRedeemed struct {
	Proposal    crypto.Address
	BaseAmount  uint64
	QuoteAmount uint64
	UnixTime    int64
}

func (e LiquidityRedeemed) EventType() string { return "LiquidityRedeemed" }

func (e LiquidityRedeemed) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"proposal":     e.Proposal.String(),
			"base_amount":  events.FormatUint64(e.BaseAmount),
			"quote_amount": events.FormatUint64(e.QuoteAmount),
			"unix_time":    events.FormatInt64(e.UnixTime),
		},
	}
}

var (
	_ events.Event = ProposalInitialized{}
	_ events.Event = OptionAddedProposal{}
	_ events.Event = ProposalLaunched{}
	_ events.Event = ProposalFinalized{}
	_ events.Event = LiquidityRedeemed{}
)
