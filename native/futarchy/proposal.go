package futarchy

import "github.com/marketlayer/futarchy/crypto"

// ProposalState is the lifecycle stage of a Proposal (spec §4.C.2).
type ProposalState uint8

const (
	ProposalSetup ProposalState = iota
	ProposalPending
	ProposalResolved
)

func (s ProposalState) String() string {
	switch s {
	case ProposalSetup:
		return "setup"
	case ProposalPending:
		return "pending"
	case ProposalResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Proposal is a single futarchy contest: one vault and one pool per
// option, resolved by comparing each pool's TWAP (spec §3, §4.C).
type Proposal struct {
	Address    crypto.Address
	ID         uint64
	Moderator  crypto.Address
	Creator    crypto.Address
	BaseMint   crypto.Address
	QuoteMint  crypto.Address
	Vault      crypto.Address
	Pools      []crypto.Address
	NumOptions uint32
	State      ProposalState
	CreatedAt  int64
	WinnerIdx  uint32
	Config     ProposalConfig
}

func (p *Proposal) addOption(pool crypto.Address) error {
	if p.State != ProposalSetup {
		return ErrInvalidState
	}
	if p.NumOptions >= maxOptionsInPack {
		return ErrTooManyOptions
	}
	p.Pools = append(p.Pools, pool)
	p.NumOptions++
	return nil
}

// maxOptionsInPack mirrors native/vault.MaxOptions without importing
// the vault package into this file's option-count guard; the
// orchestrator's keeper enforces the authoritative check against the
// vault itself before this ever matters.
const maxOptionsInPack = 6

func (p *Proposal) launch(now int64) error {
	if p.State != ProposalSetup {
		return ErrInvalidState
	}
	p.CreatedAt = now
	p.State = ProposalPending
	return nil
}

func (p *Proposal) finalize(now int64, winnerIdx uint32) error {
	if p.State != ProposalPending {
		return ErrInvalidState
	}
	if now < p.CreatedAt+p.Config.LengthSeconds {
		return ErrProposalNotExpired
	}
	p.State = ProposalResolved
	p.WinnerIdx = winnerIdx
	return nil
}
