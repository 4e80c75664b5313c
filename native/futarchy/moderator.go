package futarchy

import "github.com/marketlayer/futarchy/crypto"

// Authority is the narrow identity surface the (out-of-scope) DAO
// hierarchy exposes to this orchestrator: anything that can name the
// address authorised to administer a moderator and check whether a
// candidate address holds that authority. A bare crypto.Address
// already satisfies it via AddressAuthority below; a real DAO
// multisig wiring would implement the same interface against its own
// member/threshold state.
type Authority interface {
	AdminAddress() crypto.Address
	IsAuthorized(candidate crypto.Address) bool
}

// AddressAuthority adapts a plain crypto.Address to Authority for
// moderators administered directly rather than through the DAO
// hierarchy: the sole authorized candidate is the address itself.
type AddressAuthority crypto.Address

// AdminAddress implements Authority.
func (a AddressAuthority) AdminAddress() crypto.Address { return crypto.Address(a) }

// IsAuthorized implements Authority.
func (a AddressAuthority) IsAuthorized(candidate crypto.Address) bool {
	return crypto.Address(a).Equal(candidate)
}

// Moderator scopes a family of proposals over one (base_mint,
// quote_mint) pair under a single admin authority (spec §3).
type Moderator struct {
	Address           crypto.Address
	ID                uint64
	Admin             crypto.Address
	ProposalIDCounter uint64
}
