package futarchy

import "errors"

// Sentinel errors for the proposal orchestrator (spec §4.C, §7).
var (
	ErrInvalidProposalParams = errors.New("futarchy: invalid proposal config")
	ErrInvalidProposal       = errors.New("futarchy: proposal identity mismatch")
	ErrInvalidState          = errors.New("futarchy: operation invalid for proposal state")
	ErrInvalidCreator        = errors.New("futarchy: caller is not the proposal creator")
	ErrProposalNotExpired    = errors.New("futarchy: proposal betting window has not elapsed")
	ErrTooManyOptions        = errors.New("futarchy: option limit reached")
	ErrInvalidModerator      = errors.New("futarchy: moderator identity mismatch")
)
