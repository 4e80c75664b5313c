package vault

import "errors"

// Sentinel errors for the conditional-token vault (spec §4.B, §7).
var (
	ErrInvalidAmount       = errors.New("vault: invalid amount")
	ErrInvalidOwner        = errors.New("vault: caller is not the vault owner")
	ErrInvalidState        = errors.New("vault: operation invalid for vault state")
	ErrInvalidVault        = errors.New("vault: vault identity mismatch")
	ErrOptionLimitReached  = errors.New("vault: option limit reached")
	ErrNotEnoughOptions    = errors.New("vault: below minimum option count")
	ErrInvalidWinningIndex = errors.New("vault: winning index out of range")
	ErrInsufficientBalance = errors.New("vault: insufficient conditional balance")
)
