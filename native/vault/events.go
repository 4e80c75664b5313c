package vault

import (
	"github.com/marketlayer/futarchy/core/events"
	"github.com/marketlayer/futarchy/core/types"
	"github.com/marketlayer/futarchy/crypto"
)

func sideLabel(s Side) string {
	if s == Base {
		return "base"
	}
	return "quote"
}

// VaultInitialized is emitted by initialize.
type VaultInitialized struct {
	Vault, Owner, BaseMint, QuoteMint crypto.Address
	UnixTime                         int64
}

func (e VaultInitialized) EventType() string { return "VaultInitialized" }

func (e VaultInitialized) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"vault":      e.Vault.String(),
			"owner":      e.Owner.String(),
			"base_mint":  e.BaseMint.String(),
			"quote_mint": e.QuoteMint.String(),
			"unix_time":  events.FormatInt64(e.UnixTime),
		},
	}
}

// OptionAdded is emitted by add_option.
type OptionAdded struct {
	Vault                crypto.Address
	OptionIdx            uint32
	CondBase, CondQuote  crypto.Address
	UnixTime             int64
}

func (e OptionAdded) EventType() string { return "OptionAdded" }

func (e OptionAdded) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"vault":      e.Vault.String(),
			"option_idx": events.FormatUint32(e.OptionIdx),
			"cond_base":  e.CondBase.String(),
			"cond_quote": e.CondQuote.String(),
			"unix_time":  events.FormatInt64(e.UnixTime),
		},
	}
}

// VaultActivated is emitted by activate.
type VaultActivated struct {
	Vault      crypto.Address
	NumOptions uint32
	UnixTime   int64
}

func (e VaultActivated) EventType() string { return "VaultActivated" }

func (e VaultActivated) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"vault":       e.Vault.String(),
			"num_options": events.FormatUint32(e.NumOptions),
			"unix_time":   events.FormatInt64(e.UnixTime),
		},
	}
}

// Deposited is emitted by deposit.
type Deposited struct {
	Vault, User crypto.Address
	Side        Side
	Amount      uint64
	UnixTime    int64
}

func (e Deposited) EventType() string { return "Deposited" }

func (e Deposited) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"vault":     e.Vault.String(),
			"user":      e.User.String(),
			"side":      sideLabel(e.Side),
			"amount":    events.FormatUint64(e.Amount),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

// Withdrawn is emitted by withdraw.
type Withdrawn struct {
	Vault, User crypto.Address
	Side        Side
	Amount      uint64
	UnixTime    int64
}

func (e Withdrawn) EventType() string { return "Withdrawn" }

func (e Withdrawn) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"vault":     e.Vault.String(),
			"user":      e.User.String(),
			"side":      sideLabel(e.Side),
			"amount":    events.FormatUint64(e.Amount),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

// VaultFinalized is emitted by finalize.
type VaultFinalized struct {
	Vault     crypto.Address
	WinnerIdx uint32
	UnixTime  int64
}

func (e VaultFinalized) EventType() string { return "VaultFinalized" }

func (e VaultFinalized) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"vault":      e.Vault.String(),
			"winner_idx": events.FormatUint32(e.WinnerIdx),
			"unix_time":  events.FormatInt64(e.UnixTime),
		},
	}
}

// Redeemed is emitted by redeem_winnings.
type Redeemed struct {
	Vault, User crypto.Address
	Side        Side
	Payout      uint64
	UnixTime    int64
}

func (e Redeemed) EventType() string { return "Redeemed" }

func (e Redeemed) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"vault":     e.Vault.String(),
			"user":      e.User.String(),
			"side":      sideLabel(e.Side),
			"payout":    events.FormatUint64(e.Payout),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

var (
	_ events.Event = VaultInitialized{}
	_ events.Event = OptionAdded{}
	_ events.Event = VaultActivated{}
	_ events.Event = Deposited{}
	_ events.Event = Withdrawn{}
	_ events.Event = VaultFinalized{}
	_ events.Event = Redeemed{}
)
