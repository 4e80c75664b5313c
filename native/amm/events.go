package amm

import (
	"github.com/holiman/uint256"

	"github.com/marketlayer/futarchy/core/events"
	"github.com/marketlayer/futarchy/core/types"
	"github.com/marketlayer/futarchy/crypto"
)

// PoolCreated is emitted by create_pool.
type PoolCreated struct {
	Pool, Admin, LP, MintA, MintB crypto.Address
	FeeBps                        uint32
	UnixTime                      int64
}

func (e PoolCreated) EventType() string { return "PoolCreated" }

func (e PoolCreated) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"pool":      e.Pool.String(),
			"admin":     e.Admin.String(),
			"lp":        e.LP.String(),
			"mint_a":    e.MintA.String(),
			"mint_b":    e.MintB.String(),
			"fee_bps":   events.FormatUint32(e.FeeBps),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

// LiquidityAdded is emitted by add_liquidity.
type LiquidityAdded struct {
	Pool             crypto.Address
	AmountA, AmountB uint64
	UnixTime         int64
}

func (e LiquidityAdded) EventType() string { return "LiquidityAdded" }

func (e LiquidityAdded) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"pool":      e.Pool.String(),
			"amount_a":  events.FormatUint64(e.AmountA),
			"amount_b":  events.FormatUint64(e.AmountB),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

// LiquidityRemoved is emitted by remove_liquidity.
type LiquidityRemoved struct {
	Pool             crypto.Address
	AmountA, AmountB uint64
	UnixTime         int64
}

func (e LiquidityRemoved) EventType() string { return "LiquidityRemoved" }

func (e LiquidityRemoved) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"pool":      e.Pool.String(),
			"amount_a":  events.FormatUint64(e.AmountA),
			"amount_b":  events.FormatUint64(e.AmountB),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

// CondSwap is emitted by swap.
type CondSwap struct {
	Pool               crypto.Address
	Direction          Direction
	Input, Output, Fee uint64
	UnixTime           int64
}

func (e CondSwap) EventType() string { return "CondSwap" }

func (e CondSwap) Event() *types.Event {
	dir := "a_to_b"
	if e.Direction == BToA {
		dir = "b_to_a"
	}
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"pool":      e.Pool.String(),
			"direction": dir,
			"input":     events.FormatUint64(e.Input),
			"output":    events.FormatUint64(e.Output),
			"fee":       events.FormatUint64(e.Fee),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

// TWAPUpdate is emitted by every crank_twap call that passes the crank
// limiter, including calls the oracle's recording interval turns into
// no-ops (LastObservation is then unchanged).
type TWAPUpdate struct {
	Pool            crypto.Address
	LastObservation *uint256.Int
	UnixTime        int64
}

func (e TWAPUpdate) EventType() string { return "TWAPUpdate" }

func (e TWAPUpdate) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"pool":             e.Pool.String(),
			"last_observation": events.FormatUint256(e.LastObservation),
			"unix_time":        events.FormatInt64(e.UnixTime),
		},
	}
}

// PoolCeased is emitted by cease_trading.
type PoolCeased struct {
	Pool     crypto.Address
	UnixTime int64
}

func (e PoolCeased) EventType() string { return "PoolCeased" }

func (e PoolCeased) Event() *types.Event {
	return &types.Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"pool":      e.Pool.String(),
			"unix_time": events.FormatInt64(e.UnixTime),
		},
	}
}

var (
	_ events.Event = PoolCreated{}
	_ events.Event = LiquidityAdded{}
	_ events.Event = LiquidityRemoved{}
	_ events.Event = CondSwap{}
	_ events.Event = TWAPUpdate{}
	_ events.Event = PoolCeased{}
)
