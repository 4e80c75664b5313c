package events

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/marketlayer/futarchy/crypto"
)

// FormatAddress renders an address for an event attribute map, using
// the empty string for the zero address so unset fields stay absent
// from JSON output rather than rendering a confusing bech32 string.
func FormatAddress(a crypto.Address) string {
	if a.IsZero() {
		return ""
	}
	return a.String()
}

// FormatUint64 renders a uint64 event attribute.
func FormatUint64(v uint64) string {
	return fmt.Sprintf("%d", v)
}

// FormatUint32 renders a uint32 event attribute.
func FormatUint32(v uint32) string {
	return fmt.Sprintf("%d", v)
}

// FormatInt64 renders an int64 event attribute.
func FormatInt64(v int64) string {
	return fmt.Sprintf("%d", v)
}

// FormatUint256 renders a u128/u256-scale event attribute in decimal.
func FormatUint256(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// FormatBool renders a boolean event attribute.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
