// Package crypto provides the address and PDA-style seed-derivation
// primitives shared by every component of the protocol.
package crypto

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcutil/bech32"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// AddressPrefix distinguishes the human-readable bech32 namespace an
// Address belongs to.
type AddressPrefix string

const (
	// AccountPrefix namespaces ordinary, externally-held addresses
	// (token holders, creators, admins).
	AccountPrefix AddressPrefix = "fut"
	// ProgramPrefix namespaces seed-derived, unforgeable identities —
	// the Go analogue of a Solana PDA.
	ProgramPrefix AddressPrefix = "futpda"
)

// AddressLength is the fixed byte width of an Address: the full 32-byte
// Keccak-256 digest DeriveAddress produces, kept untruncated to avoid
// collisions across the large key-space of pools/vaults/proposals.
const AddressLength = 32

// Address is a derived or externally supplied identity. It never
// carries a private key; authority is demonstrated either by an
// external signature (outside this module's scope, see TokenLedger in
// native/ledger) or, for derived addresses, by supplying the seed
// preimage that produced it.
type Address struct {
	prefix AddressPrefix
	bytes  [AddressLength]byte
}

// NewAddress wraps a raw 32-byte identity under the given prefix.
func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("crypto: address must be %d bytes, got %d", AddressLength, len(b))
	}
	var a Address
	a.prefix = prefix
	copy(a.bytes[:], b)
	return a, nil
}

// MustNewAddress is NewAddress but panics on malformed input; reserved
// for compile-time-known test fixtures.
func MustNewAddress(prefix AddressPrefix, b []byte) Address {
	addr, err := NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

// Bytes returns the raw identity bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a.bytes[:])
	return out
}

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool {
	var zero [AddressLength]byte
	return a.bytes == zero
}

// Equal reports byte-for-byte equality, ignoring the display prefix.
func (a Address) Equal(other Address) bool {
	return a.bytes == other.bytes
}

// String renders the address as a bech32 string for logging and events.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		// ConvertBits only fails on malformed bit widths, which cannot
		// happen for a fixed-size Address.
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// MarshalText implements encoding.TextMarshaler so addresses render
// readably in JSON event payloads.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// addressRLP is the on-the-wire shape of an Address. Address's own
// fields are unexported (to keep the prefix/bytes pair from being
// mutated out from under callers), so RLP encoding goes through this
// explicit shadow struct rather than reflecting over Address directly.
type addressRLP struct {
	Prefix string
	Bytes  []byte
}

// EncodeRLP implements rlp.Encoder.
func (a Address) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, addressRLP{Prefix: string(a.prefix), Bytes: a.bytes[:]})
}

// DecodeRLP implements rlp.Decoder.
func (a *Address) DecodeRLP(s *rlp.Stream) error {
	var aux addressRLP
	if err := s.Decode(&aux); err != nil {
		return err
	}
	a.prefix = AddressPrefix(aux.Prefix)
	copy(a.bytes[:], aux.Bytes)
	return nil
}

// ParseAddress decodes a bech32-encoded address string produced by
// String(), recovering both its display prefix and raw identity bytes.
func ParseAddress(s string) (Address, error) {
	prefix, data, err := bech32.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: decode address: %w", err)
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: decode address bits: %w", err)
	}
	return NewAddress(AddressPrefix(prefix), conv)
}

// DeriveAddress computes a PDA-style identity from a domain seed and an
// ordered list of seed components, the direct analogue of a Solana PDA
// derived from `(seed_strings..., program_id)`. Two callers presenting
// the same seeds always arrive at the same address; reproducing the
// preimage is the only way to "sign" as that identity (see
// native/ledger.TransferWithDelegate, which the keepers call with the
// re-derived reserve or vault address).
func DeriveAddress(domain string, seeds ...[]byte) Address {
	parts := make([][]byte, 0, len(seeds)+1)
	parts = append(parts, []byte(domain))
	for _, s := range seeds {
		lenPrefix := make([]byte, 8)
		lenPrefix[7] = byte(len(s))
		parts = append(parts, lenPrefix, s)
	}
	digest := ethcrypto.Keccak256(parts...)
	var out [AddressLength]byte
	copy(out[:], digest)
	return Address{prefix: ProgramPrefix, bytes: out}
}

// Uint64Seed encodes a little-endian uint64 seed component, matching
// spec §3's `nonce_le_bytes` / `id_le_bytes` seed convention.
func Uint64Seed(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
	return b
}

// Uint32Seed encodes a little-endian uint32 seed component (option
// index seeds).
func Uint32Seed(v uint32) []byte {
	b := make([]byte, 4)
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
	return b
}
