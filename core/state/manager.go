// Package state provides the KV persistence primitives (Manager) and
// the PDA-style seed-derived key helpers (keys.go) shared by every
// keeper, mirroring the teacher's core/state.Manager + storage/trie
// pairing.
package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/marketlayer/futarchy/storage/trie"
)

// Manager wraps a trie with RLP-encoded get/set helpers. Every keeper
// in this module is constructed over a *Manager rather than touching
// the trie directly.
type Manager struct {
	trie *trie.Trie
}

// NewManager constructs a Manager over the given trie.
func NewManager(tr *trie.Trie) *Manager {
	return &Manager{trie: tr}
}

// KVGet decodes the RLP-encoded value stored at key into out, which
// must be a pointer. It returns (false, nil) if the key is absent.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("state: key must not be empty")
	}
	data, err := m.trie.Get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode key %x: %w", key, err)
	}
	return true, nil
}

// KVSet RLP-encodes value and stores it at key.
func (m *Manager) KVSet(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode key %x: %w", key, err)
	}
	return m.trie.Update(key, data)
}

// KVDelete removes the record at key.
func (m *Manager) KVDelete(key []byte) error {
	return m.trie.Delete(key)
}

// KVHas reports whether a record exists at key.
func (m *Manager) KVHas(key []byte) (bool, error) {
	return m.trie.Has(key)
}
