// Package trie keeps the teacher's Get/Update shape (plus Has and
// Delete; there is no Commit, since nothing is staged) over the
// key-value backend, hashing every key with Keccak-256 before it
// touches storage the way the original trie wrapper hashed keys before
// insertion into go-ethereum's Merkle-Patricia trie. This module has
// no consumer for a commitment root or inclusion proof, so the trie is
// backed directly by storage.Database instead of go-ethereum's
// triedb/pathdb stack — see DESIGN.md.
package trie

import (
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/marketlayer/futarchy/storage"
)

// Trie is a hashed-key view over a storage.Database. It is safe for
// concurrent use, unlike the teacher's original wrapper, since keepers
// may be invoked from concurrent RPC-style callers even though each
// logical mutation is still expected to run to completion without
// interleaving (see spec §5).
type Trie struct {
	mu    sync.RWMutex
	store storage.Database
}

// New constructs a Trie over the given backing store.
func New(store storage.Database) *Trie {
	return &Trie{store: store}
}

// hash returns the Keccak-256 digest of key, matching the teacher's
// convention that keys handed to the trie are pre-hashed.
func hash(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// Get retrieves the raw bytes stored for key, returning (nil, nil) if
// absent.
func (t *Trie) Get(key []byte) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, err := t.store.Get(hash(key))
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// Has reports whether key is present.
func (t *Trie) Has(key []byte) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.Has(hash(key))
}

// Update stores value under key, overwriting any prior value.
func (t *Trie) Update(key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Put(hash(key), value)
}

// Delete removes key.
func (t *Trie) Delete(key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Delete(hash(key))
}
