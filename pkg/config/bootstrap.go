package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/marketlayer/futarchy/crypto"
)

// ModeratorManifest describes the moderators a fresh store should be
// seeded with — the genesis-file analogue for this protocol, without
// any of the teacher's consensus-genesis machinery.
type ModeratorManifest struct {
	Moderators []ModeratorEntry `yaml:"moderators"`
}

// ModeratorEntry is one bootstrap moderator: an id, its admin
// authority, and the (base, quote) mint pair its proposals trade.
type ModeratorEntry struct {
	ID        uint64 `yaml:"id"`
	Admin     string `yaml:"admin"`
	BaseMint  string `yaml:"base_mint"`
	QuoteMint string `yaml:"quote_mint"`
}

// LoadManifest reads a ModeratorManifest from a YAML file.
func LoadManifest(path string) (*ModeratorManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m := &ModeratorManifest{}
	if err := yaml.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// Addresses decodes the bech32-encoded admin/base/quote fields of an
// entry into crypto.Address values.
func (e ModeratorEntry) Addresses() (admin, baseMint, quoteMint crypto.Address, err error) {
	admin, err = crypto.ParseAddress(e.Admin)
	if err != nil {
		return crypto.Address{}, crypto.Address{}, crypto.Address{}, fmt.Errorf("moderator %d: admin: %w", e.ID, err)
	}
	baseMint, err = crypto.ParseAddress(e.BaseMint)
	if err != nil {
		return crypto.Address{}, crypto.Address{}, crypto.Address{}, fmt.Errorf("moderator %d: base_mint: %w", e.ID, err)
	}
	quoteMint, err = crypto.ParseAddress(e.QuoteMint)
	if err != nil {
		return crypto.Address{}, crypto.Address{}, crypto.Address{}, fmt.Errorf("moderator %d: quote_mint: %w", e.ID, err)
	}
	return admin, baseMint, quoteMint, nil
}
