// Package config loads protocol-level defaults the way the teacher's
// config package loads node defaults: TOML on disk, written out on
// first run if the file is absent. Callers turn them into a
// ProposalConfig or TwapParams; no keeper reads them on its own.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/marketlayer/futarchy/native/amm"
	"github.com/marketlayer/futarchy/native/futarchy"
)

// Defaults holds protocol-wide parameter defaults, converted into
// proposal or pool parameters by ProposalConfig and TwapParams.
type Defaults struct {
	FeeBps              uint32 `toml:"FeeBps"`
	MarketBiasBps       uint32 `toml:"MarketBiasBps"`
	LengthSeconds       int64  `toml:"LengthSeconds"`
	WarmupDuration      int64  `toml:"WarmupDuration"`
	StartingObservation uint64 `toml:"StartingObservation"`
	MaxObservationDelta uint64 `toml:"MaxObservationDelta"`
}

// Load reads Defaults from path, writing out a conservative default
// file if none exists yet.
func Load(path string) (*Defaults, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	d := &Defaults{}
	if _, err := toml.DecodeFile(path, d); err != nil {
		return nil, err
	}
	return d, nil
}

func createDefault(path string) (*Defaults, error) {
	d := &Defaults{
		FeeBps:              30,
		MarketBiasBps:       0,
		LengthSeconds:       3 * 24 * 3600,
		WarmupDuration:      600,
		StartingObservation: 1_000_000,
		MaxObservationDelta: 100_000,
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(d); err != nil {
		return nil, err
	}
	return d, nil
}

// ProposalConfig builds a futarchy.ProposalConfig from these defaults.
func (d Defaults) ProposalConfig() futarchy.ProposalConfig {
	return futarchy.ProposalConfig{
		LengthSeconds:       d.LengthSeconds,
		StartingObservation: d.StartingObservation,
		MaxObservationDelta: d.MaxObservationDelta,
		WarmupDuration:      d.WarmupDuration,
		MarketBiasBps:       d.MarketBiasBps,
		FeeBps:              d.FeeBps,
	}
}

// TwapParams extracts the amm-level TWAP seeding parameters from these
// defaults, for callers that create pools directly.
func (d Defaults) TwapParams() amm.TwapParams {
	return amm.TwapParams{
		StartingObservation: d.StartingObservation,
		MaxObservationDelta: d.MaxObservationDelta,
		WarmupDuration:      d.WarmupDuration,
	}
}
