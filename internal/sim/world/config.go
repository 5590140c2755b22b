package world

import (
	"errors"
	"fmt"
	"time"

	"pitworld.ai/internal/protocol"
	"pitworld.ai/internal/sim/tuning"
	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/terrain/gen"
	"pitworld.ai/internal/sim/world/terrain/store"
)

type WorldConfig struct {
	ID string

	Seed              int64
	SeedDiscriminator string
	MaxTokens         int
	SpawnPermille     int

	TileDegrees      float64
	NeighborhoodSize int
	Origin           model.Point
	PlayerStart      model.Point

	// AutosaveEvery <= 0 disables periodic snapshots in Run.
	AutosaveEvery time.Duration

	// Generator overrides the seeded generator for cell materialization.
	// Neighborhood pit placement always uses the seeded generator.
	Generator store.Generator
}

func ConfigFromTuning(t tuning.Tuning) WorldConfig {
	g := t.Generator()
	return WorldConfig{
		ID:                t.WorldID,
		Seed:              g.Seed,
		SeedDiscriminator: g.Discriminator,
		MaxTokens:         g.MaxTokens,
		SpawnPermille:     g.SpawnPermille,
		TileDegrees:       t.TileDegrees,
		NeighborhoodSize:  t.NeighborhoodSize,
		Origin:            t.Origin,
		PlayerStart:       t.PlayerStart,
		AutosaveEvery:     time.Duration(t.AutosaveEverySeconds) * time.Second,
	}
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.SeedDiscriminator == "" {
		c.SeedDiscriminator = gen.DefaultDiscriminator
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = gen.DefaultMaxTokens
	}
	c.SpawnPermille = gen.ClampPermille(c.SpawnPermille)
}

func (c WorldConfig) validate() error {
	if c.TileDegrees <= 0 {
		return fmt.Errorf("tile degrees must be > 0, got %v", c.TileDegrees)
	}
	if c.NeighborhoodSize < 0 {
		return errors.New("neighborhood size must be >= 0")
	}
	return nil
}

func (c WorldConfig) seeded() gen.Seeded {
	return gen.Seeded{
		Seed:          c.Seed,
		Discriminator: c.SeedDiscriminator,
		MaxTokens:     c.MaxTokens,
		SpawnPermille: c.SpawnPermille,
	}
}

// Params is the board geometry a client needs to draw the grid.
func (w *World) Params() protocol.WorldParams {
	return protocol.WorldParams{
		TileDegrees:      w.cfg.TileDegrees,
		NeighborhoodSize: w.cfg.NeighborhoodSize,
		Origin:           [2]float64{w.cfg.Origin.Lat, w.cfg.Origin.Lng},
		MaxTokens:        w.cfg.MaxTokens,
	}
}
