package gen

import (
	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/logic/mathx"
)

const (
	DefaultDiscriminator = "initialValue"
	DefaultMaxTokens     = 3

	spawnDiscriminator = "spawn"
)

// Seeded is the production generator. Every output is a pure function of
// (Seed, Discriminator, coordinate); no per-run randomness is involved.
type Seeded struct {
	Seed          int64
	Discriminator string
	MaxTokens     int

	// SpawnPermille is the pit spawn probability in thousandths.
	SpawnPermille int
}

func NewSeeded(seed int64) Seeded {
	return Seeded{
		Seed:          seed,
		Discriminator: DefaultDiscriminator,
		MaxTokens:     DefaultMaxTokens,
		SpawnPermille: 100,
	}
}

// UnitAt returns a stable value in [0, 1) for c under the given discriminator.
func UnitAt(seed int64, c model.Coord, discriminator string) float64 {
	s := seed ^ int64(mathx.HashString(discriminator))
	return mathx.Unit(mathx.Hash2(s, c.I, c.J))
}

// TokenCount returns floor(unit * MaxTokens) + 1, an integer in [1, MaxTokens].
func (g Seeded) TokenCount(c model.Coord) int {
	limit := g.MaxTokens
	if limit <= 0 {
		limit = DefaultMaxTokens
	}
	disc := g.Discriminator
	if disc == "" {
		disc = DefaultDiscriminator
	}
	n := int(UnitAt(g.Seed, c, disc)*float64(limit)) + 1
	if n > limit {
		n = limit
	}
	return n
}

// HasPit reports whether c hosts a pit.
func (g Seeded) HasPit(c model.Coord) bool {
	p := ClampPermille(g.SpawnPermille)
	if p == 0 {
		return false
	}
	return UnitAt(g.Seed, c, spawnDiscriminator)*1000 < float64(p)
}

func ClampPermille(v int) int {
	if v < 0 {
		return 0
	}
	if v > 1000 {
		return 1000
	}
	return v
}

// ProbabilityToPermille converts a probability in [0, 1] to thousandths.
func ProbabilityToPermille(p float64) int {
	return ClampPermille(int(p*1000 + 0.5))
}
