package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/terrain/gen"
)

type Tuning struct {
	WorldID string `yaml:"world_id"`

	Seed                int64   `yaml:"seed"`
	SeedDiscriminator   string  `yaml:"seed_discriminator"`
	MaxTokens           int     `yaml:"max_tokens"`
	PitSpawnProbability float64 `yaml:"pit_spawn_probability"`

	TileDegrees      float64     `yaml:"tile_degrees"`
	NeighborhoodSize int         `yaml:"neighborhood_size"`
	Origin           model.Point `yaml:"origin"`
	PlayerStart      model.Point `yaml:"player_start"`

	AutosaveEverySeconds int `yaml:"autosave_every_seconds"`

	// Per-session ACT limit; 0 disables it.
	RateLimitWindowMS int `yaml:"rate_limit_window_ms"`
	RateLimitMax      int `yaml:"rate_limit_max"`
}

func Defaults() Tuning {
	return Tuning{
		WorldID:              "world_1",
		Seed:                 0,
		SeedDiscriminator:    gen.DefaultDiscriminator,
		MaxTokens:            gen.DefaultMaxTokens,
		PitSpawnProbability:  0.1,
		TileDegrees:          1e-4,
		NeighborhoodSize:     8,
		Origin:               model.Point{Lat: 0, Lng: 0},
		PlayerStart:          model.Point{Lat: 36.9995, Lng: -122.0533},
		AutosaveEverySeconds: 60,
		RateLimitWindowMS:    1000,
		RateLimitMax:         30,
	}
}

// Load reads a tuning file on top of Defaults, so a file only needs to name
// what it overrides.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	if t.TileDegrees <= 0 {
		errs = append(errs, fmt.Errorf("tile_degrees must be > 0, got %v", t.TileDegrees))
	}
	if t.NeighborhoodSize < 0 {
		errs = append(errs, fmt.Errorf("neighborhood_size must be >= 0, got %d", t.NeighborhoodSize))
	}
	if t.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("max_tokens must be >= 1, got %d", t.MaxTokens))
	}
	if t.PitSpawnProbability < 0 || t.PitSpawnProbability > 1 {
		errs = append(errs, fmt.Errorf("pit_spawn_probability must be in [0,1], got %v", t.PitSpawnProbability))
	}
	if t.AutosaveEverySeconds < 0 {
		errs = append(errs, fmt.Errorf("autosave_every_seconds must be >= 0, got %d", t.AutosaveEverySeconds))
	}
	if t.RateLimitWindowMS < 0 || t.RateLimitMax < 0 {
		errs = append(errs, fmt.Errorf("rate limit must be >= 0, got window=%dms max=%d", t.RateLimitWindowMS, t.RateLimitMax))
	}
	return errors.Join(errs...)
}

// Generator builds the deterministic generator described by t.
func (t Tuning) Generator() gen.Seeded {
	return gen.Seeded{
		Seed:          t.Seed,
		Discriminator: t.SeedDiscriminator,
		MaxTokens:     t.MaxTokens,
		SpawnPermille: gen.ProbabilityToPermille(t.PitSpawnProbability),
	}
}
