package world

import (
	"fmt"

	"pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/sim/world/feature/economy/inventory"
	"pitworld.ai/internal/sim/world/io/snapshotcodec"
	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/terrain/store"
)

// ConfigFromSnapshot overlays the generation and board parameters recorded in
// snap onto base, so a resumed world keeps materializing new cells the way
// the saved one did.
func ConfigFromSnapshot(base WorldConfig, snap snapshot.SnapshotV1) WorldConfig {
	cfg := base
	if snap.Header.WorldID != "" {
		cfg.ID = snap.Header.WorldID
	}
	cfg.Seed = snap.Seed
	cfg.SeedDiscriminator = snap.SeedDiscriminator
	cfg.MaxTokens = snap.MaxTokens
	cfg.SpawnPermille = snap.SpawnPermille
	if snap.TileDegrees > 0 {
		cfg.TileDegrees = snap.TileDegrees
	}
	cfg.NeighborhoodSize = snap.NeighborhoodSize
	cfg.Origin = model.Point{Lat: snap.Origin[0], Lng: snap.Origin[1]}
	return cfg
}

// ImportSnapshot replaces the store and the carried set with the snapshot's
// content. Nothing is applied unless the whole snapshot decodes.
func (w *World) ImportSnapshot(snap snapshot.SnapshotV1) (store.ImportReport, error) {
	if snap.Header.Version != snapshot.Version {
		return store.ImportReport{}, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	if snap.Seed != w.cfg.Seed || snap.SeedDiscriminator != w.cfg.SeedDiscriminator || snap.MaxTokens != w.cfg.MaxTokens {
		return store.ImportReport{}, fmt.Errorf("snapshot generator mismatch: snap=(%d,%q,%d) world=(%d,%q,%d)",
			snap.Seed, snap.SeedDiscriminator, snap.MaxTokens, w.cfg.Seed, w.cfg.SeedDiscriminator, w.cfg.MaxTokens)
	}

	cells, err := snapshotcodec.DecodeBoard(snap.Board)
	if err != nil {
		return store.ImportReport{}, fmt.Errorf("board: %w", err)
	}
	carried, err := snapshotcodec.DecodeCarried(snap.Carried)
	if err != nil {
		return store.ImportReport{}, fmt.Errorf("carried: %w", err)
	}
	cs, rep, err := store.ImportCells(w.generator(), cells)
	if err != nil {
		return store.ImportReport{}, fmt.Errorf("%w: %v", snapshotcodec.ErrMalformedSnapshot, err)
	}

	w.cells = cs
	w.carried = inventory.New(carried...)
	w.player = model.Point{Lat: snap.Player[0], Lng: snap.Player[1]}
	return rep, nil
}
