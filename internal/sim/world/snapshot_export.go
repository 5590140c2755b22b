package world

import (
	"fmt"
	"time"

	"pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/sim/world/io/snapshotcodec"
	"pitworld.ai/internal/sim/world/terrain/store"
)

// ExportSnapshot captures the whole session. The generator is not consulted.
func (w *World) ExportSnapshot(savedAt time.Time) (snapshot.SnapshotV1, error) {
	board, err := snapshotcodec.EncodeBoard(store.ExportCells(w.cells))
	if err != nil {
		return snapshot.SnapshotV1{}, fmt.Errorf("export board: %w", err)
	}
	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			SavedAt: savedAt.UTC().Format(time.RFC3339Nano),
		},
		Seed:              w.cfg.Seed,
		SeedDiscriminator: w.cfg.SeedDiscriminator,
		MaxTokens:         w.cfg.MaxTokens,
		SpawnPermille:     w.cfg.SpawnPermille,
		TileDegrees:       w.cfg.TileDegrees,
		NeighborhoodSize:  w.cfg.NeighborhoodSize,
		Origin:            [2]float64{w.cfg.Origin.Lat, w.cfg.Origin.Lng},
		Player:            [2]float64{w.player.Lat, w.player.Lng},
		Board:             board,
		Carried:           snapshotcodec.EncodeCarried(w.carried.Tokens()),
	}, nil
}
