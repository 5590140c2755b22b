package store

import (
	"pitworld.ai/internal/sim/world/feature/economy/inventory"
	"pitworld.ai/internal/sim/world/kernel/model"
)

// Generator yields the token count for a cell's first materialization.
type Generator interface {
	TokenCount(c model.Coord) int
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(c model.Coord) int

func (f GeneratorFunc) TokenCount(c model.Coord) int { return f(c) }

// Cell is the canonical record for one coordinate. Callers share the same
// *Cell for the lifetime of the store, so token moves are visible to all
// holders.
type Cell struct {
	Coord  model.Coord
	Tokens inventory.Inventory
}

// CellStore is a sparse, lazily materialized map of cells. It is not safe for
// concurrent use; the world loop goroutine is its only caller.
type CellStore struct {
	Gen Generator

	cells map[model.Coord]*Cell
	order []model.Coord
}

func NewCellStore(gen Generator) *CellStore {
	return &CellStore{
		Gen:   gen,
		cells: map[model.Coord]*Cell{},
	}
}
