package world

import (
	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/logic/mathx"
	"pitworld.ai/internal/sim/world/terrain/store"
)

// maxCellIndex is the largest index whose cell edges are still exact in float64.
const maxCellIndex = 1<<53 - 1

func cellInRange(c model.Coord) bool {
	return c.I >= -maxCellIndex && c.I <= maxCellIndex && c.J >= -maxCellIndex && c.J <= maxCellIndex
}

// CellForPoint maps a geographic point to the cell containing it.
func (w *World) CellForPoint(p model.Point) model.Coord {
	tile := w.cfg.TileDegrees
	return model.Coord{
		I: mathx.FloorToInt((p.Lat - w.cfg.Origin.Lat) / tile),
		J: mathx.FloorToInt((p.Lng - w.cfg.Origin.Lng) / tile),
	}
}

// CellBounds is computed in float64 so the extreme int coordinates do not wrap.
func (w *World) CellBounds(c model.Coord) model.Bounds {
	tile := w.cfg.TileDegrees
	o := w.cfg.Origin
	return model.Bounds{
		SW: model.Point{Lat: o.Lat + float64(c.I)*tile, Lng: o.Lng + float64(c.J)*tile},
		NE: model.Point{Lat: o.Lat + (float64(c.I)+1)*tile, Lng: o.Lng + (float64(c.J)+1)*tile},
	}
}

// PointForCell returns the center of c, for centering a view on it.
func (w *World) PointForCell(c model.Coord) model.Point {
	return w.CellBounds(c).Center()
}

// NeighborhoodCoords lists the window around p in row-major order. The window
// is half-open: [ci-R, ci+R) x [cj-R, cj+R).
func (w *World) NeighborhoodCoords(p model.Point) []model.Coord {
	center := w.CellForPoint(p)
	r := w.cfg.NeighborhoodSize
	out := make([]model.Coord, 0, 4*r*r)
	for di := -r; di < r; di++ {
		for dj := -r; dj < r; dj++ {
			out = append(out, model.Coord{I: center.I + di, J: center.J + dj})
		}
	}
	return out
}

// Neighborhood materializes and returns the pit cells around p. Cells that
// already exist are returned even if the spawn roll would now say otherwise,
// so restored and deposited-into cells stay visible.
func (w *World) Neighborhood(p model.Point) []*store.Cell {
	var out []*store.Cell
	for _, c := range w.NeighborhoodCoords(p) {
		if w.cells.Exists(c) || w.seed.HasPit(c) {
			out = append(out, w.cells.GetOrCreate(c))
		}
	}
	return out
}
