package store

import (
	"fmt"

	snapv1 "pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/sim/world/feature/economy/inventory"
	"pitworld.ai/internal/sim/world/kernel/model"
)

// ImportReport describes non-fatal findings of ImportCells.
type ImportReport struct {
	// Duplicates lists keys that appeared more than once. The last record
	// won; the cell keeps the iteration position of its first appearance.
	Duplicates []model.Coord
}

// ExportCells converts every materialized cell, in store order.
func ExportCells(s *CellStore) []snapv1.CellV1 {
	out := make([]snapv1.CellV1, 0, len(s.order))
	for _, k := range s.order {
		ch := s.cells[k]
		if ch == nil {
			continue
		}
		toks := ch.Tokens.Tokens()
		tv := make([]snapv1.TokenV1, len(toks))
		for i, t := range toks {
			tv[i] = snapv1.TokenV1{OriginI: t.OriginI, OriginJ: t.OriginJ, Serial: t.Serial}
		}
		out = append(out, snapv1.CellV1{Key: k.Key(), Tokens: tv})
	}
	return out
}

// ImportCells rebuilds a store from exported cells without consulting gen.
// Any invalid cell fails the whole import and no store is returned.
func ImportCells(gen Generator, cells []snapv1.CellV1) (*CellStore, ImportReport, error) {
	var rep ImportReport
	s := NewCellStore(gen)
	for idx, cv := range cells {
		c, err := model.ParseKey(cv.Key)
		if err != nil {
			return nil, ImportReport{}, fmt.Errorf("cell %d: %w", idx, err)
		}
		toks := make([]model.Token, len(cv.Tokens))
		for i, tv := range cv.Tokens {
			if tv.Serial < 0 {
				return nil, ImportReport{}, fmt.Errorf("cell %d (%s): token %d: negative serial %d", idx, cv.Key, i, tv.Serial)
			}
			toks[i] = model.Token{OriginI: tv.OriginI, OriginJ: tv.OriginJ, Serial: tv.Serial}
		}
		if s.Exists(c) {
			rep.Duplicates = append(rep.Duplicates, c)
		}
		s.put(&Cell{Coord: c, Tokens: inventory.New(toks...)})
	}
	return s, rep, nil
}
