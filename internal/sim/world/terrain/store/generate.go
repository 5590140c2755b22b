package store

import "pitworld.ai/internal/sim/world/kernel/model"

// GenerateCell fills a fresh cell with serials 0..count-1, all originating
// at the cell itself.
func (s *CellStore) GenerateCell(ch *Cell) {
	n := 0
	if s.Gen != nil {
		n = s.Gen.TokenCount(ch.Coord)
	}
	for serial := 0; serial < n; serial++ {
		ch.Tokens.Insert(model.NewToken(ch.Coord, serial))
	}
}
