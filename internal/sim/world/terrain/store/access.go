package store

import (
	"fmt"

	"pitworld.ai/internal/sim/world/kernel/model"
)

func (s *CellStore) Len() int { return len(s.cells) }

// LoadedCellKeys returns materialized coordinates in first-materialization
// order.
func (s *CellStore) LoadedCellKeys() []model.Coord {
	keys := make([]model.Coord, len(s.order))
	copy(keys, s.order)
	return keys
}

// Exists reports whether c is materialized. It never generates.
func (s *CellStore) Exists(c model.Coord) bool {
	_, ok := s.cells[c]
	return ok
}

// Lookup returns the cell for c without materializing it.
func (s *CellStore) Lookup(c model.Coord) (*Cell, bool) {
	ch, ok := s.cells[c]
	return ch, ok
}

// GetOrCreate returns the canonical cell for c, generating it on first access.
// The generator runs at most once per coordinate.
func (s *CellStore) GetOrCreate(c model.Coord) *Cell {
	if ch, ok := s.cells[c]; ok {
		return ch
	}
	ch := &Cell{Coord: c}
	s.GenerateCell(ch)
	s.put(ch)
	return ch
}

func (s *CellStore) put(ch *Cell) {
	if _, ok := s.cells[ch.Coord]; !ok {
		s.order = append(s.order, ch.Coord)
	}
	s.cells[ch.Coord] = ch
}

func (s *CellStore) InsertToken(c model.Coord, t model.Token) {
	s.GetOrCreate(c).Tokens.Insert(t)
}

// RemoveToken removes a token from c by identity.
func (s *CellStore) RemoveToken(c model.Coord, id string) (model.Token, error) {
	t, err := s.GetOrCreate(c).Tokens.Remove(id)
	if err != nil {
		return model.Token{}, fmt.Errorf("cell %s: %w", c, err)
	}
	return t, nil
}

// RemoveTokenAt removes by position. Positions go stale as soon as the cell
// changes; prefer RemoveToken.
func (s *CellStore) RemoveTokenAt(c model.Coord, index int) (model.Token, error) {
	t, err := s.GetOrCreate(c).Tokens.RemoveAt(index)
	if err != nil {
		return model.Token{}, fmt.Errorf("cell %s: %w", c, err)
	}
	return t, nil
}

// TokenCount is the total number of tokens held across all cells.
func (s *CellStore) TokenCount() int {
	n := 0
	for _, ch := range s.cells {
		n += ch.Tokens.Len()
	}
	return n
}
