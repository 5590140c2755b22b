package world

import (
	"fmt"

	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/terrain/store"
)

// Collect moves a token, by identity, from cell c into the carried set.
func (w *World) Collect(c model.Coord, tokenID string) (model.Token, error) {
	t, err := w.cells.RemoveToken(c, tokenID)
	if err != nil {
		return model.Token{}, fmt.Errorf("collect: %w", err)
	}
	w.carried.Insert(t)
	w.auditMove(AuditCollect, c, t)
	return t, nil
}

// Deposit moves a carried token, by identity, into cell c.
func (w *World) Deposit(c model.Coord, tokenID string) (model.Token, error) {
	t, err := w.carried.Remove(tokenID)
	if err != nil {
		return model.Token{}, fmt.Errorf("deposit: %w", err)
	}
	w.cells.InsertToken(c, t)
	w.auditMove(AuditDeposit, c, t)
	return t, nil
}

func (w *World) Carried() []model.Token { return w.carried.Tokens() }

// Points is the number of carried tokens.
func (w *World) Points() int { return w.carried.Len() }

func (w *World) Player() model.Point { return w.player }

// MoveTo relocates the player and returns the pit cells around the new spot.
func (w *World) MoveTo(p model.Point) []*store.Cell {
	w.player = p
	return w.Neighborhood(p)
}

// Reset returns the player to the board origin. Cells and carried tokens are
// untouched.
func (w *World) Reset() []*store.Cell {
	return w.MoveTo(w.cfg.Origin)
}
