// Package inventory holds ordered token containers. The same type backs a
// world cell's tokens and the player's carried set.
package inventory

import (
	"errors"
	"fmt"

	"pitworld.ai/internal/sim/world/kernel/model"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrTokenNotFound   = errors.New("token not found")
)

type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Unwrap() error { return ErrIndexOutOfRange }

// Inventory is an insertion-ordered sequence of tokens. The zero value is empty
// and ready to use. Position carries no meaning beyond addressing.
type Inventory struct {
	tokens []model.Token
}

func New(tokens ...model.Token) Inventory {
	inv := Inventory{}
	if len(tokens) > 0 {
		inv.tokens = append(make([]model.Token, 0, len(tokens)), tokens...)
	}
	return inv
}

func (inv *Inventory) Len() int { return len(inv.tokens) }

// Tokens returns a copy of the current sequence.
func (inv *Inventory) Tokens() []model.Token {
	out := make([]model.Token, len(inv.tokens))
	copy(out, inv.tokens)
	return out
}

func (inv *Inventory) Insert(t model.Token) {
	inv.tokens = append(inv.tokens, t)
}

// IndexOf returns the current position of the token with the given identity,
// or -1.
func (inv *Inventory) IndexOf(id string) int {
	for i, t := range inv.tokens {
		if t.ID() == id {
			return i
		}
	}
	return -1
}

// RemoveAt removes and returns the token at position i. An invalid position
// leaves the inventory untouched.
func (inv *Inventory) RemoveAt(i int) (model.Token, error) {
	if i < 0 || i >= len(inv.tokens) {
		return model.Token{}, &IndexOutOfRangeError{Index: i, Len: len(inv.tokens)}
	}
	t := inv.tokens[i]
	copy(inv.tokens[i:], inv.tokens[i+1:])
	inv.tokens[len(inv.tokens)-1] = model.Token{}
	inv.tokens = inv.tokens[:len(inv.tokens)-1]
	return t, nil
}

// Remove removes the token with the given identity. The index is resolved at
// call time, never cached.
func (inv *Inventory) Remove(id string) (model.Token, error) {
	i := inv.IndexOf(id)
	if i < 0 {
		return model.Token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}
	return inv.RemoveAt(i)
}

// IDs returns the identity strings in sequence order.
func (inv *Inventory) IDs() []string {
	out := make([]string, len(inv.tokens))
	for i, t := range inv.tokens {
		out[i] = t.ID()
	}
	return out
}
