package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Token is an identity-bearing unit spawned by a cell. Origin and serial never
// change; only the container holding the token does.
type Token struct {
	OriginI int
	OriginJ int
	Serial  int
}

func NewToken(origin Coord, serial int) Token {
	return Token{OriginI: origin.I, OriginJ: origin.J, Serial: serial}
}

// ID returns the identity string "<originI>:<originJ>#<serial>".
func (t Token) ID() string {
	return strconv.Itoa(t.OriginI) + ":" + strconv.Itoa(t.OriginJ) + "#" + strconv.Itoa(t.Serial)
}

func (t Token) String() string { return t.ID() }

// Origin is the cell that spawned the token.
func (t Token) Origin() Coord { return Coord{I: t.OriginI, J: t.OriginJ} }

// ParseTokenID splits an identity string on ':' and '#'.
func ParseTokenID(id string) (Token, error) {
	is, rest, ok := strings.Cut(id, ":")
	if !ok {
		return Token{}, fmt.Errorf("token id %q: missing ':'", id)
	}
	js, ss, ok := strings.Cut(rest, "#")
	if !ok {
		return Token{}, fmt.Errorf("token id %q: missing '#'", id)
	}
	i, err := parseCanonicalInt(is)
	if err != nil {
		return Token{}, fmt.Errorf("token id %q: origin i: %w", id, err)
	}
	j, err := parseCanonicalInt(js)
	if err != nil {
		return Token{}, fmt.Errorf("token id %q: origin j: %w", id, err)
	}
	serial, err := parseCanonicalInt(ss)
	if err != nil {
		return Token{}, fmt.Errorf("token id %q: serial: %w", id, err)
	}
	if serial < 0 {
		return Token{}, fmt.Errorf("token id %q: negative serial", id)
	}
	return Token{OriginI: i, OriginJ: j, Serial: serial}, nil
}
