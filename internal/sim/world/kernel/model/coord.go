package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord identifies a cell in the unbounded grid. It is comparable and is used
// directly as the canonical map key.
type Coord struct {
	I int
	J int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.I, c.J) }

// Key encodes c as "<i>,<j>". Decimal integers never contain a comma, so the
// encoding is injective.
func (c Coord) Key() string {
	return strconv.Itoa(c.I) + "," + strconv.Itoa(c.J)
}

// ParseKey is the inverse of Coord.Key. Only the canonical form is accepted
// ("03", "+3" and "-0" are rejected) so that key equality and coordinate
// equality stay the same relation.
func ParseKey(s string) (Coord, error) {
	is, js, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("cell key %q: missing ','", s)
	}
	i, err := parseCanonicalInt(is)
	if err != nil {
		return Coord{}, fmt.Errorf("cell key %q: %w", s, err)
	}
	j, err := parseCanonicalInt(js)
	if err != nil {
		return Coord{}, fmt.Errorf("cell key %q: %w", s, err)
	}
	return Coord{I: i, J: j}, nil
}

func parseCanonicalInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad integer %q", s)
	}
	if strconv.Itoa(n) != s {
		return 0, fmt.Errorf("non-canonical integer %q", s)
	}
	return n, nil
}
