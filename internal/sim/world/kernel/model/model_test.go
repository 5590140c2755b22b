package model

import "testing"

func TestTokenID_Format(t *testing.T) {
	tok := NewToken(Coord{I: 3, J: -2}, 1)
	if got := tok.ID(); got != "3:-2#1" {
		t.Fatalf("ID()=%q want %q", got, "3:-2#1")
	}
	if tok.Origin() != (Coord{I: 3, J: -2}) {
		t.Fatalf("Origin()=%v", tok.Origin())
	}
}

func TestParseTokenID(t *testing.T) {
	for _, tok := range []Token{
		{OriginI: 0, OriginJ: 0, Serial: 0},
		{OriginI: 369995, OriginJ: -1220533, Serial: 2},
		{OriginI: -7, OriginJ: 12, Serial: 10},
	} {
		got, err := ParseTokenID(tok.ID())
		if err != nil {
			t.Fatalf("ParseTokenID(%q): %v", tok.ID(), err)
		}
		if got != tok {
			t.Fatalf("ParseTokenID(%q)=%+v want %+v", tok.ID(), got, tok)
		}
	}

	for _, bad := range []string{"", "3-2#0", "3:-2", "3:-2#", "a:1#0", "3:-2#-1", "3 :-2#0", "03:1#0"} {
		if _, err := ParseTokenID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCoordKey_RoundTrip(t *testing.T) {
	for _, c := range []Coord{{0, 0}, {3, -2}, {-2, 3}, {-1 << 40, 1 << 40}} {
		got, err := ParseKey(c.Key())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", c.Key(), err)
		}
		if got != c {
			t.Fatalf("ParseKey(%q)=%v want %v", c.Key(), got, c)
		}
	}
	if (Coord{I: 1, J: 23}).Key() == (Coord{I: 12, J: 3}).Key() {
		t.Fatalf("keys collide")
	}
}

func TestParseKey_RejectsNonCanonical(t *testing.T) {
	for _, bad := range []string{"", "1", "1,", ",1", "01,2", "+1,2", "-0,1", "1,2,3", "1, 2", "[1,2]"} {
		if _, err := ParseKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestBounds(t *testing.T) {
	b := Bounds{SW: Point{Lat: 0, Lng: 0}, NE: Point{Lat: 2, Lng: 4}}
	if c := b.Center(); c.Lat != 1 || c.Lng != 2 {
		t.Fatalf("Center()=%+v", c)
	}
}
