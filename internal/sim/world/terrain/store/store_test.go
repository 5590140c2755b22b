package store

import (
	"errors"
	"testing"

	"pitworld.ai/internal/sim/world/feature/economy/inventory"
	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/terrain/gen"
)

type countingGen struct {
	n     int
	calls map[model.Coord]int
}

func newCountingGen(n int) *countingGen {
	return &countingGen{n: n, calls: map[model.Coord]int{}}
}

func (g *countingGen) TokenCount(c model.Coord) int {
	g.calls[c]++
	return g.n
}

func TestGetOrCreate_Materializes(t *testing.T) {
	g := newCountingGen(2)
	s := NewCellStore(g)
	c := model.Coord{I: 3, J: -2}

	if s.Exists(c) {
		t.Fatalf("fresh store must not contain %v", c)
	}
	ch := s.GetOrCreate(c)
	ids := ch.Tokens.IDs()
	if len(ids) != 2 || ids[0] != "3:-2#0" || ids[1] != "3:-2#1" {
		t.Fatalf("tokens=%v", ids)
	}
	if !s.Exists(c) {
		t.Fatalf("expected %v to exist after GetOrCreate", c)
	}
	if g.calls[c] != 1 {
		t.Fatalf("generator calls=%d want 1", g.calls[c])
	}
}

func TestGetOrCreate_Canonical(t *testing.T) {
	g := newCountingGen(3)
	s := NewCellStore(g)
	a := s.GetOrCreate(model.Coord{I: 1, J: 1})
	b := s.GetOrCreate(model.Coord{I: 1, J: 1})
	if a != b {
		t.Fatalf("GetOrCreate returned distinct records")
	}
	if _, err := a.Tokens.Remove("1:1#0"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if b.Tokens.Len() != 2 {
		t.Fatalf("mutation through one handle not visible through the other")
	}
	if g.calls[model.Coord{I: 1, J: 1}] != 1 {
		t.Fatalf("generator re-ran: %d", g.calls[model.Coord{I: 1, J: 1}])
	}
}

func TestExists_DoesNotMaterialize(t *testing.T) {
	g := newCountingGen(1)
	s := NewCellStore(g)
	c := model.Coord{I: -4, J: 9}
	for i := 0; i < 3; i++ {
		if s.Exists(c) {
			t.Fatalf("unexpected existence")
		}
	}
	if _, ok := s.Lookup(c); ok {
		t.Fatalf("Lookup must not materialize")
	}
	if s.Len() != 0 || g.calls[c] != 0 {
		t.Fatalf("probe materialized: len=%d calls=%d", s.Len(), g.calls[c])
	}
}

func TestDeterminismAcrossStores(t *testing.T) {
	c := model.Coord{I: 12, J: -30}
	a := NewCellStore(gen.NewSeeded(5)).GetOrCreate(c).Tokens.IDs()
	b := NewCellStore(gen.NewSeeded(5)).GetOrCreate(c).Tokens.IDs()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("counts differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("identities differ: %v vs %v", a, b)
		}
	}
}

func TestInsertToken_Appends(t *testing.T) {
	s := NewCellStore(GeneratorFunc(func(model.Coord) int { return 1 }))
	c := model.Coord{I: 0, J: 0}
	foreign := model.Token{OriginI: 7, OriginJ: 7, Serial: 2}
	s.InsertToken(c, foreign)
	ids := s.GetOrCreate(c).Tokens.IDs()
	if len(ids) != 2 || ids[0] != "0:0#0" || ids[1] != "7:7#2" {
		t.Fatalf("tokens=%v", ids)
	}
}

func TestRemoveTokenAt_Bounds(t *testing.T) {
	s := NewCellStore(GeneratorFunc(func(model.Coord) int { return 2 }))
	c := model.Coord{I: 2, J: 2}
	for _, idx := range []int{-1, 2} {
		if _, err := s.RemoveTokenAt(c, idx); !errors.Is(err, inventory.ErrIndexOutOfRange) {
			t.Fatalf("RemoveTokenAt(%d) err=%v", idx, err)
		}
	}
	if got := s.GetOrCreate(c).Tokens.Len(); got != 2 {
		t.Fatalf("failed removal mutated cell: len=%d", got)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.RemoveTokenAt(c, 0); err != nil {
			t.Fatalf("RemoveTokenAt(0): %v", err)
		}
	}
	if _, err := s.RemoveTokenAt(c, 0); !errors.Is(err, inventory.ErrIndexOutOfRange) {
		t.Fatalf("exhausted cell err=%v", err)
	}
}

func TestRemoveToken_ByIdentity(t *testing.T) {
	s := NewCellStore(GeneratorFunc(func(model.Coord) int { return 3 }))
	c := model.Coord{I: -1, J: -1}
	got, err := s.RemoveToken(c, "-1:-1#1")
	if err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	if got.Serial != 1 {
		t.Fatalf("removed %v", got)
	}
	if _, err := s.RemoveToken(c, "-1:-1#1"); !errors.Is(err, inventory.ErrTokenNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestLoadedCellKeys_InsertionOrder(t *testing.T) {
	s := NewCellStore(GeneratorFunc(func(model.Coord) int { return 1 }))
	want := []model.Coord{{I: 5, J: 0}, {I: -3, J: 2}, {I: 0, J: 0}}
	for _, c := range want {
		s.GetOrCreate(c)
	}
	s.GetOrCreate(want[0])
	got := s.LoadedCellKeys()
	if len(got) != len(want) {
		t.Fatalf("keys=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys=%v want %v", got, want)
		}
	}
	if s.TokenCount() != 3 {
		t.Fatalf("TokenCount=%d", s.TokenCount())
	}
}

func TestNilGeneratorMaterializesEmpty(t *testing.T) {
	s := NewCellStore(nil)
	if n := s.GetOrCreate(model.Coord{}).Tokens.Len(); n != 0 {
		t.Fatalf("len=%d", n)
	}
}
