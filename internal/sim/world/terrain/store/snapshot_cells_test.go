package store

import (
	"testing"

	snapv1 "pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/terrain/gen"
)

func equalStores(t *testing.T, a, b *CellStore) {
	t.Helper()
	ak, bk := a.LoadedCellKeys(), b.LoadedCellKeys()
	if len(ak) != len(bk) {
		t.Fatalf("key count %d vs %d", len(ak), len(bk))
	}
	for i := range ak {
		if ak[i] != bk[i] {
			t.Fatalf("key[%d] %v vs %v", i, ak[i], bk[i])
		}
		ac, _ := a.Lookup(ak[i])
		bc, _ := b.Lookup(bk[i])
		at, bt := ac.Tokens.IDs(), bc.Tokens.IDs()
		if len(at) != len(bt) {
			t.Fatalf("cell %v tokens %v vs %v", ak[i], at, bt)
		}
		for j := range at {
			if at[j] != bt[j] {
				t.Fatalf("cell %v tokens %v vs %v", ak[i], at, bt)
			}
		}
	}
}

func TestExportImportCells_RoundTrip(t *testing.T) {
	s := NewCellStore(gen.NewSeeded(11))
	for i := -3; i <= 3; i++ {
		s.GetOrCreate(model.Coord{I: i, J: i * 7})
	}
	moved, err := s.RemoveTokenAt(model.Coord{I: 0, J: 0}, 0)
	if err != nil {
		t.Fatalf("RemoveTokenAt: %v", err)
	}
	s.InsertToken(model.Coord{I: 3, J: 21}, moved)

	calls := 0
	imported, rep, err := ImportCells(GeneratorFunc(func(model.Coord) int { calls++; return 1 }), ExportCells(s))
	if err != nil {
		t.Fatalf("ImportCells: %v", err)
	}
	if len(rep.Duplicates) != 0 {
		t.Fatalf("unexpected duplicates %v", rep.Duplicates)
	}
	equalStores(t, s, imported)
	if calls != 0 {
		t.Fatalf("import consulted generator %d times", calls)
	}
}

func TestImportCells_ExampleScenario(t *testing.T) {
	s := NewCellStore(GeneratorFunc(func(model.Coord) int { return 2 }))
	s.GetOrCreate(model.Coord{I: 3, J: -2})
	cells := ExportCells(s)
	if len(cells) != 1 || cells[0].Key != "3,-2" || len(cells[0].Tokens) != 2 {
		t.Fatalf("export=%+v", cells)
	}
	if cells[0].Tokens[0] != (snapv1.TokenV1{OriginI: 3, OriginJ: -2, Serial: 0}) ||
		cells[0].Tokens[1] != (snapv1.TokenV1{OriginI: 3, OriginJ: -2, Serial: 1}) {
		t.Fatalf("tokens=%+v", cells[0].Tokens)
	}

	calls := 0
	restored, _, err := ImportCells(GeneratorFunc(func(model.Coord) int { calls++; return 2 }), cells)
	if err != nil {
		t.Fatalf("ImportCells: %v", err)
	}
	if !restored.Exists(model.Coord{I: 3, J: -2}) {
		t.Fatalf("restored store missing cell")
	}
	restored.GetOrCreate(model.Coord{I: 3, J: -2})
	if calls != 0 {
		t.Fatalf("generator ran %d times after restore", calls)
	}
}

func TestImportCells_DuplicateLastWins(t *testing.T) {
	cells := []snapv1.CellV1{
		{Key: "1,1", Tokens: []snapv1.TokenV1{{OriginI: 1, OriginJ: 1, Serial: 0}}},
		{Key: "2,2", Tokens: nil},
		{Key: "1,1", Tokens: []snapv1.TokenV1{{OriginI: 9, OriginJ: 9, Serial: 4}}},
	}
	s, rep, err := ImportCells(nil, cells)
	if err != nil {
		t.Fatalf("ImportCells: %v", err)
	}
	if len(rep.Duplicates) != 1 || rep.Duplicates[0] != (model.Coord{I: 1, J: 1}) {
		t.Fatalf("duplicates=%v", rep.Duplicates)
	}
	ch, _ := s.Lookup(model.Coord{I: 1, J: 1})
	if ids := ch.Tokens.IDs(); len(ids) != 1 || ids[0] != "9:9#4" {
		t.Fatalf("last write did not win: %v", ids)
	}
	keys := s.LoadedCellKeys()
	if len(keys) != 2 || keys[0] != (model.Coord{I: 1, J: 1}) {
		t.Fatalf("keys=%v", keys)
	}
}

func TestImportCells_RejectsInvalid(t *testing.T) {
	for name, cells := range map[string][]snapv1.CellV1{
		"bad key":         {{Key: "1;1"}},
		"negative serial": {{Key: "1,1", Tokens: []snapv1.TokenV1{{OriginI: 1, OriginJ: 1, Serial: -1}}}},
	} {
		if _, _, err := ImportCells(nil, cells); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
