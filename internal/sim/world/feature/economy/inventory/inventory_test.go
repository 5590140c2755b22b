package inventory

import (
	"errors"
	"testing"

	"pitworld.ai/internal/sim/world/kernel/model"
)

func tok(i, j, s int) model.Token { return model.Token{OriginI: i, OriginJ: j, Serial: s} }

func TestInsertKeepsOrder(t *testing.T) {
	var inv Inventory
	inv.Insert(tok(0, 0, 1))
	inv.Insert(tok(0, 0, 0))
	inv.Insert(tok(1, 2, 0))
	ids := inv.IDs()
	want := []string{"0:0#1", "0:0#0", "1:2#0"}
	if len(ids) != len(want) {
		t.Fatalf("ids=%v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids=%v want %v", ids, want)
		}
	}
}

func TestRemoveAt_OutOfRangeDoesNotMutate(t *testing.T) {
	inv := New(tok(0, 0, 0), tok(0, 0, 1))
	for _, idx := range []int{-1, 2, 100} {
		_, err := inv.RemoveAt(idx)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("RemoveAt(%d) err=%v, want ErrIndexOutOfRange", idx, err)
		}
		var oor *IndexOutOfRangeError
		if !errors.As(err, &oor) || oor.Index != idx || oor.Len != 2 {
			t.Fatalf("RemoveAt(%d) err=%#v", idx, err)
		}
		if inv.Len() != 2 {
			t.Fatalf("inventory mutated on failed removal: len=%d", inv.Len())
		}
	}

	var empty Inventory
	if _, err := empty.RemoveAt(0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("empty RemoveAt(0) err=%v", err)
	}
}

func TestRemoveAt_ReturnsToken(t *testing.T) {
	inv := New(tok(0, 0, 0), tok(0, 0, 1), tok(0, 0, 2))
	got, err := inv.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt: %v", err)
	}
	if got != tok(0, 0, 1) {
		t.Fatalf("removed %v", got)
	}
	if ids := inv.IDs(); len(ids) != 2 || ids[0] != "0:0#0" || ids[1] != "0:0#2" {
		t.Fatalf("remaining %v", ids)
	}
}

func TestRemoveByIdentity(t *testing.T) {
	inv := New(tok(5, 5, 0), tok(5, 5, 1))
	got, err := inv.Remove("5:5#1")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got.ID() != "5:5#1" {
		t.Fatalf("removed %v", got)
	}
	if _, err := inv.Remove("5:5#1"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("second Remove err=%v", err)
	}
	if inv.Len() != 1 || inv.IndexOf("5:5#0") != 0 {
		t.Fatalf("unexpected remaining %v", inv.IDs())
	}
}

func TestTokensReturnsCopy(t *testing.T) {
	inv := New(tok(0, 0, 0))
	ts := inv.Tokens()
	ts[0] = tok(9, 9, 9)
	if inv.IDs()[0] != "0:0#0" {
		t.Fatalf("Tokens() leaked internal slice")
	}
}

func TestNewCopiesInput(t *testing.T) {
	src := []model.Token{tok(1, 1, 0)}
	inv := New(src...)
	src[0] = tok(2, 2, 2)
	if inv.IDs()[0] != "1:1#0" {
		t.Fatalf("New aliased caller slice")
	}
}
