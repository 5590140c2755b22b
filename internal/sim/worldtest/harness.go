package worldtest

import (
	"path/filepath"
	"testing"
	"time"

	"pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/protocol"
	world "pitworld.ai/internal/sim/world"
)

// Harness drives a world through its exported ACT surface only, so tests can
// live outside the world package:
// - each helper issues one ACT via Apply and fails the test on !OK
// - Expect* helpers assert a specific error code
// - SaveAndRestore round-trips the session through a snapshot file
type Harness struct {
	T *testing.T
	W *world.World

	seq  uint64
	last protocol.ResultMsg
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return &Harness{T: t, W: w}
}

func (h *Harness) Last() protocol.ResultMsg { return h.last }

func (h *Harness) act(op string, fill func(a *protocol.ActMsg)) protocol.ResultMsg {
	h.seq++
	a := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Seq:             h.seq,
		Op:              op,
	}
	if fill != nil {
		fill(&a)
	}
	h.last = h.W.Apply(a)
	return h.last
}

func (h *Harness) mustOK(res protocol.ResultMsg) protocol.ResultMsg {
	h.T.Helper()
	if !res.OK {
		h.T.Fatalf("%s seq=%d failed: %s %s", res.Op, res.Seq, res.Code, res.Message)
	}
	return res
}

func (h *Harness) Move(lat, lng float64) protocol.ResultMsg {
	h.T.Helper()
	return h.mustOK(h.act(protocol.OpMove, func(a *protocol.ActMsg) { a.Point = &[2]float64{lat, lng} }))
}

func (h *Harness) Cell(i, j int) protocol.CellView {
	h.T.Helper()
	res := h.mustOK(h.act(protocol.OpCell, func(a *protocol.ActMsg) { a.Cell = &[2]int{i, j} }))
	return res.Cells[0]
}

func (h *Harness) Collect(i, j int, tokenID string) protocol.ResultMsg {
	h.T.Helper()
	return h.mustOK(h.transfer(protocol.OpCollect, i, j, tokenID))
}

func (h *Harness) Deposit(i, j int, tokenID string) protocol.ResultMsg {
	h.T.Helper()
	return h.mustOK(h.transfer(protocol.OpDeposit, i, j, tokenID))
}

// ExpectCode issues a transfer that must fail with code.
func (h *Harness) ExpectCode(op string, i, j int, tokenID, code string) {
	h.T.Helper()
	res := h.transfer(op, i, j, tokenID)
	if res.OK || res.Code != code {
		h.T.Fatalf("%s %s at (%d,%d): ok=%v code=%q want %q", op, tokenID, i, j, res.OK, res.Code, code)
	}
}

func (h *Harness) transfer(op string, i, j int, tokenID string) protocol.ResultMsg {
	return h.act(op, func(a *protocol.ActMsg) {
		a.Cell = &[2]int{i, j}
		a.TokenID = tokenID
	})
}

func (h *Harness) Reset() protocol.ResultMsg {
	h.T.Helper()
	return h.mustOK(h.act(protocol.OpReset, nil))
}

func (h *Harness) State() protocol.ResultMsg {
	h.T.Helper()
	return h.mustOK(h.act(protocol.OpState, nil))
}

// SaveAndRestore writes the current session to a snapshot file under dir,
// reads it back, and returns a harness over a freshly built world holding it.
func (h *Harness) SaveAndRestore(dir string) *Harness {
	h.T.Helper()
	snap, err := h.W.ExportSnapshot(time.Unix(1700000000, 0))
	if err != nil {
		h.T.Fatalf("ExportSnapshot: %v", err)
	}
	path := filepath.Join(dir, "snapshots", "1700000000000.snap.zst")
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		h.T.Fatalf("WriteSnapshot: %v", err)
	}
	loaded, err := snapshot.ReadSnapshot(path)
	if err != nil {
		h.T.Fatalf("ReadSnapshot: %v", err)
	}

	w2, err := world.New(world.ConfigFromSnapshot(h.W.Config(), loaded))
	if err != nil {
		h.T.Fatalf("world.New: %v", err)
	}
	if _, err := w2.ImportSnapshot(loaded); err != nil {
		h.T.Fatalf("ImportSnapshot: %v", err)
	}
	return &Harness{T: h.T, W: w2}
}
