package world

import (
	"testing"

	"pitworld.ai/internal/persistence/snapshot"
	"pitworld.ai/internal/protocol"
)

func act(op string) protocol.ActMsg {
	return protocol.ActMsg{Type: protocol.TypeAct, ProtocolVersion: protocol.Version, Seq: 1, Op: op}
}

func TestApply_Move(t *testing.T) {
	w := newTestWorld(t, testConfig())
	a := act(protocol.OpMove)
	a.Point = &[2]float64{0.00005, 0.00005}

	res := w.Apply(a)
	if !res.OK || res.Seq != 1 || res.Type != protocol.TypeResult {
		t.Fatalf("res=%+v", res)
	}
	if res.PlayerCell != [2]int{0, 0} || len(res.Cells) != 16 {
		t.Fatalf("player_cell=%v cells=%d", res.PlayerCell, len(res.Cells))
	}
	for _, cv := range res.Cells {
		if len(cv.Tokens) == 0 {
			t.Fatalf("fresh cell %v has no tokens", cv.Cell)
		}
	}
}

func TestApply_CollectDeposit(t *testing.T) {
	cfg := testConfig()
	cfg.Generator = fixedGen(2)
	w := newTestWorld(t, cfg)

	a := act(protocol.OpCollect)
	a.Cell = &[2]int{3, -2}
	a.TokenID = "3:-2#0"
	res := w.Apply(a)
	if !res.OK || res.Token != "3:-2#0" || res.Points != 1 {
		t.Fatalf("collect res=%+v", res)
	}
	if len(res.Cells) != 1 || len(res.Cells[0].Tokens) != 1 || res.Cells[0].Tokens[0] != "3:-2#1" {
		t.Fatalf("cells=%+v", res.Cells)
	}

	d := act(protocol.OpDeposit)
	d.Cell = &[2]int{0, 0}
	d.TokenID = "3:-2#0"
	res = w.Apply(d)
	if !res.OK || res.Points != 0 || len(res.Carried) != 0 {
		t.Fatalf("deposit res=%+v", res)
	}
	toks := res.Cells[0].Tokens
	if toks[len(toks)-1] != "3:-2#0" {
		t.Fatalf("deposit target tokens=%v", toks)
	}
}

func TestApply_ErrorCodes(t *testing.T) {
	w := newTestWorld(t, testConfig())

	missing := act(protocol.OpCollect)
	missing.Cell = &[2]int{0, 0}
	notCarried := act(protocol.OpDeposit)
	notCarried.Cell = &[2]int{0, 0}
	notCarried.TokenID = "0:0#0"
	farAway := act(protocol.OpMove)
	farAway.Point = &[2]float64{91, 0}
	wrongVersion := act(protocol.OpState)
	wrongVersion.ProtocolVersion = "0.9"

	cases := []struct {
		name string
		act  protocol.ActMsg
		code string
	}{
		{"move without point", act(protocol.OpMove), protocol.ErrBadRequest},
		{"move out of range", farAway, protocol.ErrInvalidTarget},
		{"cell without cell", act(protocol.OpCell), protocol.ErrBadRequest},
		{"collect without token", missing, protocol.ErrBadRequest},
		{"deposit not carried", notCarried, protocol.ErrNoResource},
		{"unknown op", act("JUMP"), protocol.ErrProtoBadRequest},
		{"bad version", wrongVersion, protocol.ErrProtoBadRequest},
		{"save without sink", act(protocol.OpSave), protocol.ErrInternal},
	}
	for _, tc := range cases {
		res := w.Apply(tc.act)
		if res.OK || res.Code != tc.code {
			t.Fatalf("%s: ok=%v code=%q want %q", tc.name, res.OK, res.Code, tc.code)
		}
		if !protocol.IsKnownCode(res.Code) {
			t.Fatalf("%s: unknown code %q", tc.name, res.Code)
		}
	}
}

func TestApply_ResetAndState(t *testing.T) {
	w := newTestWorld(t, testConfig())
	m := act(protocol.OpMove)
	m.Point = &[2]float64{1, 1}
	w.Apply(m)

	res := w.Apply(act(protocol.OpReset))
	if !res.OK || res.Player != [2]float64{0, 0} || res.PlayerCell != [2]int{0, 0} {
		t.Fatalf("reset res player=%v", res.Player)
	}
	st := w.Apply(act(protocol.OpState))
	if !st.OK || st.Player != res.Player || len(st.Cells) != len(res.Cells) {
		t.Fatalf("state res=%+v", st)
	}
}

func TestApply_SaveToSink(t *testing.T) {
	w := newTestWorld(t, testConfig())
	sink := make(chan snapshot.SnapshotV1, 1)
	w.SetSnapshotSink(sink)

	if res := w.Apply(act(protocol.OpSave)); !res.OK {
		t.Fatalf("save res=%+v", res)
	}
	if res := w.Apply(act(protocol.OpSave)); res.OK || res.Code != protocol.ErrInternal {
		t.Fatalf("full sink should fail, res=%+v", res)
	}
	snap := <-sink
	if snap.Header.WorldID != "world_test" {
		t.Fatalf("snap header=%+v", snap.Header)
	}
}
