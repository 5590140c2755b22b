package world

import (
	"errors"

	"pitworld.ai/internal/protocol"
	"pitworld.ai/internal/sim/world/feature/economy/inventory"
	"pitworld.ai/internal/sim/world/kernel/model"
	"pitworld.ai/internal/sim/world/terrain/store"
)

// Apply executes one ACT synchronously and reports the resulting view.
func (w *World) Apply(act protocol.ActMsg) protocol.ResultMsg {
	res := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Seq:             act.Seq,
		Op:              act.Op,
	}
	if act.ProtocolVersion != protocol.Version {
		return w.fail(res, protocol.ErrProtoBadRequest, "bad protocol_version")
	}

	switch act.Op {
	case protocol.OpMove:
		if act.Point == nil {
			return w.fail(res, protocol.ErrBadRequest, "MOVE requires point")
		}
		if !validLatLng(act.Point[0], act.Point[1]) {
			return w.fail(res, protocol.ErrInvalidTarget, "point out of range")
		}
		cells := w.MoveTo(model.Point{Lat: act.Point[0], Lng: act.Point[1]})
		res.Cells = w.cellViews(cells)
	case protocol.OpReset:
		res.Cells = w.cellViews(w.Reset())
	case protocol.OpState:
		res.Cells = w.cellViews(w.Neighborhood(w.player))
	case protocol.OpCell:
		c, ok := actCell(act)
		if !ok {
			return w.fail(res, protocol.ErrBadRequest, "CELL requires cell")
		}
		if !cellInRange(c) {
			return w.fail(res, protocol.ErrInvalidTarget, "cell out of range")
		}
		res.Cells = w.cellViews([]*store.Cell{w.Cell(c)})
	case protocol.OpCollect, protocol.OpDeposit:
		c, ok := actCell(act)
		if !ok || act.TokenID == "" {
			return w.fail(res, protocol.ErrBadRequest, act.Op+" requires cell and token_id")
		}
		if !cellInRange(c) {
			return w.fail(res, protocol.ErrInvalidTarget, "cell out of range")
		}
		var (
			t   model.Token
			err error
		)
		if act.Op == protocol.OpCollect {
			t, err = w.Collect(c, act.TokenID)
		} else {
			t, err = w.Deposit(c, act.TokenID)
		}
		if err != nil {
			code := protocol.ErrInternal
			if errors.Is(err, inventory.ErrTokenNotFound) {
				code = protocol.ErrNoResource
			}
			return w.fail(res, code, err.Error())
		}
		res.Token = t.ID()
		res.Cells = w.cellViews([]*store.Cell{w.Cell(c)})
	case protocol.OpSave:
		if err := w.pushSnapshot(); err != nil {
			return w.fail(res, protocol.ErrInternal, err.Error())
		}
	default:
		return w.fail(res, protocol.ErrProtoBadRequest, "unknown op")
	}

	res.OK = true
	w.fillPlayer(&res)
	return res
}

func validLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func actCell(act protocol.ActMsg) (model.Coord, bool) {
	if act.Cell != nil {
		return model.Coord{I: act.Cell[0], J: act.Cell[1]}, true
	}
	return model.Coord{}, false
}

func (w *World) fail(res protocol.ResultMsg, code, msg string) protocol.ResultMsg {
	res.OK = false
	res.Code = code
	res.Message = msg
	w.fillPlayer(&res)
	return res
}

func (w *World) fillPlayer(res *protocol.ResultMsg) {
	pc := w.CellForPoint(w.player)
	res.Player = [2]float64{w.player.Lat, w.player.Lng}
	res.PlayerCell = [2]int{pc.I, pc.J}
	res.Carried = w.carried.IDs()
	res.Points = w.carried.Len()
}

func (w *World) cellViews(cells []*store.Cell) []protocol.CellView {
	out := make([]protocol.CellView, 0, len(cells))
	for _, ch := range cells {
		b := w.CellBounds(ch.Coord)
		out = append(out, protocol.CellView{
			Cell:   [2]int{ch.Coord.I, ch.Coord.J},
			Bounds: [2][2]float64{{b.SW.Lat, b.SW.Lng}, {b.NE.Lat, b.NE.Lng}},
			Tokens: ch.Tokens.IDs(),
		})
	}
	return out
}

func (w *World) pushSnapshot() error {
	if w.snapshotSink == nil {
		return errors.New("snapshot sink not configured")
	}
	snap, err := w.ExportSnapshot(w.now())
	if err != nil {
		return err
	}
	select {
	case w.snapshotSink <- snap:
		return nil
	default:
		return errors.New("snapshot sink backpressure")
	}
}

