package world

import (
	"context"
	"errors"

	"pitworld.ai/internal/persistence/snapshot"
)

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Snap snapshot.SnapshotV1
	Err  error
}

// RequestSnapshot asks the world loop goroutine for a consistent snapshot.
// It is safe to call from other goroutines (e.g. shutdown hooks).
func (w *World) RequestSnapshot(ctx context.Context) (snapshot.SnapshotV1, error) {
	if w == nil || w.admin == nil {
		return snapshot.SnapshotV1{}, errors.New("admin snapshot not available")
	}
	select {
	case <-w.stop:
		return snapshot.SnapshotV1{}, ErrStopped
	case <-w.done:
		return snapshot.SnapshotV1{}, ErrStopped
	default:
	}
	resp := make(chan adminSnapshotResp, 1)
	req := adminSnapshotReq{Resp: resp}

	select {
	case w.admin <- req:
	case <-w.stop:
		return snapshot.SnapshotV1{}, ErrStopped
	case <-w.done:
		return snapshot.SnapshotV1{}, ErrStopped
	case <-ctx.Done():
		return snapshot.SnapshotV1{}, ctx.Err()
	}

	select {
	case r := <-resp:
		return r.Snap, r.Err
	case <-w.done:
		return snapshot.SnapshotV1{}, ErrStopped
	case <-ctx.Done():
		return snapshot.SnapshotV1{}, ctx.Err()
	}
}

func (w *World) handleAdminSnapshot(req adminSnapshotReq) {
	snap, err := w.ExportSnapshot(w.now())
	select {
	case req.Resp <- adminSnapshotResp{Snap: snap, Err: err}:
	default:
		// Client gave up; don't block the loop.
	}
}
