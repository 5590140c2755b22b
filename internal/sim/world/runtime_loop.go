package world

import (
	"context"
	"errors"
	"time"

	"pitworld.ai/internal/protocol"
)

type actReq struct {
	Act  protocol.ActMsg
	Resp chan protocol.ResultMsg
}

// ErrStopped is returned by Submit and RequestSnapshot once the loop has
// been stopped or has exited.
var ErrStopped = errors.New("world stopped")

// Run serializes every mutation onto the calling goroutine until ctx is done
// or Stop is called.
func (w *World) Run(ctx context.Context) error {
	defer w.doneOnce.Do(func() { close(w.done) })

	var autosave <-chan time.Time
	if w.cfg.AutosaveEvery > 0 {
		ticker := time.NewTicker(w.cfg.AutosaveEvery)
		defer ticker.Stop()
		autosave = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.inbox:
			req.Resp <- w.Apply(req.Act)
		case req := <-w.admin:
			w.handleAdminSnapshot(req)
		case <-autosave:
			_ = w.pushSnapshot()
		}
	}
}

func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }

// Submit hands act to the loop goroutine and waits for its result.
func (w *World) Submit(ctx context.Context, act protocol.ActMsg) (protocol.ResultMsg, error) {
	select {
	case <-w.stop:
		return protocol.ResultMsg{}, ErrStopped
	case <-w.done:
		return protocol.ResultMsg{}, ErrStopped
	default:
	}
	resp := make(chan protocol.ResultMsg, 1)
	select {
	case w.inbox <- actReq{Act: act, Resp: resp}:
	case <-w.stop:
		return protocol.ResultMsg{}, ErrStopped
	case <-w.done:
		return protocol.ResultMsg{}, ErrStopped
	case <-ctx.Done():
		return protocol.ResultMsg{}, ctx.Err()
	}
	select {
	case r := <-resp:
		return r, nil
	case <-w.done:
		return protocol.ResultMsg{}, ErrStopped
	case <-ctx.Done():
		return protocol.ResultMsg{}, ctx.Err()
	}
}
