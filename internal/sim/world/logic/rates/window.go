package rates

import "time"

// Window is a fixed-window counter: at most Max events per Size. A zero Size
// or non-positive Max disables limiting.
type Window struct {
	Size time.Duration
	Max  int

	start time.Time
	count int
}

// Allow records one event at now and reports whether it fits in the current
// window. When it does not, retryAfter is the time left until the window
// resets.
func (w *Window) Allow(now time.Time) (ok bool, retryAfter time.Duration) {
	if w.Size <= 0 || w.Max <= 0 {
		return true, 0
	}
	if w.start.IsZero() || now.Sub(w.start) >= w.Size {
		w.start = now
		w.count = 0
	}
	w.count++
	if w.count <= w.Max {
		return true, 0
	}
	return false, w.start.Add(w.Size).Sub(now)
}
