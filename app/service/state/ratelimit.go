package state

import "time"

// rateWindow tracks per-identity timestamps of admitted requests inside a
// sliding window. Not safe for concurrent use on its own; the owning Service
// serializes access.
type rateWindow struct {
	window   time.Duration
	maxCount int
	requests map[int64][]time.Time
}

func newRateWindow(window time.Duration, maxCount int) *rateWindow {
	return &rateWindow{
		window:   window,
		maxCount: maxCount,
		requests: make(map[int64][]time.Time),
	}
}

// admit prunes timestamps older than the window and records now only when the
// identity still has a free slot. Rejection has no side effect beyond the
// prune.
func (w *rateWindow) admit(identity int64, now time.Time) bool {
	cutoff := now.Add(-w.window)

	existing := w.requests[identity]
	valid := existing[:0]
	for _, t := range existing {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= w.maxCount {
		w.requests[identity] = valid
		return false
	}

	w.requests[identity] = append(valid, now)
	return true
}

func (w *rateWindow) count(identity int64) int {
	return len(w.requests[identity])
}
