package ratelimit

import (
	"sync"
	"time"
)

// window is a sliding window counter: it keeps the counts of the current and
// previous fixed windows and weights the previous one by how much of it
// still overlaps the sliding window.
//
//	effective = current + previous × (1 − elapsed/size)
//
// A nil *window allows everything.
type window struct {
	mu       sync.Mutex
	limit    int
	size     time.Duration
	start    time.Time
	current  int
	previous int
	now      func() time.Time
}

// newWindow creates a counter allowing limit requests per size.
// It returns nil (unlimited) when limit <= 0.
func newWindow(limit int, size time.Duration, now func() time.Time) *window {
	if limit <= 0 {
		return nil
	}
	return &window{limit: limit, size: size, start: now(), now: now}
}

// rotate must be called with mu held.
func (w *window) rotate() {
	elapsed := w.now().Sub(w.start)
	if elapsed < w.size {
		return
	}
	passed := elapsed / w.size
	if passed == 1 {
		w.previous = w.current
	} else {
		w.previous = 0
	}
	w.current = 0
	w.start = w.start.Add(passed * w.size)
}

// effective must be called with mu held, after rotate.
func (w *window) effective() float64 {
	overlap := 1 - float64(w.now().Sub(w.start))/float64(w.size)
	overlap = max(0, min(1, overlap))
	return float64(w.current) + float64(w.previous)*overlap
}

func (w *window) check() bool {
	if w == nil {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotate()
	return w.effective() < float64(w.limit)
}

func (w *window) consume() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotate()
	w.current++
}

// remaining returns the approximate number of requests left, or -1 when unlimited.
func (w *window) remaining() int {
	if w == nil {
		return -1
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	w.rotate()
	return max(0, int(float64(w.limit)-w.effective()))
}
