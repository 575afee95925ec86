package evrt

import (
	"container/heap"
	"time"
)

// timerEntry is one scheduled deadline (spec.md §3 "Timer"). Timers
// sharing a deadline fire in insertion order, which the (deadline,
// sequence) heap ordering guarantees.
type timerEntry struct {
	deadline time.Time
	sequence uint64
	fire     func()
	index    int // position in the heap, maintained by container/heap
	canceled bool
}

// timerHeap is a min-heap ordered by (deadline, sequence).
type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].sequence < h[j].sequence
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// timerWheel owns the heap and the per-loop sequence counter (spec.md §3:
// "Sequence counter is per-loop and wraps").
type timerWheel struct {
	heap timerHeap
	seq  uint64
}

func (w *timerWheel) schedule(deadline time.Time, fire func()) *timerEntry {
	e := &timerEntry{deadline: deadline, sequence: w.seq, fire: fire}
	w.seq++
	heap.Push(&w.heap, e)
	return e
}

// cancel removes e from the heap if it's still pending. Safe to call more
// than once or after e has already fired.
func (w *timerWheel) cancel(e *timerEntry) {
	if e.canceled || e.index < 0 {
		return
	}
	e.canceled = true
	heap.Remove(&w.heap, e.index)
}

func (w *timerWheel) len() int { return len(w.heap) }

// peekDeadline reports the next deadline, if any timer is pending.
func (w *timerWheel) peekDeadline() (time.Time, bool) {
	if len(w.heap) == 0 {
		return time.Time{}, false
	}
	return w.heap[0].deadline, true
}

// fireExpired pops and runs every timer whose deadline has passed,
// stopping early if shouldStop returns true (spec.md §4.4: "If a firing
// closure requests exit, the pass stops").
func (w *timerWheel) fireExpired(now time.Time, shouldStop func() bool) {
	for w.heap.Len() > 0 {
		next := w.heap[0]
		if next.deadline.After(now) {
			return
		}
		heap.Pop(&w.heap)
		next.canceled = true
		next.fire()
		if shouldStop() {
			return
		}
	}
}
