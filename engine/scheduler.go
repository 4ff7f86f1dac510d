package engine

import (
	"container/heap"
	"time"
)

// TimerID identifies a scheduled callback for cancellation
type TimerID uint64

// NilTimer is never returned by Schedule
const NilTimer TimerID = 0

type timerEntry struct {
	id       TimerID
	deadline time.Time
	fn       func()
	index    int // heap index, -1 once popped
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		// FIFO among equal deadlines
		return h[i].id < h[j].id
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

// Scheduler is a deadline/action queue ticked once per frame on the absolute clock
//
// Contract: each scheduled callback fires exactly once, at the first Tick
// whose now is at or past the deadline, and is cancellable until it fires.
// Callbacks may schedule or cancel timers; a timer scheduled from inside a
// firing callback with an already-due deadline fires within the same Tick
type Scheduler struct {
	timers  timerHeap
	pending map[TimerID]*timerEntry
	nextID  TimerID
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: make(map[TimerID]*timerEntry),
	}
}

// Schedule registers fn to fire at deadline and returns its cancellation handle
// A nil fn is ignored and returns NilTimer
func (s *Scheduler) Schedule(deadline time.Time, fn func()) TimerID {
	if fn == nil {
		return NilTimer
	}

	s.nextID++
	e := &timerEntry{
		id:       s.nextID,
		deadline: deadline,
		fn:       fn,
	}
	heap.Push(&s.timers, e)
	s.pending[e.id] = e
	return e.id
}

// ScheduleAfter registers fn to fire d past now
func (s *Scheduler) ScheduleAfter(now time.Time, d time.Duration, fn func()) TimerID {
	return s.Schedule(now.Add(d), fn)
}

// Cancel removes a pending timer; returns false if it already fired or is unknown
func (s *Scheduler) Cancel(id TimerID) bool {
	e, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	heap.Remove(&s.timers, e.index)
	return true
}

// Tick fires every timer whose deadline is at or before now, in deadline order
// Returns the number of callbacks fired
func (s *Scheduler) Tick(now time.Time) int {
	fired := 0
	for len(s.timers) > 0 {
		next := s.timers[0]
		if next.deadline.After(now) {
			break
		}
		heap.Pop(&s.timers)
		delete(s.pending, next.id)
		next.fn()
		fired++
	}
	return fired
}

// Pending returns the number of scheduled, unfired timers
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// ShiftBy moves every pending deadline by d
// Used when the driving timeline pauses so timers keep their relative spacing
func (s *Scheduler) ShiftBy(d time.Duration) {
	for _, e := range s.timers {
		e.deadline = e.deadline.Add(d)
	}
	// Uniform shift preserves heap order; no re-heapify needed
}
