package scheduler

import (
	"time"

	"splashd/internal/reminder"
)

// entry is one pending fire in the timing heap.
//
// seq is a monotonically increasing insertion counter. It breaks fireAt ties
// so that two reminders due at the same instant pop in insertion order,
// keeping the loop deterministic.
type entry struct {
	fireAt time.Time
	seq    uint64
	rem    *reminder.Reminder
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].fireAt.Before(h[j].fireAt)
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// peek returns the earliest entry without removing it, or nil when empty.
func (h entryHeap) peek() *entry {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}
