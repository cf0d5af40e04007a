package dispatch

import (
	"time"

	"splashd/internal/reminder"
)

// BatchKind tells the consumer which presentation form a batch wants.
type BatchKind string

const (
	// Single is one reminder on its own; the presentation boundary still
	// routes it to the popup form when paused or when the item hints popup.
	Single BatchKind = "single"
	// Combined is several reminders rendered together in the full form.
	Combined BatchKind = "combined"
	// Popup is a pre-collapsed batch that must use the minimal popup form.
	Popup BatchKind = "popup"
)

// Item is one reminder's renderable payload inside a batch.
type Item struct {
	Message string
	Color   string
	Hint    reminder.DisplayHint
}

// Batch is what the aggregator hands to the consumer for rendering.
// FlushedAt is informational (history, logs); rendering ignores it.
type Batch struct {
	Kind      BatchKind
	Items     []Item
	FlushedAt time.Time
}

func (b Batch) Messages() []string {
	out := make([]string, len(b.Items))
	for i, it := range b.Items {
		out[i] = it.Message
	}
	return out
}

func (b Batch) Colors() []string {
	out := make([]string, len(b.Items))
	for i, it := range b.Items {
		out[i] = it.Color
	}
	return out
}
