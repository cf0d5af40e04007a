package notifier

import "time"

// Config controls batching behaviour.
type Config struct {
	// QuietWindow is how long after the most recent fire a batch waits
	// before it may flush. Every new fire restarts the wait.
	QuietWindow time.Duration
}

// Gate exposes the controller flags the aggregator consults: Running at
// append and flush time, Paused at tag time.
type Gate interface {
	Running() bool
	Paused() bool
}

// BatchEvent is emitted on the event bus when a batch is flushed or dropped.
// Keep it small; Data may be logged/serialized by subscribers.
type BatchEvent struct {
	Kind  string    `json:"kind"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}
