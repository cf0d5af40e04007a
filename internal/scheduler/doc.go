// Package scheduler owns reminder timing: a min-heap of pending fires keyed
// by (fireAt, insertion seq), drained by a single background goroutine.
//
// The scheduler is responsible only for:
//   - seeding the heap from the active reminder set
//   - sleeping until the earliest fire (capped by the poll ceiling)
//   - forwarding due reminders to the sink and re-inserting the next occurrence
//
// Batching, pause semantics and rendering live downstream of the sink.
package scheduler
