// Package notifier coalesces fired reminders into batches.
//
// Reminders that fire close together (within the quiet window) are held in a
// single pending batch; each new fire restarts the window. The batch is not
// flushed by a timer of its own: the consumer loop asks FlushDue(now) on its
// poll cadence, so every flush decision happens on one schedulable clock.
//
// # Tagging
//
// A flushed batch carries a presentation tag: a lone reminder stays Single,
// several reminders combine, and a combined batch collapses to the minimal
// popup form when any member asks for it or the controller is paused.
package notifier
