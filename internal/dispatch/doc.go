// Package dispatch carries the hand-off contract between the background
// pipeline and the single presentation consumer: an unbounded FIFO whose
// producers never block, plus the batch and command payloads that cross it.
package dispatch
