// Package present renders flushed notification batches for the operator:
// timestamped console lines, desktop notifications, or both.
package present
