// Package storage persists the delivery history: every notification batch
// that was actually rendered. The history survives restarts and backs the
// -history command line flag.
package storage
