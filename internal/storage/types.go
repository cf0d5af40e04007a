package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl + compaction)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
	// HistoryLimit caps retained entries; 0 means the driver default (500).
	HistoryLimit int
}

// HistoryEntry records one delivered notification batch.
// Keep it compact and schema-stable.
type HistoryEntry struct {
	At       time.Time `json:"at"`
	Kind     string    `json:"kind"`
	Count    int       `json:"count"`
	Messages []string  `json:"messages"`
}

const defaultHistoryLimit = 500
