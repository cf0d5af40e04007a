package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "splashd/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Layout: <prefix>.history.jsonl (append-only JSON Lines).
//
// The file is compacted in place once it grows past twice the retention
// limit, keeping only the newest entries. Compaction closes and reopens the
// append handle so the rename works on every platform.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	path  string
	f     *os.File
	count int
	limit int

	rename func(oldpath, newpath string) error
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	historyPath := prefix + ".history.jsonl"

	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	count, err := countHistoryLines(historyPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	f, err := os.OpenFile(historyPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	return &fileStore{
		log:    log,
		path:   historyPath,
		f:      f,
		count:  count,
		limit:  limit,
		rename: os.Rename,
	}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *fileStore) AppendHistory(ctx context.Context, e HistoryEntry) error {
	_ = ctx
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if e.Count == 0 {
		e.Count = len(e.Messages)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return errors.New("history file closed")
	}
	if err := json.NewEncoder(s.f).Encode(e); err != nil {
		return err
	}
	s.count++
	if s.count > s.limit*2 {
		if err := s.compactLocked(); err != nil {
			s.log.Debug("history compact failed", logx.Any("err", err))
		}
	}
	return nil
}

func (s *fileStore) RecentHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	_ = ctx
	if limit <= 0 {
		limit = s.limit
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := readHistory(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	// newest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (s *fileStore) compactLocked() error {
	entries, err := readHistory(s.path)
	if err != nil {
		return err
	}
	if len(entries) > s.limit {
		entries = entries[len(entries)-s.limit:]
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := f.Close(); err != nil {
		return err
	}

	if s.f != nil {
		_ = s.f.Close()
		s.f = nil
	}
	if err := s.rename(tmp, s.path); err != nil {
		// The append handle was closed for the swap; reopen the original so
		// a failed rename does not disable history for the rest of the run.
		if nf, oerr := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); oerr == nil {
			s.f = nf
		}
		return err
	}
	nf, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	s.f = nf
	s.count = len(entries)
	return nil
}

func readHistory(path string) ([]HistoryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []HistoryEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e HistoryEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			// skip torn/corrupt lines (partial write during crash)
			continue
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

func countHistoryLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
