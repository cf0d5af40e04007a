package app

import (
	"context"

	"splashd/internal/config"
	"splashd/internal/storage"
	logx "splashd/pkg/logx"
)

// History opens the store configured at cfgPath and returns the n most
// recent deliveries, newest first. Returns storage.ErrDisabled when the
// config has no storage section.
func History(ctx context.Context, cfgPath string, n int) ([]storage.HistoryEntry, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	sc, enabled, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, storage.ErrDisabled
	}
	st, err := storage.Open(sc, logx.Nop())
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.RecentHistory(ctx, n)
}
