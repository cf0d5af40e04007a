package app

import (
	"fmt"
	"net"
	"strings"
	"time"

	"splashd/internal/config"
	"splashd/internal/observability/pprof"
	"splashd/internal/present"
	"splashd/internal/reminder"
	"splashd/internal/storage"
	logx "splashd/pkg/logx"
)

// buildReminders turns config entries into schedulable reminders. Invalid
// entries are logged and skipped so one bad line doesn't take the whole
// schedule down with it.
func buildReminders(cfg *config.Config, log logx.Logger) []*reminder.Reminder {
	if cfg == nil {
		return nil
	}
	out := make([]*reminder.Reminder, 0, len(cfg.Reminders)+len(cfg.Scheduled))

	for i, rc := range cfg.Reminders {
		every, err := intervalFor(rc)
		if err != nil {
			log.Warn("skipping interval reminder",
				logx.Int("index", i),
				logx.String("message", rc.Message),
				logx.Any("err", err),
			)
			continue
		}
		r, err := reminder.NewInterval(rc.ID, rc.Message, every, rc.Color, hintFor(rc.Popup))
		if err != nil {
			log.Warn("skipping interval reminder",
				logx.Int("index", i),
				logx.String("message", rc.Message),
				logx.Any("err", err),
			)
			continue
		}
		out = append(out, r)
	}

	for i, sc := range cfg.Scheduled {
		r, err := reminder.NewDaily(sc.ID, sc.Message, sc.Time, sc.Color, hintFor(sc.Popup))
		if err != nil {
			log.Warn("skipping daily reminder",
				logx.Int("index", i),
				logx.String("message", sc.Message),
				logx.Any("err", err),
			)
			continue
		}
		out = append(out, r)
	}

	return out
}

// intervalFor resolves the interval of an entry, honoring the legacy
// interval_minutes spelling when the duration form is omitted.
func intervalFor(rc config.ReminderConfig) (time.Duration, error) {
	if raw := strings.TrimSpace(rc.Interval); raw != "" {
		return config.ParseDurationField("reminders.interval", raw)
	}
	if rc.IntervalMinutes > 0 {
		return time.Duration(rc.IntervalMinutes) * time.Minute, nil
	}
	return 0, fmt.Errorf("interval (or legacy interval_minutes) is required")
}

func hintFor(popup bool) reminder.DisplayHint {
	if popup {
		return reminder.DisplayPopup
	}
	return reminder.DisplayNormal
}

func mapLoggingConfig(lc config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   lc.Level,
		Console: lc.Console,
		File: logx.FileConfig{
			Enabled: lc.File.Enabled,
			Path:    lc.File.Path,
		},
	}
}

func mapDisplayConfig(dc config.DisplayConfig) (present.Config, error) {
	gap, err := config.ParseDurationOrDefault("display.sound_min_gap", dc.SoundMinGap, 2*time.Second)
	if err != nil {
		return present.Config{}, err
	}
	return present.Config{
		Mode:        dc.Mode,
		PlaySound:   dc.PlaySound,
		SoundMinGap: gap,
	}, nil
}

func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	if cfg == nil || cfg.Storage == nil {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage
	driver := strings.TrimSpace(sc.Driver)
	if driver == "" || strings.EqualFold(driver, "none") {
		return storage.Config{}, false, nil
	}
	path := strings.TrimSpace(sc.Path)

	dl := strings.ToLower(driver)
	switch dl {
	case "file":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=file")
		}
		return storage.Config{Driver: "file", Path: path, HistoryLimit: sc.HistoryLimit}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, false, err
		}
		return storage.Config{Driver: dl, Path: path, BusyTimeout: busy, HistoryLimit: sc.HistoryLimit}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", driver)
	}
}

// mapDebugConfig maps the optional debug section. A nil section or empty
// addr yields a zero Config, which keeps the listener off.
func mapDebugConfig(cfg *config.Config) (pprof.Config, error) {
	if cfg == nil || cfg.Debug == nil {
		return pprof.Config{}, nil
	}
	addr := strings.TrimSpace(cfg.Debug.Pprof)
	if addr == "" {
		return pprof.Config{}, nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return pprof.Config{}, fmt.Errorf("debug.pprof: %w", err)
	}
	return pprof.Config{Addr: addr, Token: cfg.Debug.PprofToken}, nil
}

// validateConfig is the hot-reload gate: a config that fails here is rejected
// by the watcher and the previous one stays in effect.
func validateConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	for i, rc := range cfg.Reminders {
		if strings.TrimSpace(rc.Message) == "" {
			return fmt.Errorf("reminders[%d].message is required", i)
		}
		if _, err := intervalFor(rc); err != nil {
			return fmt.Errorf("reminders[%d]: %w", i, err)
		}
	}
	for i, sc := range cfg.Scheduled {
		if strings.TrimSpace(sc.Message) == "" {
			return fmt.Errorf("scheduled[%d].message is required", i)
		}
		if _, err := reminder.ParseClock(sc.Time); err != nil {
			return fmt.Errorf("scheduled[%d].time: %w", i, err)
		}
	}
	if _, err := mapDisplayConfig(cfg.Display); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Display.Mode)) {
	case "", "console", "desktop", "both":
	default:
		return fmt.Errorf("display.mode must be console, desktop or both")
	}
	if _, _, err := mapStorageConfig(cfg); err != nil {
		return err
	}
	if _, err := mapDebugConfig(cfg); err != nil {
		return err
	}
	return nil
}
