package config

import (
	"reflect"
	"sort"
	"strings"

	logx "splashd/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections plus safe
// structured attrs for logging. Reminder lists are summarized by count only;
// per-entry detail belongs at debug level, not in the reload summary.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 12)

	// Interval reminders
	if !reflect.DeepEqual(oldCfg.Reminders, newCfg.Reminders) {
		changed = append(changed, "reminders")
		attrs = append(attrs,
			logx.Int("reminders.count", len(newCfg.Reminders)),
		)
	}

	// Daily reminders
	if !reflect.DeepEqual(oldCfg.Scheduled, newCfg.Scheduled) {
		changed = append(changed, "scheduled")
		attrs = append(attrs,
			logx.Int("scheduled.count", len(newCfg.Scheduled)),
		)
	}

	// Display / rendering
	if oldCfg.Display.Mode != newCfg.Display.Mode ||
		oldCfg.Display.PlaySound != newCfg.Display.PlaySound ||
		strings.TrimSpace(oldCfg.Display.SoundMinGap) != strings.TrimSpace(newCfg.Display.SoundMinGap) {
		changed = append(changed, "display")
		attrs = append(attrs,
			logx.String("display.mode", strings.TrimSpace(newCfg.Display.Mode)),
			logx.Bool("display.play_sound", newCfg.Display.PlaySound),
			logx.String("display.sound_min_gap", strings.TrimSpace(newCfg.Display.SoundMinGap)),
		)
	}

	// Logging
	if oldCfg.Logging.Level != newCfg.Logging.Level ||
		oldCfg.Logging.Console != newCfg.Logging.Console ||
		oldCfg.Logging.File.Enabled != newCfg.Logging.File.Enabled ||
		strings.TrimSpace(oldCfg.Logging.File.Path) != strings.TrimSpace(newCfg.Logging.File.Path) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	// Storage (persistence). Nil means disabled.
	oldS := oldCfg.Storage
	newS := newCfg.Storage
	var oDriver, nDriver, oBusy, nBusy string
	var oPathSet, nPathSet bool
	var oLimit, nLimit int
	if oldS != nil {
		oDriver = strings.TrimSpace(oldS.Driver)
		oBusy = strings.TrimSpace(oldS.BusyTimeout)
		oPathSet = strings.TrimSpace(oldS.Path) != ""
		oLimit = oldS.HistoryLimit
	}
	if newS != nil {
		nDriver = strings.TrimSpace(newS.Driver)
		nBusy = strings.TrimSpace(newS.BusyTimeout)
		nPathSet = strings.TrimSpace(newS.Path) != ""
		nLimit = newS.HistoryLimit
	}
	if oDriver != nDriver || oBusy != nBusy || oPathSet != nPathSet || oLimit != nLimit {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", nDriver),
			logx.Bool("storage.path_set", nPathSet),
			logx.String("storage.busy_timeout", nBusy),
			logx.Int("storage.history_limit", nLimit),
		)
	}

	// Debug listener. Nil means disabled. Token values never reach logs.
	var oAddr, nAddr string
	var oTokSet, nTokSet bool
	if oldCfg.Debug != nil {
		oAddr = strings.TrimSpace(oldCfg.Debug.Pprof)
		oTokSet = oldCfg.Debug.PprofToken != ""
	}
	if newCfg.Debug != nil {
		nAddr = strings.TrimSpace(newCfg.Debug.Pprof)
		nTokSet = newCfg.Debug.PprofToken != ""
	}
	if oAddr != nAddr || oTokSet != nTokSet {
		changed = append(changed, "debug")
		attrs = append(attrs,
			logx.String("debug.pprof", nAddr),
			logx.Bool("debug.token_set", nTokSet),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}
