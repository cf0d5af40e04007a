package config

type Config struct {
	// Reminders are interval reminders ("every 30m").
	Reminders []ReminderConfig `json:"reminders"`
	// Scheduled are daily reminders at a fixed wall-clock time.
	Scheduled []ScheduledConfig `json:"scheduled"`

	Display DisplayConfig  `json:"display"`
	Logging LoggingConfig  `json:"logging"`
	Storage *StorageConfig `json:"storage,omitempty"`
	Debug   *DebugConfig   `json:"debug,omitempty"`
}

// ReminderConfig is one interval reminder.
//
// Interval is a Go duration string (e.g. "30m", "1h30m").
//
// Legacy note:
//   - Older configs spelled the interval as interval_minutes (an integer).
//   - That field is still accepted and used when interval is omitted, so old
//     config files keep working under the strict decoder.
type ReminderConfig struct {
	ID              string `json:"id,omitempty"`
	Message         string `json:"message"`
	Interval        string `json:"interval,omitempty"`
	IntervalMinutes int    `json:"interval_minutes,omitempty"`
	Color           string `json:"color,omitempty"`
	// Popup forces the minimal popup form for this reminder.
	Popup bool `json:"popup,omitempty"`
}

// ScheduledConfig is one daily reminder. Time is "HH:MM" or "HH:MM:SS" (24h).
type ScheduledConfig struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
	Time    string `json:"time"`
	Color   string `json:"color,omitempty"`
	Popup   bool   `json:"popup,omitempty"`
}

// DisplayConfig selects and tunes the presentation sink.
type DisplayConfig struct {
	// Mode is "console", "desktop" or "both". Empty means "console".
	Mode      string `json:"mode,omitempty"`
	PlaySound bool   `json:"play_sound"`
	// SoundMinGap rate-limits the notification sound so bursts of popups
	// don't machine-gun the speaker. Go duration string; default "2s".
	SoundMinGap string `json:"sound_min_gap,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// DebugConfig enables the debug HTTP listener. PprofToken is required
// when Pprof binds a non-loopback address.
type DebugConfig struct {
	Pprof      string `json:"pprof,omitempty"` // listen addr, e.g. "127.0.0.1:6060"
	PprofToken string `json:"pprof_token,omitempty"`
}

// StorageConfig controls the optional delivery-history store.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./splashd_history" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
	// HistoryLimit caps how many delivered batches are retained. 0 keeps the
	// driver default.
	HistoryLimit int `json:"history_limit,omitempty"`
}
