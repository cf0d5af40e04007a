package config

// Default is the config written on first run. It mirrors what a fresh
// install is expected to do out of the box: two gentle interval nags and a
// daily lunch call.
func Default() *Config {
	return &Config{
		Reminders: []ReminderConfig{
			{ID: "stretch", Message: "Stand Up and Stretch!", Interval: "30m", Color: "#FF6B35"},
			{ID: "water", Message: "Drink Water!", Interval: "20m", Color: "#4ECDC4"},
		},
		Scheduled: []ScheduledConfig{
			{ID: "lunch", Message: "Lunch Time!", Time: "12:00", Color: "#E74C3C"},
		},
		Display: DisplayConfig{Mode: "console", PlaySound: true},
		Logging: LoggingConfig{Level: "INFO", Console: true},
	}
}
