package reminder

import (
	"testing"
	"time"
)

func TestParseClockVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want Clock
	}{
		{name: "hh:mm", raw: "12:00", want: Clock{Hour: 12}},
		{name: "hh:mm:ss", raw: "09:30:15", want: Clock{Hour: 9, Minute: 30, Second: 15}},
		{name: "single digit hour", raw: "7:05", want: Clock{Hour: 7, Minute: 5}},
		{name: "midnight", raw: "00:00", want: Clock{}},
		{name: "end of day", raw: "23:59:59", want: Clock{Hour: 23, Minute: 59, Second: 59}},
		{name: "padded", raw: "  18:45 ", want: Clock{Hour: 18, Minute: 45}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.raw)
			if err != nil {
				t.Fatalf("ParseClock(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseClock(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseClockInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "noon", "24:00", "12:60", "12:00:60", "12", "12:0", "1200"} {
		if _, err := ParseClock(raw); err == nil {
			t.Fatalf("ParseClock(%q): expected error", raw)
		}
	}
}

func TestClockNextAfter(t *testing.T) {
	t.Parallel()
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		clock Clock
		want  time.Time
	}{
		{
			name:  "later today",
			clock: Clock{Hour: 12},
			want:  time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "already passed rolls to tomorrow",
			clock: Clock{Hour: 9, Minute: 30},
			want:  time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "exactly now rolls to tomorrow",
			clock: Clock{Hour: 10},
			want:  time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := tt.clock.NextAfter(base)
			if !got.Equal(tt.want) {
				t.Fatalf("NextAfter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewIntervalValidation(t *testing.T) {
	t.Parallel()
	if _, err := NewInterval("", "stretch", 0, "#FF6B35", DisplayNormal); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if _, err := NewInterval("", "stretch", -time.Minute, "", DisplayNormal); err == nil {
		t.Fatal("expected error for negative interval")
	}
	if _, err := NewInterval("", "   ", time.Minute, "", DisplayNormal); err == nil {
		t.Fatal("expected error for empty message")
	}

	r, err := NewInterval("", "stretch", 30*time.Minute, "#FF6B35", DisplayNormal)
	if err != nil {
		t.Fatalf("NewInterval error: %v", err)
	}
	if r.ID == "" {
		t.Fatal("expected generated ID")
	}
	if r.Kind != RepeatInterval {
		t.Fatalf("Kind = %v, want interval", r.Kind)
	}
}

func TestNewDailyValidation(t *testing.T) {
	t.Parallel()
	if _, err := NewDaily("", "lunch", "25:00", "", DisplayNormal); err == nil {
		t.Fatal("expected error for malformed time")
	}

	r, err := NewDaily("lunch", "Lunch Time!", "12:00", "#E74C3C", DisplayPopup)
	if err != nil {
		t.Fatalf("NewDaily error: %v", err)
	}
	if r.ID != "lunch" {
		t.Fatalf("ID = %q, want lunch", r.ID)
	}
	if r.Hint != DisplayPopup {
		t.Fatalf("Hint = %v, want popup", r.Hint)
	}
}

func TestReminderNextAfter(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	iv, err := NewInterval("", "water", 20*time.Minute, "", DisplayNormal)
	if err != nil {
		t.Fatalf("NewInterval error: %v", err)
	}
	if got, want := iv.NextAfter(now), now.Add(20*time.Minute); !got.Equal(want) {
		t.Fatalf("interval NextAfter = %v, want %v", got, want)
	}

	dl, err := NewDaily("", "lunch", "12:00", "", DisplayNormal)
	if err != nil {
		t.Fatalf("NewDaily error: %v", err)
	}
	if got, want := dl.NextAfter(now), time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("daily NextAfter = %v, want %v", got, want)
	}
}
