package reminder

import (
	"fmt"
	"regexp"
	"time"
)

// Clock is a wall-clock time of day for daily reminders.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

var reClock = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})(?::(\d{2}))?\s*$`)

// ParseClock parses "HH:MM" or "HH:MM:SS" (24h).
func ParseClock(raw string) (Clock, error) {
	m := reClock.FindStringSubmatch(raw)
	if m == nil {
		return Clock{}, fmt.Errorf("invalid time %q (use HH:MM or HH:MM:SS)", raw)
	}
	hh := digits(m[1])
	mm := digits(m[2])
	ss := 0
	if m[3] != "" {
		ss = digits(m[3])
	}
	if hh > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", raw)
	}
	if mm > 59 {
		return Clock{}, fmt.Errorf("invalid minutes in %q", raw)
	}
	if ss > 59 {
		return Clock{}, fmt.Errorf("invalid seconds in %q", raw)
	}
	return Clock{Hour: hh, Minute: mm, Second: ss}, nil
}

// digits parses a short run of ASCII digits. The regexp guarantees input shape.
func digits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// NextAfter returns the next occurrence of this wall-clock time strictly
// after now, in now's location. An occurrence landing exactly on now rolls
// over to the next day.
func (c Clock) NextAfter(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), c.Hour, c.Minute, c.Second, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
