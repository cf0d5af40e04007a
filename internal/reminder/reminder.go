// Package reminder holds the immutable event model shared by the scheduler,
// the aggregator and the presentation layer.
package reminder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RepeatKind describes how a reminder recurs.
type RepeatKind int

const (
	// RepeatInterval fires every fixed duration, measured from the previous
	// fire. Late processing shifts the whole series (drift is accepted, not
	// corrected; the cadence is relative, not phase-locked).
	RepeatInterval RepeatKind = iota
	// RepeatDaily fires once per day at a fixed wall-clock time.
	RepeatDaily
)

func (k RepeatKind) String() string {
	switch k {
	case RepeatInterval:
		return "interval"
	case RepeatDaily:
		return "daily"
	default:
		return "unknown"
	}
}

// DisplayHint is an opaque presentation preference carried with the reminder.
type DisplayHint int

const (
	// DisplayNormal lets the presentation boundary pick the form
	// (full when active, popup when paused).
	DisplayNormal DisplayHint = iota
	// DisplayPopup forces the minimal, non-blocking popup form.
	DisplayPopup
)

func (h DisplayHint) String() string {
	switch h {
	case DisplayPopup:
		return "popup"
	default:
		return "normal"
	}
}

// Reminder is a single scheduled notification. Immutable after construction;
// the scheduler derives fire times from it but never mutates it.
type Reminder struct {
	ID      string
	Message string
	Color   string
	Kind    RepeatKind
	Every   time.Duration // RepeatInterval only
	At      Clock         // RepeatDaily only
	Hint    DisplayHint
}

var ErrEmptyMessage = errors.New("reminder message required")

// NewInterval builds an interval reminder. A non-positive interval is a
// configuration error and is rejected here, before anything is scheduled.
func NewInterval(id, message string, every time.Duration, color string, hint DisplayHint) (*Reminder, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if every <= 0 {
		return nil, fmt.Errorf("interval must be > 0, got %v", every)
	}
	return &Reminder{
		ID:      orNewID(id),
		Message: message,
		Color:   color,
		Kind:    RepeatInterval,
		Every:   every,
		Hint:    hint,
	}, nil
}

// NewDaily builds a daily reminder from an "HH:MM[:SS]" time string.
func NewDaily(id, message, at, color string, hint DisplayHint) (*Reminder, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	clock, err := ParseClock(at)
	if err != nil {
		return nil, err
	}
	return &Reminder{
		ID:      orNewID(id),
		Message: message,
		Color:   color,
		Kind:    RepeatDaily,
		At:      clock,
		Hint:    hint,
	}, nil
}

// NextAfter computes the next fire time strictly after now.
func (r *Reminder) NextAfter(now time.Time) time.Time {
	if r.Kind == RepeatDaily {
		return r.At.NextAfter(now)
	}
	return now.Add(r.Every)
}

// Schedule is a human-readable description of the recurrence, for logs.
func (r *Reminder) Schedule() string {
	if r.Kind == RepeatDaily {
		return "daily at " + r.At.String()
	}
	return "every " + r.Every.String()
}

func orNewID(id string) string {
	id = strings.TrimSpace(id)
	if id != "" {
		return id
	}
	return uuid.NewString()
}
