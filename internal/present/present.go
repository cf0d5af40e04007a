package present

import (
	"errors"
	"strings"
	"time"

	logx "splashd/pkg/logx"
)

// Renderer turns a flushed batch into something the operator can see.
// Implementations must be safe to call from the consumer loop only; they are
// not required to be goroutine safe.
type Renderer interface {
	// Single renders one reminder in its full form.
	Single(message, color string) error
	// Combined renders several reminders together in their full form.
	// colors is parallel to messages; when shorter, the first color repeats.
	Combined(messages, colors []string) error
	// Popup renders the minimal form (used while paused or when requested).
	Popup(message, color string) error
}

// Config selects and tunes the presentation sink.
type Config struct {
	// Mode is "console", "desktop" or "both". Empty means "console".
	Mode      string
	PlaySound bool
	// SoundMinGap rate-limits the notification sound; 0 means 2s.
	SoundMinGap time.Duration
}

// New builds the renderer for cfg.Mode.
func New(cfg Config, log logx.Logger) (Renderer, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case "", "console":
		return NewConsole(logx.Stdout()), nil
	case "desktop":
		return NewDesktop(cfg, log), nil
	case "both":
		return Multi{NewConsole(logx.Stdout()), NewDesktop(cfg, log)}, nil
	default:
		return nil, errors.New("unknown display mode: " + mode)
	}
}

// Multi fans every call out to all renderers and reports the first failure
// after attempting them all.
type Multi []Renderer

func (m Multi) Single(message, color string) error {
	var first error
	for _, r := range m {
		if err := r.Single(message, color); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Combined(messages, colors []string) error {
	var first error
	for _, r := range m {
		if err := r.Combined(messages, colors); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m Multi) Popup(message, color string) error {
	var first error
	for _, r := range m {
		if err := r.Popup(message, color); err != nil && first == nil {
			first = err
		}
	}
	return first
}
