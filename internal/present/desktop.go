package present

import (
	"strings"
	"time"

	"github.com/gen2brain/beeep"
	"golang.org/x/time/rate"

	logx "splashd/pkg/logx"
)

const defaultSoundMinGap = 2 * time.Second

// Desktop shows system notifications via beeep.
//
// Sound policy: the full forms use an alert (notification + sound) when sound
// is enabled and the limiter permits; otherwise they degrade to a plain
// notification. A burst of flushes must not machine-gun the speaker.
type Desktop struct {
	log       logx.Logger
	playSound bool
	sound     *rate.Limiter
}

func NewDesktop(cfg Config, log logx.Logger) *Desktop {
	if log.IsZero() {
		log = logx.Nop()
	}
	gap := cfg.SoundMinGap
	if gap <= 0 {
		gap = defaultSoundMinGap
	}
	return &Desktop{
		log:       log,
		playSound: cfg.PlaySound,
		sound:     rate.NewLimiter(rate.Every(gap), 1),
	}
}

func (d *Desktop) Single(message, color string) error {
	_ = color
	return d.full("Reminder", message)
}

func (d *Desktop) Combined(messages, colors []string) error {
	_ = colors
	return d.full("Reminders", strings.Join(messages, "\n\n"))
}

func (d *Desktop) Popup(message, color string) error {
	_ = color
	return beeep.Notify("Reminder", message, "")
}

func (d *Desktop) full(title, body string) error {
	if d.playSound && d.sound.Allow() {
		return beeep.Alert(title, body, "")
	}
	return beeep.Notify(title, body, "")
}
