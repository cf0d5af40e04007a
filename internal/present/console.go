package present

import (
	"fmt"
	"io"
	"time"
)

// Console prints timestamped reminder lines. Colors are accepted for
// interface symmetry but not rendered; plain text keeps the output greppable
// and journald friendly.
type Console struct {
	w   io.Writer
	now func() time.Time
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, now: time.Now}
}

func (c *Console) stamp() string {
	return c.now().Format("15:04:05")
}

func (c *Console) Single(message, color string) error {
	_ = color
	_, err := fmt.Fprintf(c.w, "[%s] Reminder: %s\n", c.stamp(), message)
	return err
}

func (c *Console) Combined(messages, colors []string) error {
	_ = colors
	ts := c.stamp()
	if _, err := fmt.Fprintf(c.w, "[%s] Reminders (%d):\n", ts, len(messages)); err != nil {
		return err
	}
	for _, m := range messages {
		if _, err := fmt.Fprintf(c.w, "  - %s\n", m); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) Popup(message, color string) error {
	_ = color
	_, err := fmt.Fprintf(c.w, "[%s] Reminder (mini): %s\n", c.stamp(), message)
	return err
}
