package app

import (
	"context"
	"runtime/debug"
	"time"

	"splashd/internal/dispatch"
	"splashd/internal/eventbus"
	"splashd/internal/notifier"
	"splashd/internal/reminder"
	"splashd/internal/storage"
	logx "splashd/pkg/logx"
)

const consumerTick = 500 * time.Millisecond

// Loop is the consumer: it flushes due batches, renders whatever reached the
// dispatch queue, then applies pending commands in arrival order. It runs on
// the caller's goroutine (main) and returns on Quit, ctx cancel, or a fatal
// supervisor error.
func (a *App) Loop(ctx context.Context) error {
	t := time.NewTicker(consumerTick)
	defer t.Stop()

	a.log.Debug("consumer loop started")
	for {
		select {
		case <-ctx.Done():
			a.log.Debug("consumer loop stopped", logx.String("cause", "context"))
			return nil
		case <-a.Done():
			a.log.Debug("consumer loop stopped", logx.String("cause", "app"))
			return a.Err()
		case <-t.C:
			a.notif.FlushDue(time.Now())
			a.drainBatches()
			if quit := a.drainCommands(ctx); quit {
				a.log.Debug("consumer loop stopped", logx.String("cause", "quit"))
				return nil
			}
		}
	}
}

func (a *App) drainBatches() {
	for {
		b, ok := a.batches.TryPop()
		if !ok {
			return
		}
		if !a.running.Load() {
			a.log.Debug("batch dropped; reminders stopped",
				logx.String("kind", string(b.Kind)),
				logx.Int("count", len(b.Items)),
			)
			a.bus.Publish(eventbus.Event{
				Type: eventbus.TypeBatchDropped,
				Data: notifier.BatchEvent{Kind: string(b.Kind), Count: len(b.Items), At: time.Now()},
			})
			continue
		}
		a.render(b)
	}
}

// render never lets a presentation failure escape into the loop: errors are
// logged and panics are contained to the one batch that caused them.
func (a *App) render(b dispatch.Batch) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("render panicked",
				logx.String("kind", string(b.Kind)),
				logx.Any("panic", r),
				logx.Stack(string(debug.Stack())),
			)
		}
	}()

	var err error
	switch b.Kind {
	case dispatch.Single:
		it := b.Items[0]
		// The popup form takes over while paused or when the reminder asks
		// for it; the batch keeps its Single tag either way.
		if a.paused.Load() || it.Hint == reminder.DisplayPopup {
			err = a.rend.Popup(it.Message, it.Color)
		} else {
			err = a.rend.Single(it.Message, it.Color)
		}
	case dispatch.Combined:
		err = a.rend.Combined(b.Messages(), b.Colors())
	case dispatch.Popup:
		it := b.Items[0]
		err = a.rend.Popup(it.Message, it.Color)
	default:
		a.log.Warn("unknown batch kind", logx.String("kind", string(b.Kind)))
		return
	}
	if err != nil {
		a.log.Warn("render failed",
			logx.String("kind", string(b.Kind)),
			logx.Int("count", len(b.Items)),
			logx.Any("err", err),
		)
		return
	}

	a.delivered.Add(1)
	a.log.Debug("batch rendered",
		logx.String("kind", string(b.Kind)),
		logx.Int("count", len(b.Items)),
	)
	a.bus.Publish(eventbus.Event{
		Type: eventbus.TypeBatchRendered,
		Data: storage.HistoryEntry{
			At:       time.Now(),
			Kind:     string(b.Kind),
			Count:    len(b.Items),
			Messages: b.Messages(),
		},
	})
}

// drainCommands applies queued commands in arrival order. It reports true
// when a Quit was seen; anything queued behind the Quit is left unapplied.
func (a *App) drainCommands(ctx context.Context) bool {
	for {
		cmd, ok := a.commands.TryPop()
		if !ok {
			return false
		}
		a.apply(ctx, cmd)
		if cmd == dispatch.CmdQuit {
			return true
		}
	}
}

func (a *App) apply(ctx context.Context, cmd dispatch.Command) {
	a.log.Debug("applying command", logx.String("command", string(cmd)))
	switch cmd {
	case dispatch.CmdStart:
		a.startReminders()
	case dispatch.CmdStop:
		a.stopReminders(ctx)
	case dispatch.CmdTogglePause:
		a.togglePause()
	case dispatch.CmdReload:
		a.applyReload(ctx)
	case dispatch.CmdQuit:
		a.log.Info("quit requested")
		a.stopReminders(ctx)
	default:
		a.log.Warn("unknown command ignored", logx.String("command", string(cmd)))
		return
	}
	a.bus.Publish(eventbus.Event{Type: eventbus.TypeCommandApplied, Data: string(cmd)})
}
