package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"splashd/internal/config"
	"splashd/internal/dispatch"
	"splashd/internal/eventbus"
	"splashd/internal/notifier"
	"splashd/internal/observability/pprof"
	"splashd/internal/present"
	"splashd/internal/runtime/supervisor"
	"splashd/internal/scheduler"
	"splashd/internal/storage"
	logx "splashd/pkg/logx"
)

// App wires the pipeline together and owns the run/pause flags the rest of
// the system consults. It is the notifier's Gate.
type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log   logx.Logger
	logs  *logx.Service
	bus   eventbus.Bus
	store storage.Store
	debug *pprof.Server

	sched *scheduler.Service
	notif *notifier.Service

	// rend is only touched from the consumer loop goroutine.
	rend present.Renderer

	batches  *dispatch.Queue[dispatch.Batch]
	commands *dispatch.Queue[dispatch.Command]

	running atomic.Bool
	paused  atomic.Bool

	delivered atomic.Uint64
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)

	bootLog := logx.NewConsole("INFO").With(logx.String("comp", "config"))
	cfgm.SetLogger(bootLog)

	cfg, err := cfgm.LoadOrInit()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLoggingConfig(cfg.Logging))
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	bus := eventbus.New()

	// Storage (optional)
	var store storage.Store
	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		logSvc.Close()
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			logSvc.Close()
			return nil, err
		}
		store = st
		log.Info("storage enabled", logx.String("driver", sc.Driver))
	}

	pc, err := mapDisplayConfig(cfg.Display)
	if err != nil {
		logSvc.Close()
		return nil, err
	}
	rend, err := present.New(pc, log.With(logx.String("comp", "present")))
	if err != nil {
		logSvc.Close()
		return nil, err
	}

	if _, err := mapDebugConfig(cfg); err != nil {
		logSvc.Close()
		return nil, err
	}

	a := &App{
		cfgPath:  cfgPath,
		cfgm:     cfgm,
		log:      log,
		logs:     logSvc,
		bus:      bus,
		store:    store,
		debug:    pprof.New(log.With(logx.String("comp", "pprof"))),
		rend:     rend,
		batches:  dispatch.NewQueue[dispatch.Batch](),
		commands: dispatch.NewQueue[dispatch.Command](),
	}

	a.notif = notifier.New(notifier.Config{}, a, a.batches,
		log.With(logx.String("comp", "notifier")), bus)
	a.sched = scheduler.New(scheduler.Config{}, a.notif,
		log.With(logx.String("comp", "scheduler")), bus)

	return a, nil
}

// Running reports whether the reminder pipeline is active.
func (a *App) Running() bool { return a.running.Load() }

// Paused reports whether deliveries are in the minimal popup mode.
func (a *App) Paused() bool { return a.paused.Load() }

// Delivered returns how many batches were rendered this session.
func (a *App) Delivered() uint64 { return a.delivered.Load() }

// Enqueue hands a command to the consumer loop. Safe from any goroutine.
func (a *App) Enqueue(cmd dispatch.Command) {
	a.commands.Push(cmd)
	a.log.Debug("command enqueued", logx.String("command", string(cmd)))
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	// transactional config reload: validate before commit/publish
	a.cfgm.SetValidator(func(c context.Context, cfg *config.Config) error {
		_ = c
		return validateConfig(cfg)
	})

	// Reminders run from launch, like flipping the tray app on.
	a.startReminders()

	// Debug listener (optional)
	if dc, err := mapDebugConfig(a.cfgm.Get()); err != nil {
		a.log.Warn("invalid debug config; pprof stays off", logx.Any("err", err))
	} else if a.debug != nil {
		a.debug.Apply(ctx, dc)
	}

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	// Config fan-out: summarize the diff for the log, then let the consumer
	// loop apply the reload so commands stay strictly ordered.
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config.
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						goto APPLY
					}
				}
			APPLY:
				sections, attrs := config.SummarizeConfigChange(lastApplied, newCfg)
				if len(sections) > 0 {
					fields := append([]logx.Field{logx.Any("changed", sections)}, attrs...)
					a.log.Debug("config change summary", fields...)
				} else {
					a.log.Debug("config file event with no effective changes")
				}
				lastApplied = newCfg
				a.Enqueue(dispatch.CmdReload)
			}
		}
	})

	// Debug tap: one subscriber logging every event keeps the others honest.
	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})

	// History recorder: persisting rendered batches happens off the consumer
	// loop so slow disks never delay rendering.
	if a.store != nil {
		hist, hunsub := a.bus.Subscribe(64)
		a.sup.GoRestart0("history.record", func(c context.Context) {
			defer hunsub()
			for {
				select {
				case <-c.Done():
					return
				case e, ok := <-hist:
					if !ok {
						return
					}
					if e.Type != eventbus.TypeBatchRendered {
						continue
					}
					entry, ok := e.Data.(storage.HistoryEntry)
					if !ok {
						continue
					}
					if err := a.store.AppendHistory(c, entry); err != nil {
						a.log.Warn("history append failed", logx.Any("err", err))
					}
				}
			}
		}, supervisor.WithRestartBackoff(500*time.Millisecond, 10*time.Second))
	}

	a.log.Info("app started", logx.String("config", a.cfgPath))
	return nil
}

func (a *App) supContext() context.Context {
	if a.sup == nil {
		return context.Background()
	}
	return a.sup.Context()
}

func (a *App) startReminders() {
	if a.running.Load() {
		a.log.Debug("reminders already running")
		return
	}
	cfg := a.cfgm.Get()
	rems := buildReminders(cfg, a.log)
	a.sched.Start(a.supContext(), rems)
	a.running.Store(true)
	a.log.Info("reminders started", logx.Int("count", len(rems)))
	a.bus.Publish(eventbus.Event{Type: eventbus.TypeRemindersStarted, Data: len(rems)})
}

func (a *App) stopReminders(ctx context.Context) {
	if !a.running.Load() {
		a.log.Debug("reminders already stopped")
		return
	}
	// Flip the flag first: fires racing the stop are ignored at the gate.
	a.running.Store(false)
	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	a.sched.Stop(stopCtx)
	cancel()
	a.notif.Discard()
	a.log.Info("reminders stopped")
	a.bus.Publish(eventbus.Event{Type: eventbus.TypeRemindersStopped})
}

func (a *App) togglePause() {
	paused := !a.paused.Load()
	a.paused.Store(paused)
	if paused {
		a.log.Info("reminders paused (popup mode)")
	} else {
		a.log.Info("reminders resumed")
	}
}

// applyReload re-reads the config file and applies it. Runs on the consumer
// loop; a file that fails to parse leaves the previous config in effect.
func (a *App) applyReload(ctx context.Context) {
	cfg, err := a.cfgm.Load()
	if err != nil {
		a.log.Warn("config reload failed; keeping previous config", logx.Any("err", err))
		return
	}

	if a.logs != nil {
		a.logs.Apply(mapLoggingConfig(cfg.Logging))
	}

	if pc, err := mapDisplayConfig(cfg.Display); err != nil {
		a.log.Warn("invalid display config; keeping previous renderer", logx.Any("err", err))
	} else if rend, err := present.New(pc, a.log.With(logx.String("comp", "present"))); err != nil {
		a.log.Warn("invalid display config; keeping previous renderer", logx.Any("err", err))
	} else {
		a.rend = rend
	}

	if dc, err := mapDebugConfig(cfg); err != nil {
		a.log.Warn("invalid debug config; keeping previous pprof state", logx.Any("err", err))
	} else if a.debug != nil {
		a.debug.Apply(ctx, dc)
	}

	// Rebuild the schedule under the new config. Reload leaves the schedule
	// running even when it was issued while stopped.
	a.stopReminders(ctx)
	a.startReminders()

	a.log.Info("configuration reloaded")
	a.bus.Publish(eventbus.Event{Type: eventbus.TypeConfigReloaded})
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	if reason == "" {
		reason = StopUnknown
	}
	a.log.Info("stopping",
		logx.String("reason", string(reason)),
		logx.Uint64("delivered", a.delivered.Load()),
	)

	// Cancel the run context first so background loops start unwinding.
	a.sup.Cancel()

	// Run a shutdown step with an upper bound so one component can't stall
	// the whole stop.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()
		a.log.Debug("stop step begin", logx.String("name", name), logx.Duration("max", max))

		stepCtx := ctx
		var cancel context.CancelFunc
		if max > 0 {
			// respect the caller's deadline; never extend it
			if dl, ok := ctx.Deadline(); ok {
				rem := time.Until(dl)
				if rem <= 0 {
					max = 0
				} else if rem < max {
					max = rem
				}
			}
			if max > 0 {
				stepCtx, cancel = context.WithTimeout(ctx, max)
				defer cancel()
			}
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Any("err", err))
			}
			took := time.Since(start)
			if took >= 500*time.Millisecond {
				a.log.Info("stop step end", logx.String("name", name), logx.Duration("took", took))
			} else {
				a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", took))
			}
		case <-stepCtx.Done():
			// Contract: fn MUST honor stepCtx and return promptly. If it
			// doesn't, log a leak signal.
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Any("err", stepCtx.Err()),
				logx.Duration("elapsed", time.Since(start)),
			)
			go func() {
				err := <-done
				took := time.Since(start)
				if err != nil {
					a.log.Warn("stop step finished after deadline", logx.String("name", name), logx.Any("err", err), logx.Duration("took", took))
				} else {
					a.log.Info("stop step finished after deadline", logx.String("name", name), logx.Duration("took", took))
				}
			}()
		}
	}

	step("reminders", 2*time.Second, func(c context.Context) error {
		a.stopReminders(c)
		return nil
	})
	step("debug", 1*time.Second, func(c context.Context) error {
		if a.debug != nil {
			a.debug.Stop(c)
		}
		return nil
	})
	step("storage", 1*time.Second, func(c context.Context) error {
		if a.store != nil {
			return a.store.Close()
		}
		return nil
	})
	step("supervisor", 2*time.Second, func(c context.Context) error {
		err := a.sup.Wait(c)
		if err != nil && c.Err() != nil {
			a.log.Debug("goroutines still active at deadline",
				logx.Any("tasks", a.sup.Snapshot()),
				logx.Any("counters", a.sup.Counters()),
			)
		}
		return err
	})

	a.log.Info("stopped")
	if a.logs != nil {
		a.logs.Close()
	}
	return nil
}
