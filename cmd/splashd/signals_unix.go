//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"splashd/internal/app"
	"splashd/internal/dispatch"
)

// watchControlSignals maps SIGHUP to a config reload, SIGUSR1 to
// pause/resume and SIGUSR2 to a start/stop toggle. The watcher exits
// with ctx.
func watchControlSignals(ctx context.Context, a *app.App) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2)

	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				switch sig {
				case syscall.SIGHUP:
					a.Enqueue(dispatch.CmdReload)
				case syscall.SIGUSR1:
					a.Enqueue(dispatch.CmdTogglePause)
				case syscall.SIGUSR2:
					if a.Running() {
						a.Enqueue(dispatch.CmdStop)
					} else {
						a.Enqueue(dispatch.CmdStart)
					}
				}
			}
		}
	}()
}
