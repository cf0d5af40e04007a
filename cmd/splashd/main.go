package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"splashd/internal/app"
)

func main() {
	var (
		cfgPath string
		histN   int
	)
	flag.StringVar(&cfgPath, "config", "./config.json", "path to config file (json or yaml)")
	flag.IntVar(&histN, "history", 0, "print the N most recent deliveries and exit")
	flag.Parse()

	if histN > 0 {
		if err := printHistory(cfgPath, histN); err != nil {
			fmt.Println("history:", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// NotifyContext hides which signal fired; keep a copy for the stop reason.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if err := a.Start(ctx); err != nil {
		fmt.Println("fatal start:", err)
		os.Exit(1)
	}

	watchControlSignals(ctx, a)
	notifyReady(ctx)

	loopErr := a.Loop(ctx)

	notifyStopping()
	_ = a.Stop(context.Background(), stopReason(loopErr, sigCh))
	if loopErr != nil {
		fmt.Println("fatal:", loopErr)
		os.Exit(1)
	}
}

func stopReason(loopErr error, sigCh <-chan os.Signal) app.StopReason {
	if loopErr != nil {
		return app.StopFatalError
	}
	select {
	case sig := <-sigCh:
		if sig == syscall.SIGTERM {
			return app.StopSIGTERM
		}
		return app.StopSIGINT
	default:
		return app.StopQuitCommand
	}
}
