//go:build !unix

package main

import (
	"context"

	"splashd/internal/app"
)

// Control signals (SIGHUP/SIGUSR1/SIGUSR2) are unix-only.
func watchControlSignals(ctx context.Context, a *app.App) {}
