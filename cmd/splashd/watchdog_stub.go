//go:build !linux

package main

import "context"

// systemd notification is linux-only.
func notifyReady(ctx context.Context) {}

func notifyStopping() {}
