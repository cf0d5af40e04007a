package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"splashd/internal/app"
)

// printHistory prints the n most recent deliveries, newest first.
func printHistory(cfgPath string, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := app.History(ctx, cfgPath, n)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no deliveries recorded")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-8s  %s\n",
			e.At.Format("2006-01-02 15:04:05"), e.Kind, strings.Join(e.Messages, " | "))
	}
	return nil
}
