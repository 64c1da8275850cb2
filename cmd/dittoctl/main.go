// dittoctl is an operator CLI for a local Eclipse Ditto digital-twin
// sandbox: it brings the container stack up and down from a YAML manifest,
// reconciles the demo factory twins, pushes property updates and simulated
// ramps, replays recorded CSV telemetry, and tails live twin changes over
// WebSocket.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Version information set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Cancel on Ctrl+C or SIGTERM so long-running verbs (monitor, replay,
	// ramps) shut down cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
