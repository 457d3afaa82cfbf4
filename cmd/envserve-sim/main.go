//go:build !rp2040

// Command envserve-sim runs the firmware's control loop on a host against a
// simulated sensor and link, serving the page over real TCP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"envserve-go/internal/platform"
	"envserve-go/services/app"
	"envserve-go/types"
)

func main() {
	opt, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := platform.OpenHost(ctx, opt.host)
	defer h.Close()
	log := h.Board.Log

	var cnt types.Counters
	if opt.metrics != "" {
		serveMetrics(ctx, opt.metrics, newRegistry(&cnt), log)
	}
	logStats(ctx, opt.stats, &cnt, log)

	err = app.Run(ctx, opt.cfg, h.Board, &cnt)
	if err != nil && ctx.Err() == nil {
		log.Log("sim", "fatal:", err)
		os.Exit(1)
	}
	log.Log("sim", append([]any{"stopped"}, statsLine(&cnt)...)...)
}
