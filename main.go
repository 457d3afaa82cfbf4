// Firmware entry: boot the board and run the acquisition loop forever.
package main

import (
	"context"
	"time"

	"envserve-go/internal/platform"
	"envserve-go/services/app"
	"envserve-go/services/config"
	"envserve-go/types"
)

var counters types.Counters

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.Background()
	b, err := platform.Open(ctx)
	if err == nil {
		err = app.Run(ctx, config.Default(), b, &counters)
	}

	// Fatal: park here so the last diagnostics stay readable.
	b.Log.Log("main", "halted:", err)
	for {
		time.Sleep(time.Hour)
	}
}
