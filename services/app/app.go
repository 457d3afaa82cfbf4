// Package app is the boot sequence shared by the firmware and the host
// simulator: bring up the sensor, the network link and the listener, then
// hand over to the control loop.
package app

import (
	"context"
	"runtime"
	"time"

	"envserve-go/drivers/ms430"
	"envserve-go/errcode"
	"envserve-go/services/acquire"
	"envserve-go/services/config"
	"envserve-go/services/diag"
	"envserve-go/services/dispatch"
	"envserve-go/services/link"
	"envserve-go/types"

	"tinygo.org/x/drivers"
)

// Board is what a platform provides.
type Board struct {
	I2C    drivers.I2C
	Ready  acquire.ReadySignal
	Link   link.Link
	Listen func(ctx context.Context) (dispatch.Listener, error)
	Log    *diag.Logger
}

// App is a booted system ready to run.
type App struct {
	cfg   config.Config
	dev   *ms430.Device
	sup   *link.Supervisor
	sched *acquire.Scheduler
	log   *diag.Logger
}

// Yield returns the idle hook for cfg: a short sleep so that the network
// stack and the listener goroutines get to run.
func Yield(cfg config.Config) func() {
	if cfg.IdleInterval <= 0 {
		return runtime.Gosched
	}
	d := cfg.IdleInterval
	return func() { time.Sleep(d) }
}

// Boot validates cfg and runs the startup sequence: sensor setup, link
// start, listener, first page, cycle mode. Any error is fatal.
func Boot(ctx context.Context, cfg config.Config, b Board, cnt *types.Counters) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalise()
	yield := Yield(cfg)
	log := b.Log

	log.Log("boot", "cycle", cfg.Cycle, "mode", cfg.Mode, "particle", cfg.Particle)

	dev := ms430.New(b.I2C, cfg.Sensor())
	err := dev.Setup(func() error { return acquire.WaitReady(ctx, b.Ready, yield) })
	if err != nil {
		log.Log("boot", "sensor setup failed:", err)
		return nil, errcode.Wrap(errcode.Of(err), "sensor setup", err)
	}

	sup := link.New(b.Link, link.Config{
		Mode:        cfg.Mode,
		SSID:        cfg.SSID,
		Password:    cfg.Password,
		HostAddr:    cfg.HostAddr,
		RetryDelay:  cfg.JoinRetryDelay,
		MaxAttempts: cfg.MaxJoinAttempts,
	}, log, cnt)
	sup.Yield = yield
	if err := sup.Start(ctx); err != nil {
		return nil, err
	}

	ln, err := b.Listen(ctx)
	if err != nil {
		log.Log("boot", "listen failed:", err)
		return nil, errcode.Wrap(errcode.Error, "listen", err)
	}

	sched := acquire.New(acquire.Config{
		RefreshSeconds: cfg.RefreshSeconds(),
		Particle:       cfg.Particle,
		TempUnit:       cfg.TempUnit,
		ShowStale:      cfg.ShowStale,
	}, acquire.Deps{
		Sensor:   dev,
		Ready:    b.Ready,
		Listener: ln,
		Link:     sup,
		Yield:    yield,
		Log:      log,
		Counters: cnt,
	})
	sched.Prime()

	// Any edge left over from setup belongs to no cycle.
	b.Ready.Clear()
	if err := dev.StartCycle(); err != nil {
		log.Log("boot", "cycle mode failed:", err)
		return nil, errcode.Wrap(errcode.Of(err), "start cycle", err)
	}
	log.Log("boot", "serving, first update in", cfg.CyclePeriod().String())

	return &App{cfg: cfg, dev: dev, sup: sup, sched: sched, log: log}, nil
}

// Run polls the control loop until ctx is done. Firmware never cancels.
func (a *App) Run(ctx context.Context) error {
	err := a.sched.Run(ctx)
	if sErr := a.dev.Standby(); sErr != nil {
		a.log.Log("app", "standby failed:", sErr)
	}
	return err
}

// Scheduler exposes the control loop; it must only be used from the
// goroutine that calls Run.
func (a *App) Scheduler() *acquire.Scheduler { return a.sched }

// Config returns the normalised configuration in use.
func (a *App) Config() config.Config { return a.cfg }

// Run boots and runs in one call.
func Run(ctx context.Context, cfg config.Config, b Board, cnt *types.Counters) error {
	a, err := Boot(ctx, cfg, b, cnt)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
