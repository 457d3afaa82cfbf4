//go:build !rp2040

package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"envserve-go/drivers/ms430"
	"envserve-go/internal/platform"
	"envserve-go/services/config"
	"envserve-go/types"
)

type options struct {
	cfg     config.Config
	host    platform.HostOptions
	metrics string
	stats   time.Duration
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("envserve-sim", flag.ContinueOnError)
	var (
		listen    = fs.String("listen", ":8080", "page listen address")
		metrics   = fs.String("metrics", ":9430", "metrics listen address (empty disables)")
		cycle     = fs.String("cycle", "3s", "sensor cadence: 3s, 100s or 300s")
		particle  = fs.String("particle", "off", "particle sensor: off, ppd42 or sds011")
		unit      = fs.String("unit", "c", "temperature unit: c or f")
		mode      = fs.String("mode", "join", "link mode: join or host")
		ssid      = fs.String("ssid", "envserve-sim", "network name")
		stale     = fs.Bool("stale", false, "mark sections whose last read failed")
		speedup   = fs.Int("speedup", 1, "divide the sensor cadence")
		failEvery = fs.Int("fail-every", 0, "fail every Nth sensor read (0 never)")
		dropEvery = fs.Duration("drop-every", 0, "drop the link periodically (0 never)")
		stats     = fs.Duration("stats", time.Minute, "diagnostic stats interval (0 disables)")
	)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg := config.Default()
	cfg.SSID = *ssid
	cfg.ShowStale = *stale
	var err error
	if cfg.Cycle, err = parseCycle(*cycle); err != nil {
		return options{}, err
	}
	if cfg.Particle, err = parseParticle(*particle); err != nil {
		return options{}, err
	}
	if cfg.TempUnit, err = parseUnit(*unit); err != nil {
		return options{}, err
	}
	if cfg.Mode, err = parseMode(*mode); err != nil {
		return options{}, err
	}

	host := platform.DefaultHostOptions()
	host.Listen = *listen
	host.Speedup = *speedup
	host.FailEvery = *failEvery
	host.DropEvery = *dropEvery
	return options{cfg: cfg, host: host, metrics: *metrics, stats: *stats}, nil
}

func parseCycle(s string) (ms430.CyclePeriod, error) {
	switch s {
	case "3s", "3":
		return ms430.Cycle3s, nil
	case "100s", "100":
		return ms430.Cycle100s, nil
	case "300s", "300":
		return ms430.Cycle300s, nil
	}
	return 0, fmt.Errorf("unknown cycle %q", s)
}

func parseParticle(s string) (ms430.ParticleSensor, error) {
	switch strings.ToLower(s) {
	case "off", "none", "":
		return ms430.ParticleOff, nil
	case "ppd42":
		return ms430.ParticlePPD42, nil
	case "sds011":
		return ms430.ParticleSDS011, nil
	}
	return 0, fmt.Errorf("unknown particle sensor %q", s)
}

func parseUnit(s string) (ms430.TempUnit, error) {
	switch strings.ToLower(s) {
	case "c", "celsius":
		return ms430.Celsius, nil
	case "f", "fahrenheit":
		return ms430.Fahrenheit, nil
	}
	return 0, fmt.Errorf("unknown temperature unit %q", s)
}

func parseMode(s string) (types.LinkMode, error) {
	switch s {
	case "join":
		return types.ModeJoin, nil
	case "host":
		return types.ModeHost, nil
	}
	return 0, fmt.Errorf("unknown link mode %q", s)
}
