package config

import (
	"time"

	"envserve-go/drivers/ms430"
	"envserve-go/types"
)

// -----------------------------------------------------------------------------
// Build-time defaults
//
// Edit these before flashing; nothing here is reloadable at runtime.
// -----------------------------------------------------------------------------

const (
	defaultSSID     = "envserve"
	defaultPassword = "changeme-please"
	defaultHostAddr = "192.168.12.20"

	defaultCycle    = ms430.Cycle100s
	defaultMode     = types.ModeJoin
	defaultParticle = ms430.ParticleOff
	defaultTempUnit = ms430.Celsius

	defaultJoinRetryDelay = 2 * time.Second
	defaultIdleInterval   = time.Millisecond
)
