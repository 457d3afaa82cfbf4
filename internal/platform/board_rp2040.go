//go:build rp2040 && ninafw

package platform

import (
	"context"
	"machine"
	"sync/atomic"

	"envserve-go/internal/netio"
	"envserve-go/services/app"
	"envserve-go/services/diag"
	"envserve-go/services/dispatch"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Arduino Nano RP2040 Connect pins; SPI1 and GPIO8..11 belong to the NINA
// WiFi module. READY is open-drain, active low, on D2.
const (
	pinReady   = machine.GPIO25
	diagBaud   = 115200
	i2cHz      = 100 * machine.KHz
	listenAddr = ":80"
)

// readyPin latches falling edges of the READY line from the pin interrupt.
type readyPin struct {
	p    machine.Pin
	flag atomic.Bool
}

func (r *readyPin) Asserted() bool { return r.flag.Load() }
func (r *readyPin) Clear()         { r.flag.Store(false) }

func newReadyPin(p machine.Pin) (*readyPin, error) {
	r := &readyPin{p: p}
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	// ISR: a single atomic store, nothing that can block.
	if err := p.SetInterrupt(machine.PinFalling, func(machine.Pin) { r.flag.Store(true) }); err != nil {
		return nil, err
	}
	// The line may already be low when power-on initialisation finished
	// before the interrupt was armed.
	if !p.Get() {
		r.flag.Store(true)
	}
	return r, nil
}

// Open configures the board. The WiFi co-processor is probed here; joining
// or hosting happens later under the link supervisor.
func Open(ctx context.Context) (app.Board, error) {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: diagBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	log := diag.New(u).WithCRLF()

	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: i2cHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	}); err != nil {
		log.Log("board", "i2c configure failed:", err)
		return app.Board{Log: log}, err
	}

	ready, err := newReadyPin(pinReady)
	if err != nil {
		log.Log("board", "ready interrupt failed:", err)
		return app.Board{Log: log}, err
	}

	return app.Board{
		I2C:   bus,
		Ready: ready,
		Link:  newWiFi(log),
		Log:   log,
		Listen: func(ctx context.Context) (dispatch.Listener, error) {
			return netio.Listen(ctx, listenAddr, netio.Options{}, log)
		},
	}, nil
}
