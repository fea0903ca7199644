// Package spi implements the SPI/FTDI-MPSSE driver adapter: MPSSE
// clock-divisor computation and the CS-framed write protocol, carried
// over a periph.io/x/periph SPI
// port (periph's spireg registry is the Go-native stand-in for
// dynamically loading libftdi/ftd2xx at runtime — the port named by
// the caller is resolved to whichever backend registered it).
package spi

import (
	"fmt"
	"math"

	"periph.io/x/periph/conn/spi"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

// mpsseBaseClock is the FTDI MPSSE engine's base clock.
const mpsseBaseClock = 30_000_000

// defaultRate is applied when no rate is configured.
const defaultRate = 4_000_000

// csLowCmd / csHighCmd / mpsseWriteCmd are the MPSSE frame markers:
// chip-select-low command, the 0x11-prefixed size+payload write, and
// chip-select-high command.
const (
	csLowCmd     byte = 0x80
	csHighCmd    byte = 0x81
	mpsseWriteCmd byte = 0x11
)

// Divisor computes the MPSSE clock divisor for the requested rate:
// divisor = ceil((30MHz - rate) / rate).
func Divisor(rateHz int) int {
	if rateHz <= 0 || rateHz >= mpsseBaseClock {
		return 0
	}
	return int(math.Ceil(float64(mpsseBaseClock-rateHz) / float64(rateHz)))
}

// RealizedRate returns the actual clock rate the MPSSE engine produces
// for the given divisor: 30MHz / (1 + divisor).
func RealizedRate(divisor int) int {
	return mpsseBaseClock / (1 + divisor)
}

// BuildFrame constructs one MPSSE write frame: CS-low command,
// 0x11 + little-endian (size-1), payload, CS-high command.
func BuildFrame(payload []byte) []byte {
	n := len(payload) - 1
	frame := make([]byte, 0, 1+3+len(payload)+1)
	frame = append(frame, csLowCmd)
	frame = append(frame, mpsseWriteCmd, byte(n), byte(n>>8))
	frame = append(frame, payload...)
	frame = append(frame, csHighCmd)
	return frame
}

// Driver implements device.Driver over a periph.io SPI port configured
// for MPSSE-style framed writes.
type Driver struct {
	log  config.Logger
	port spi.Port
	conn spi.Conn
	rate int
}

// New returns a Driver that will Connect port at rateHz (0 uses
// defaultRate) once Open is called.
func New(port spi.Port, rateHz int, log config.Logger) *Driver {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	if rateHz <= 0 {
		rateHz = defaultRate
	}
	return &Driver{port: port, rate: rateHz, log: log}
}

func (d *Driver) Init(cfg config.Config) error { return nil }

func (d *Driver) Open() (device.Status, error) {
	divisor := Divisor(d.rate)
	realized := RealizedRate(divisor)
	conn, err := d.port.Connect(int64(realized), spi.Mode0, 8)
	if err != nil {
		return device.StatusError, err
	}
	d.conn = conn
	d.log.Debug("spi: opened MPSSE connection", "requestedHz", d.rate, "realizedHz", realized)
	return device.StatusOK, nil
}

func (d *Driver) Close() (device.Status, error) { return device.StatusOK, nil }

// Write sends one frame per call, formatted per BuildFrame.
func (d *Driver) Write(colors []ledmap.ColorRGB) (device.Status, error) {
	if d.conn == nil {
		return device.StatusError, fmt.Errorf("spi: not open")
	}
	payload := make([]byte, 3*len(colors))
	for i, c := range colors {
		payload[3*i] = c.R
		payload[3*i+1] = c.G
		payload[3*i+2] = c.B
	}
	frame := BuildFrame(payload)
	if err := d.conn.Tx(frame, nil); err != nil {
		return device.StatusError, err
	}
	return device.StatusOK, nil
}

func (d *Driver) PowerOn() error  { return nil }
func (d *Driver) PowerOff() error { return nil }

func (d *Driver) Discover(params map[string]string) ([]string, error) { return nil, nil }

func (d *Driver) GetProperties(params map[string]string) (device.Properties, error) {
	return device.Properties{"realizedRateHz": RealizedRate(Divisor(d.rate))}, nil
}

func (d *Driver) Identify(params map[string]string) error { return nil }
