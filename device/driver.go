// Package device declares the driver contract every LED output adapter
// implements: a small interface, a `New(logging.Logger)`-shaped
// constructor per adapter, and a `Config`-accepting `Init`.
package device

import (
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

// Status is the outcome of a driver operation.
type Status int

const (
	StatusOK Status = iota
	StatusError
)

// Properties is the adapter-specific document returned by
// GetProperties, opaque to the dispatcher (e.g. WLED's decoded
// handshake JSON, an FTDI device's realized clock rate).
type Properties map[string]interface{}

// Driver is the outward contract every device/* adapter implements
//: "init(cfg), open→status, close→status, write(values)→status,
// powerOn, powerOff, discover(params)→list, getProperties(params)→doc,
// identify(params)".
type Driver interface {
	// Init configures the driver from cfg; it does not open a
	// connection.
	Init(cfg config.Config) error

	// Open establishes the driver's connection (socket, serial port,
	// SPI bus) and performs any handshake.
	Open() (Status, error)

	// Close tears down the connection.
	Close() (Status, error)

	// Write delivers one frame of per-LED colors.
	Write(values []ledmap.ColorRGB) (Status, error)

	// PowerOn/PowerOff perform the driver's power-state side effect
	// (e.g. WLED's "live" flag, a REST lamp's turn_on/turn_off).
	PowerOn() error
	PowerOff() error

	// Discover returns candidate device addresses/ports matching
	// params (e.g. SSDP search, USB VID/PID scan).
	Discover(params map[string]string) ([]string, error)

	// GetProperties returns the adapter-specific properties document.
	GetProperties(params map[string]string) (Properties, error)

	// Identify triggers a visible identification action on the device
	// (e.g. a brief flash), where supported.
	Identify(params map[string]string) error
}
