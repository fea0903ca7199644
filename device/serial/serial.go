// Package serial implements the serial/USB driver adapter: baud-rate UART framing over go.bug.st/serial, four-round
// VID/PID auto-discovery, and the optional ESP8266/ESP32/RP2040
// handshake at open and goodbye-line wait at close.
package serial

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

// openTimeout/closeGoodbyeWait are the connection timing constants;
// closeGoodbyeWait allows up to 600ms for the goodbye line on close.
// maxWriteTimeouts is the number of consecutive write errors tolerated
// before Write closes the port.
const (
	openTimeout      = 5 * time.Second
	closeGoodbyeWait = 600 * time.Millisecond
	maxWriteTimeouts = 5
)

// knownVIDPID is one (vendor, product) USB identifier pair.
type knownVIDPID struct {
	vid, pid string
}

// Auto-discovery rounds mirror the four-pass preference order: known
// ESP-A pairs, known ESP-B pairs, "plausible" non-Bluetooth/non-AMA0
// ports, then any remaining port.
var (
	knownESPA = []knownVIDPID{
		{"303a", "80c2"}, // ESP32-S2
		{"2e8a", "000a"}, // Raspberry Pi Pico
	}
	knownESPB = []knownVIDPID{
		{"303a", ""},     // any ESP32 variant
		{"10c4", "ea60"}, // CP210x (ESP8266 boards)
		{"1a86", "7523"}, // CH340
		{"1a86", "55d4"}, // CH9102
	}
)

// Driver implements device.Driver over a single serial port.
type Driver struct {
	log config.Logger

	portName     string
	autoSelect   bool
	baudRate     int
	espHandshake bool

	port             serial.Port
	frameDropCounter int
}

// New returns a Driver. portName "auto" (or "") triggers discovery at
// Open; baudRate defaults to 1,000,000 when zero, matching the default
// ProviderSerial uses for WS281x-class strips.
func New(portName string, baudRate int, espHandshake bool, log config.Logger) *Driver {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	if baudRate <= 0 {
		baudRate = 1_000_000
	}
	name := strings.TrimPrefix(portName, "/dev/")
	return &Driver{
		portName:     name,
		autoSelect:   name == "" || strings.EqualFold(name, "auto"),
		baudRate:     baudRate,
		espHandshake: espHandshake,
		log:          log,
	}
}

func (d *Driver) Init(cfg config.Config) error {
	if cfg.DriverAddress != "" {
		d.portName = strings.TrimPrefix(cfg.DriverAddress, "/dev/")
		d.autoSelect = strings.EqualFold(d.portName, "auto")
	}
	return nil
}

// Open resolves an auto port name if needed, then opens the UART.
func (d *Driver) Open() (device.Status, error) {
	if d.autoSelect {
		found, err := discoverFirst(d.espHandshake)
		if err != nil || found == "" {
			return device.StatusError, fmt.Errorf("serial: no serial device found automatically")
		}
		d.portName = found
	}

	mode := &serial.Mode{BaudRate: d.baudRate}
	port, err := serial.Open(d.portName, mode)
	if err != nil {
		return device.StatusError, err
	}
	d.port = port
	d.frameDropCounter = 0

	if d.espHandshake {
		if err := waitBootBanner(port); err != nil {
			d.log.Debug("serial: no boot banner observed, continuing anyway", "err", err)
		}
	}
	return device.StatusOK, nil
}

// Close flushes, sends the ESP "going to sleep" sequence if enabled,
// waits up to closeGoodbyeWait for a goodbye line, then closes.
func (d *Driver) Close() (device.Status, error) {
	if d.port == nil {
		return device.StatusOK, nil
	}
	if d.espHandshake {
		goingSleep(d.port)
		waitForGoodbye(d.port, closeGoodbyeWait)
	}
	err := d.port.Close()
	d.port = nil
	if err != nil {
		return device.StatusError, err
	}
	return device.StatusOK, nil
}

// Write sends raw RGB bytes. A write error is returned as is; once more
// than maxWriteTimeouts consecutive writes have failed the port is
// closed, so the dispatcher's retry path will reopen (and re-discover,
// if auto) on the next attempt.
func (d *Driver) Write(colors []ledmap.ColorRGB) (device.Status, error) {
	if d.port == nil {
		return device.StatusError, fmt.Errorf("serial: not open")
	}
	buf := make([]byte, 3*len(colors))
	for i, c := range colors {
		buf[3*i] = c.R
		buf[3*i+1] = c.G
		buf[3*i+2] = c.B
	}
	if _, err := d.port.Write(buf); err != nil {
		d.frameDropCounter++
		if d.frameDropCounter > maxWriteTimeouts {
			d.port.Close()
			d.port = nil
			return device.StatusError, fmt.Errorf("serial: too many write errors: %w", err)
		}
		return device.StatusError, err
	}
	d.frameDropCounter = 0
	return device.StatusOK, nil
}

// PowerOff writes three black frames, mirroring the write-black
// power-off convention shared with the dispatcher's own WriteBlack.
func (d *Driver) PowerOff() error {
	black := make([]ledmap.ColorRGB, 0)
	for i := 0; i < 3; i++ {
		if _, err := d.Write(black); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) PowerOn() error { return nil }

// Discover lists every available serial port with its USB descriptor.
func (d *Driver) Discover(params map[string]string) ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ports)+1)
	names = append(names, "auto")
	for _, p := range ports {
		names = append(names, p.Name)
	}
	return names, nil
}

func (d *Driver) GetProperties(params map[string]string) (device.Properties, error) {
	return device.Properties{"portName": d.portName, "baudRate": d.baudRate}, nil
}

func (d *Driver) Identify(params map[string]string) error { return nil }

// discoverFirst implements the four-round preference scan: known
// ESP-A pairs, then known ESP-B pairs, then (when espHandshake is off)
// any port that doesn't look like Bluetooth or the Pi's onboard UART,
// then any remaining port at all.
func discoverFirst(espHandshake bool) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}
	for round := 0; round < 4; round++ {
		for _, p := range ports {
			if !p.IsUSB && round < 3 {
				continue
			}
			vid := strings.ToLower(p.VID)
			pid := strings.ToLower(p.PID)
			matches := round == 3 ||
				(espHandshake && round == 0 && matchesAny(vid, pid, knownESPA)) ||
				(espHandshake && round == 1 && matchesAny(vid, pid, knownESPB)) ||
				(!espHandshake && round == 2 && plausiblePort(p.Name))
			if matches {
				return p.Name, nil
			}
		}
	}
	return "", nil
}

func matchesAny(vid, pid string, set []knownVIDPID) bool {
	for _, k := range set {
		if vid == k.vid && (k.pid == "" || pid == k.pid) {
			return true
		}
	}
	return false
}

func plausiblePort(name string) bool {
	lname := strings.ToLower(name)
	if strings.Contains(lname, "bluetooth") {
		return false
	}
	if strings.Contains(lname, "ttyama0") {
		return false
	}
	return true
}

// waitBootBanner and goingSleep/waitForGoodbye implement the ESP
// handshake rhythm from ProviderSerial's EspTools helper: a short
// settle wait at open, a "going to sleep" nudge plus goodbye-line wait
// at close.
func waitBootBanner(port serial.Port) error {
	port.SetReadTimeout(250 * time.Millisecond)
	buf := make([]byte, 256)
	_, err := port.Read(buf)
	return err
}

func goingSleep(port serial.Port) {
	port.Write([]byte("\r\n"))
}

func waitForGoodbye(port serial.Port, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	port.SetReadTimeout(100 * time.Millisecond)
	buf := make([]byte, 256)
	for time.Now().Before(deadline) {
		n, err := port.Read(buf)
		if err != nil {
			return
		}
		if n > 0 && strings.ContainsRune(string(buf[:n]), '\n') {
			return
		}
	}
}

// parseHexID is kept for callers that need to compare a VID/PID given
// as "0x303A" against the enumerator's bare-hex strings.
func parseHexID(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	return uint16(v), err
}
