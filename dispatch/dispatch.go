// Package dispatch implements the device dispatcher (component C8):
// the side-effectful boundary that opens/closes a device.Driver,
// enforces the refresh cadence, delivers frames, and recovers from
// transient write errors.
package dispatch

import (
	"sync"
	"time"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

// State is one of the dispatcher's four states.
type State int

const (
	StateOff State = iota
	StateReady
	StateOn
	StateError
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateReady:
		return "READY"
	case StateOn:
		return "ON"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Report is the frame-accounting performance report published once
// per 60s, mirroring revid.Revid.Bitrate's
// role as a read-side accessor for a background counter.
type Report struct {
	In, Written, Dropped uint64
}

const (
	minCooldown = 1500 * time.Millisecond
	maxCooldown = 5000 * time.Millisecond
)

// Dispatcher owns one device.Driver and the LED strip's last-written
// state.
type Dispatcher struct {
	log    config.Logger
	driver device.Driver
	cfg    config.Config

	mu       sync.Mutex
	state    State
	inError  bool
	retries  int
	maxRetry int

	ledCount      int
	lastLedValues []ledmap.ColorRGB
	pendingValues []ledmap.ColorRGB
	pendingUpdate bool

	refreshPeriod time.Duration
	refreshStop   chan struct{}
	refreshDone   chan struct{}

	reportCh chan Report
	counters struct {
		in, written, dropped uint64
	}
	reportStop chan struct{}
	reportDone chan struct{}
}

// New returns a Dispatcher in state OFF, owning driver and dispatching
// ledCount LEDs per frame.
func New(driver device.Driver, ledCount int, cfg config.Config) *Dispatcher {
	log := cfg.Logger
	if log == nil {
		log = config.NewDiscardLogger()
	}
	return &Dispatcher{
		log:           log,
		driver:        driver,
		cfg:           cfg,
		state:         StateOff,
		maxRetry:      cfg.MaxRetry,
		ledCount:      ledCount,
		lastLedValues: make([]ledmap.ColorRGB, ledCount),
		refreshPeriod: cfg.RefreshPeriod,
		reportCh:      make(chan Report, 1),
	}
}

// Reports returns the channel a 60s-cadence Report is published on.
func (d *Dispatcher) Reports() <-chan Report { return d.reportCh }

// State returns the dispatcher's current state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Init transitions OFF → READY by initializing and opening the driver.
func (d *Dispatcher) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateOff {
		return nil
	}
	if err := d.driver.Init(d.cfg); err != nil {
		d.log.Error("dispatch: driver init failed", "err", err)
		return err
	}
	if _, err := d.driver.Open(); err != nil {
		d.log.Error("dispatch: driver open failed", "err", err)
		return err
	}
	d.state = StateReady
	d.startBackgroundLoops()
	return nil
}

func (d *Dispatcher) startBackgroundLoops() {
	if d.reportStop == nil {
		d.reportStop = make(chan struct{})
		d.reportDone = make(chan struct{})
		go d.reportLoop()
	}
}

// Enable transitions READY → ON, powering the driver on.
func (d *Dispatcher) Enable() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateReady {
		return nil
	}
	if err := d.driver.PowerOn(); err != nil {
		return d.enterErrorLocked(err)
	}
	d.state = StateOn
	if d.refreshPeriod > 0 {
		d.refreshStop = make(chan struct{})
		d.refreshDone = make(chan struct{})
		go d.refreshLoop()
	}
	return nil
}

// Disable transitions ON → READY, writing ledCount black frames first
// (switchOff).
func (d *Dispatcher) Disable() error {
	d.mu.Lock()
	on := d.state == StateOn
	d.mu.Unlock()
	if !on {
		return nil
	}
	d.writeBlack(d.ledCount)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.refreshStop != nil {
		close(d.refreshStop)
		<-d.refreshDone
		d.refreshStop = nil
	}
	if err := d.driver.PowerOff(); err != nil {
		return d.enterErrorLocked(err)
	}
	d.state = StateReady
	return nil
}

// UpdateLeds copies values under the dispatcher's lock. With the refresh
// timer enabled it returns without I/O and the refresh loop writes the
// values; with the refresh timer disabled it performs the write
// immediately on the caller's goroutine, so the caller blocks until the
// driver's Write returns.
func (d *Dispatcher) UpdateLeds(values []ledmap.ColorRGB) int {
	d.mu.Lock()
	d.counters.in++
	if d.state != StateOn {
		d.counters.dropped++
		d.mu.Unlock()
		return -1
	}
	if d.inError {
		d.counters.dropped++
		d.mu.Unlock()
		return -1
	}
	d.pendingValues = append([]ledmap.ColorRGB(nil), values...)
	d.pendingUpdate = true
	immediate := d.refreshPeriod == 0
	d.mu.Unlock()

	if immediate {
		d.flushPending()
	}
	return 0
}

func (d *Dispatcher) flushPending() {
	d.mu.Lock()
	if !d.pendingUpdate {
		d.mu.Unlock()
		return
	}
	values := d.pendingValues
	d.pendingUpdate = false
	d.mu.Unlock()

	d.write(values)
}

// write performs one driver write, handling the recoverable-error
// transition to ERROR. It acquires d.mu itself; callers must not hold
// it.
func (d *Dispatcher) write(values []ledmap.ColorRGB) {
	status, err := d.driver.Write(values)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil || status != device.StatusOK {
		d.counters.dropped++
		d.enterErrorLocked(err)
		return
	}
	d.counters.written++
	d.lastLedValues = values
}

func (d *Dispatcher) enterErrorLocked(err error) error {
	if err != nil {
		d.log.Error("dispatch: driver error, entering ERROR state", "err", err)
	}
	d.inError = true
	d.state = StateError
	go d.retryLoop()
	return err
}

// retryLoop waits a cooldown within [minCooldown, maxCooldown] scaled
// by the retry count, then clears inError and re-runs init+open, up to
// maxRetry attempts.
func (d *Dispatcher) retryLoop() {
	d.mu.Lock()
	d.retries++
	retries := d.retries
	d.mu.Unlock()

	if retries > d.maxRetry {
		d.mu.Lock()
		d.state = StateOff
		d.mu.Unlock()
		d.log.Error("dispatch: exceeded max retries, giving up permanently")
		return
	}

	cooldown := minCooldown + time.Duration(retries)*500*time.Millisecond
	if cooldown > maxCooldown {
		cooldown = maxCooldown
	}
	time.Sleep(cooldown)

	d.mu.Lock()
	d.inError = false
	d.state = StateOff
	d.mu.Unlock()

	if err := d.Init(); err != nil {
		return
	}
	d.mu.Lock()
	d.retries = 0
	d.mu.Unlock()
}

// writeBlack writes n all-zero frames back to back, with no delay
// between them. It acquires d.mu itself; callers must not hold it.
func (d *Dispatcher) writeBlack(n int) {
	black := make([]ledmap.ColorRGB, n)
	for i := 0; i < n; i++ {
		status, err := d.driver.Write(black)
		d.mu.Lock()
		if err == nil && status == device.StatusOK {
			d.counters.written++
		} else {
			d.counters.dropped++
		}
		d.mu.Unlock()
	}
	d.mu.Lock()
	d.lastLedValues = black
	d.mu.Unlock()
}

// WriteBlack is the exported entry point for writeBlack(N).
func (d *Dispatcher) WriteBlack(n int) {
	d.writeBlack(n)
}

// LastLedValues returns the most recently committed frame.
func (d *Dispatcher) LastLedValues() []ledmap.ColorRGB {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastLedValues
}

func (d *Dispatcher) refreshLoop() {
	defer close(d.refreshDone)
	ticker := time.NewTicker(d.refreshPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-d.refreshStop:
			return
		case <-ticker.C:
			d.mu.Lock()
			values := d.lastLedValues
			if d.pendingUpdate {
				values = d.pendingValues
				d.pendingUpdate = false
			}
			d.mu.Unlock()
			d.write(values)
		}
	}
}

func (d *Dispatcher) reportLoop() {
	defer close(d.reportDone)
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-d.reportStop:
			return
		case <-ticker.C:
			d.mu.Lock()
			r := Report{In: d.counters.in, Written: d.counters.written, Dropped: d.counters.dropped}
			d.mu.Unlock()
			select {
			case d.reportCh <- r:
			default:
			}
		}
	}
}

// Stop tears down background loops; intended to be called once the
// dispatcher is no longer needed, after Disable.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	reportStop := d.reportStop
	d.reportStop = nil
	d.mu.Unlock()
	if reportStop != nil {
		close(reportStop)
		<-d.reportDone
	}
}
