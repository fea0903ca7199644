package dispatch

import (
	"testing"
	"time"

	"github.com/ledstream/core/device"
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

type fakeDriver struct {
	writes [][]ledmap.ColorRGB
	failOn int // if > 0, the n-th Write call fails.
	calls  int
}

func (f *fakeDriver) Init(cfg config.Config) error { return nil }
func (f *fakeDriver) Open() (device.Status, error) { return device.StatusOK, nil }
func (f *fakeDriver) Close() (device.Status, error) { return device.StatusOK, nil }

func (f *fakeDriver) Write(values []ledmap.ColorRGB) (device.Status, error) {
	f.calls++
	f.writes = append(f.writes, append([]ledmap.ColorRGB(nil), values...))
	if f.failOn > 0 && f.calls == f.failOn {
		return device.StatusError, errFake
	}
	return device.StatusOK, nil
}

func (f *fakeDriver) PowerOn() error  { return nil }
func (f *fakeDriver) PowerOff() error { return nil }
func (f *fakeDriver) Discover(params map[string]string) ([]string, error) { return nil, nil }
func (f *fakeDriver) GetProperties(params map[string]string) (device.Properties, error) {
	return nil, nil
}
func (f *fakeDriver) Identify(params map[string]string) error { return nil }

var errFake = fakeErr("fake driver write failure")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestWriteBlackInvariant(t *testing.T) {
	drv := &fakeDriver{}
	cfg := config.New(nil)
	d := New(drv, 5, cfg)

	d.WriteBlack(3)

	if len(drv.writes) != 3 {
		t.Fatalf("got %d writes, want 3", len(drv.writes))
	}
	for i, w := range drv.writes {
		for _, c := range w {
			if c != ledmap.Black {
				t.Fatalf("write %d: got non-black color %+v", i, c)
			}
		}
	}
	for _, c := range d.LastLedValues() {
		if c != ledmap.Black {
			t.Fatalf("lastLedValues contains non-black color %+v", c)
		}
	}
}

func TestUpdateLedsImmediateWhenRefreshDisabled(t *testing.T) {
	drv := &fakeDriver{}
	cfg := config.New(nil)
	cfg.RefreshPeriod = 0
	d := New(drv, 3, cfg)

	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()
	if err := d.Enable(); err != nil {
		t.Fatal(err)
	}

	colors := []ledmap.ColorRGB{{R: 1}, {G: 2}, {B: 3}}
	if status := d.UpdateLeds(colors); status != 0 {
		t.Fatalf("got status %d, want 0", status)
	}

	time.Sleep(20 * time.Millisecond)
	last := d.LastLedValues()
	if len(last) != 3 || last[0] != colors[0] {
		t.Fatalf("got %+v, want %+v written through immediately", last, colors)
	}
}

func TestUpdateLedsRejectedWhenNotOn(t *testing.T) {
	drv := &fakeDriver{}
	d := New(drv, 3, config.New(nil))
	if status := d.UpdateLeds([]ledmap.ColorRGB{{R: 1}}); status != -1 {
		t.Fatalf("got status %d, want -1 (dispatcher not ON)", status)
	}
}
