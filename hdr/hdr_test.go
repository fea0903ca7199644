package hdr

import (
	"testing"
	"time"
)

func TestDetector8RequiresContinuousBreach(t *testing.T) {
	d := NewDetector8(Thresholds8{Y: 200}, 3, 3*time.Second)
	base := time.Unix(0, 0)

	if sig := d.Observe(Stats8{MaxY: 210}, base); sig != NoChange {
		t.Fatalf("first breach: got %v, want NoChange", sig)
	}
	if sig := d.Observe(Stats8{MaxY: 210}, base.Add(2*time.Second)); sig != NoChange {
		t.Fatalf("still arming: got %v, want NoChange", sig)
	}
	// A calm frame mid-arming resets the timer.
	if sig := d.Observe(Stats8{MaxY: 50}, base.Add(2500*time.Millisecond)); sig != NoChange {
		t.Fatalf("calm frame: got %v, want NoChange", sig)
	}
	if d.IsHDR() {
		t.Fatal("should still be SDR after reset")
	}
	// Re-arm; 3s later should now trip.
	if sig := d.Observe(Stats8{MaxY: 210}, base.Add(2600*time.Millisecond)); sig != NoChange {
		t.Fatalf("re-arm: got %v, want NoChange", sig)
	}
	if sig := d.Observe(Stats8{MaxY: 210}, base.Add(2600*time.Millisecond+3*time.Second)); sig != EnableToneMapping {
		t.Fatalf("after 3s continuous breach: got %v, want EnableToneMapping", sig)
	}
	if !d.IsHDR() {
		t.Fatal("expected HDR state")
	}
}

func TestDetector8EndsOnCalm(t *testing.T) {
	d := NewDetector8(Thresholds8{Y: 200}, 0, 100*time.Millisecond)
	base := time.Unix(0, 0)
	d.Observe(Stats8{MaxY: 210}, base) // immediate trip (OnDuration=0).
	if !d.IsHDR() {
		t.Fatal("expected HDR after immediate trip")
	}
	d.Observe(Stats8{MaxY: 10}, base.Add(10*time.Millisecond))
	sig := d.Observe(Stats8{MaxY: 10}, base.Add(110*time.Millisecond))
	if sig != DisableToneMapping {
		t.Fatalf("got %v, want DisableToneMapping", sig)
	}
}
