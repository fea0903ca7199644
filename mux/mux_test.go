package mux

import (
	"testing"

	"github.com/ledstream/core/ledmap"
)

// TestMuxerPriorityScenario mirrors the worked example: register p=100
// red with a 1000ms timeout at t=0, register p=50 green with a 500ms
// timeout at t=100. Visible at t=200 is green (lower priority wins);
// at t=700 green has expired so red is visible; at t=1500 both have
// expired so the black sentinel is visible.
func TestMuxerPriorityScenario(t *testing.T) {
	m := New()
	red := ledmap.ColorRGB{R: 255}
	green := ledmap.ColorRGB{G: 255}

	m.Register(100, "color", "test", 0, "owner-a")
	m.SetInput(100, 1000, red, 0)

	m.Register(50, "color", "test", 0, "owner-b")
	m.SetInput(50, 100+500, green, 100)

	m.Evaluate(200)
	if c, p := m.Visible(); c != green || p != 50 {
		t.Fatalf("t=200: got color=%+v priority=%d, want green/50", c, p)
	}

	m.Evaluate(700)
	if c, p := m.Visible(); c != red || p != 100 {
		t.Fatalf("t=700: got color=%+v priority=%d, want red/100", c, p)
	}

	m.Evaluate(1500)
	if c, p := m.Visible(); c != ledmap.Black || p != SentinelPriority {
		t.Fatalf("t=1500: got color=%+v priority=%d, want black/255", c, p)
	}
}

func TestMuxerRegisterSetClearRoundTrip(t *testing.T) {
	m := New()
	before := len(m.inputs)

	m.Register(10, "color", "o", 0, "owner")
	m.SetInput(10, 1000, ledmap.ColorRGB{R: 9}, 0)
	m.ClearInput(10, 0)

	if len(m.inputs) != before {
		t.Fatalf("got %d inputs after round-trip, want %d", len(m.inputs), before)
	}
	if _, p := m.Visible(); p != SentinelPriority {
		t.Fatalf("got priority %d after round-trip, want sentinel", p)
	}
}

func TestMuxerClearAllPreservesVideo(t *testing.T) {
	m := New()
	m.Register(5, "video", "cam", 0, "owner")
	m.SetInput(5, 0, ledmap.ColorRGB{B: 7}, 0) // sticky.
	m.Register(20, "color", "o", 0, "owner")
	m.SetInput(20, 1000, ledmap.ColorRGB{R: 1}, 0)

	m.ClearAll(false, 0)
	if _, ok := m.inputs[5]; !ok {
		t.Fatal("video input should survive a non-forced clearAll")
	}
	if _, ok := m.inputs[20]; ok {
		t.Fatal("color input should not survive a non-forced clearAll")
	}

	m.ClearAll(true, 0)
	if _, ok := m.inputs[5]; ok {
		t.Fatal("forced clearAll should drop the video input too")
	}
}

func TestSentinelAlwaysValid(t *testing.T) {
	m := New()
	if _, p := m.Visible(); p != SentinelPriority {
		t.Fatalf("new Muxer visible priority = %d, want sentinel", p)
	}
}
