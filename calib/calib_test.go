package calib

import (
	"testing"

	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/ledmap"
)

// TestIdentityCalibrationRoundTrip verifies the identity calibration
// leaves a frame unchanged: gamma=1, saturation=1, luminance=1, backlight=0,
// brightness=100, compensation=100 and canonical primaries produce
// output equal to input.
func TestIdentityCalibrationRoundTrip(t *testing.T) {
	stage := Build(config.DefaultCalibration())

	in := []ledmap.ColorRGB{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 255, B: 255},
		{R: 123, G: 45, B: 200},
		{R: 10, G: 200, B: 50},
	}
	out := stage.Apply(in)

	for i, c := range in {
		got := out[i]
		if absDiff(got.R, c.R) > 1 || absDiff(got.G, c.G) > 1 || absDiff(got.B, c.B) > 1 {
			t.Errorf("pixel %d: got %+v, want %+v (±1)", i, got, c)
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestBacklightFloorColoredMode(t *testing.T) {
	cal := config.DefaultCalibration()
	cal.BacklightThreshold = 40
	cal.BacklightColored = true
	stage := Build(cal)

	out := stage.Apply([]ledmap.ColorRGB{{R: 10, G: 5, B: 0}})
	if out[0].R < 40 || out[0].G < 40 || out[0].B < 40 {
		t.Errorf("got %+v, want every channel >= 40", out[0])
	}
}

func TestBacklightFloorNonColoredMode(t *testing.T) {
	cal := config.DefaultCalibration()
	cal.BacklightThreshold = 40
	cal.BacklightColored = false
	stage := Build(cal)

	out := stage.Apply([]ledmap.ColorRGB{{R: 10, G: 5, B: 0}})
	if out[0] != (ledmap.ColorRGB{R: 40, G: 40, B: 40}) {
		t.Errorf("got %+v, want flat (40,40,40)", out[0])
	}
}
