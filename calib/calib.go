// Package calib implements the calibration stage (component C7): a
// chain of filter.Filter stages (saturation/luminance, gamma,
// primaries, temperature, backlight floor) applied to each frame of
// per-LED color before it reaches the device dispatcher.
package calib

import (
	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/filter"
	"github.com/ledstream/core/ledmap"
)

// Calibration is the per-instance calibration configuration; it is exactly the settings-channel document
// shape, so a calib.Stage can be rebuilt directly from the engine's
// live Config.Calibration on every settings update.
type Calibration = config.CalibrationConfig

// Stage is a built calibration chain. Apply runs a frame through every
// stage in order and returns the calibrated result.
type Stage struct {
	head filter.Filter
	sink *filter.Sink
}

// Build constructs the calibration chain
// SaturationLuminance -> Gamma -> Primaries -> Temperature -> Backlight
// from cal, in that fixed order.
func Build(cal Calibration) *Stage {
	sink := filter.NewSink()

	var chain filter.Filter = sink
	chain = newBacklightFilter(cal, chain)
	chain = newTemperatureFilter(cal, chain)
	chain = newPrimariesFilter(cal, chain)
	chain = newGammaFilter(cal, chain)
	chain = newSaturationLuminanceFilter(cal, chain)

	return &Stage{head: chain, sink: sink}
}

// Apply runs colors through the calibration chain and returns the
// calibrated frame. The engine calls it on each frame before handing
// the result to the dispatcher.
func (s *Stage) Apply(colors []ledmap.ColorRGB) []ledmap.ColorRGB {
	if err := s.head.Write(colors); err != nil {
		return colors
	}
	return s.sink.Last
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
