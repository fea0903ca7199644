package calib

import (
	"math"

	"github.com/ledstream/core/filter"
	"github.com/ledstream/core/ledmap"
)

// gammaFilter applies the classic pipeline's step 2: per-channel gamma
// via 256-entry LUTs, r' = mappingR[r] where
// mappingR[i] = clamp((i/255)^gammaR * 255, 0, 255).
type gammaFilter struct {
	lutR, lutG, lutB [256]uint8
	next             filter.Filter
}

func buildGammaLUT(gamma float64) [256]uint8 {
	var lut [256]uint8
	for i := 0; i < 256; i++ {
		v := math.Pow(float64(i)/255, gamma) * 255
		lut[i] = clampByte(v)
	}
	return lut
}

func newGammaFilter(cal Calibration, next filter.Filter) *gammaFilter {
	g := cal.GammaR
	if g == 0 {
		g = 1
	}
	gg := cal.GammaG
	if gg == 0 {
		gg = 1
	}
	gb := cal.GammaB
	if gb == 0 {
		gb = 1
	}
	return &gammaFilter{lutR: buildGammaLUT(g), lutG: buildGammaLUT(gg), lutB: buildGammaLUT(gb), next: next}
}

func (f *gammaFilter) Write(frame []ledmap.ColorRGB) error {
	out := make([]ledmap.ColorRGB, len(frame))
	for i, c := range frame {
		out[i] = ledmap.ColorRGB{R: f.lutR[c.R], G: f.lutG[c.G], B: f.lutB[c.B]}
	}
	return f.next.Write(out)
}

func (f *gammaFilter) Close() error { return f.next.Close() }
