package calib

import (
	"math"

	"github.com/ledstream/core/filter"
	"github.com/ledstream/core/ledmap"
)

// saturationLuminanceFilter applies the classic pipeline's step 1:
// convert to HSL, scale saturation and luminance by their configured
// gains (clipped to 1), never dropping luminance below
// LuminanceMinimum — below that threshold the pixel is desaturated
// instead.
type saturationLuminanceFilter struct {
	saturationGain, luminanceGain, luminanceMinimum float64
	next                                            filter.Filter
}

func newSaturationLuminanceFilter(cal Calibration, next filter.Filter) *saturationLuminanceFilter {
	return &saturationLuminanceFilter{
		saturationGain:   clampF(cal.SaturationGain, 0, 1),
		luminanceGain:    clampF(cal.LuminanceGain, 0, 1),
		luminanceMinimum: cal.LuminanceMinimum,
		next:             next,
	}
}

func rgbToHSL(c ledmap.ColorRGB) (h, s, l float64) {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2
	if max == min {
		return 0, 0, l
	}
	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	case b:
		h = (r-g)/d + 4
	}
	h *= 60
	return h, s, l
}

func hslToRGB(h, s, l float64) ledmap.ColorRGB {
	if s == 0 {
		v := clampByte(l * 255)
		return ledmap.ColorRGB{R: v, G: v, B: v}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h / 360
	hueToRGB := func(t float64) float64 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		switch {
		case t < 1.0/6:
			return p + (q-p)*6*t
		case t < 1.0/2:
			return q
		case t < 2.0/3:
			return p + (q-p)*(2.0/3-t)*6
		default:
			return p
		}
	}
	r := hueToRGB(hk + 1.0/3)
	g := hueToRGB(hk)
	b := hueToRGB(hk - 1.0/3)
	return ledmap.ColorRGB{R: clampByte(r * 255), G: clampByte(g * 255), B: clampByte(b * 255)}
}

func (f *saturationLuminanceFilter) Write(frame []ledmap.ColorRGB) error {
	out := make([]ledmap.ColorRGB, len(frame))
	for i, c := range frame {
		h, s, l := rgbToHSL(c)
		s *= f.saturationGain
		l *= f.luminanceGain
		if l < f.luminanceMinimum {
			s = 0
		}
		out[i] = hslToRGB(h, s, l)
	}
	return f.next.Write(out)
}

func (f *saturationLuminanceFilter) Close() error { return f.next.Close() }
