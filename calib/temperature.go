package calib

import (
	"github.com/ledstream/core/filter"
	"github.com/ledstream/core/ledmap"
)

// temperatureFilter applies the classic pipeline's step 4: a scalar
// per-channel temperature correction.
type temperatureFilter struct {
	r, g, b float64
	next    filter.Filter
}

func newTemperatureFilter(cal Calibration, next filter.Filter) *temperatureFilter {
	r, g, b := cal.Temperature[0], cal.Temperature[1], cal.Temperature[2]
	if r == 0 && g == 0 && b == 0 {
		r, g, b = 1, 1, 1
	}
	return &temperatureFilter{r: r, g: g, b: b, next: next}
}

func (f *temperatureFilter) Write(frame []ledmap.ColorRGB) error {
	out := make([]ledmap.ColorRGB, len(frame))
	for i, c := range frame {
		out[i] = ledmap.ColorRGB{
			R: clampByte(float64(c.R) * f.r),
			G: clampByte(float64(c.G) * f.g),
			B: clampByte(float64(c.B) * f.b),
		}
	}
	return f.next.Write(out)
}

func (f *temperatureFilter) Close() error { return f.next.Close() }
