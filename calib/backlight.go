package calib

import (
	"github.com/ledstream/core/filter"
	"github.com/ledstream/core/ledmap"
)

// backlightFilter implements the backlight floor: when enabled, it
// guarantees a minimum perceived luminance. In colored mode every
// channel is raised to at least the threshold; in non-colored mode the
// whole pixel is forced to a flat threshold gray whenever its midpoint
// brightness falls below the floor.
type backlightFilter struct {
	enabled   bool
	colored   bool
	threshold uint8
	next      filter.Filter
}

func newBacklightFilter(cal Calibration, next filter.Filter) *backlightFilter {
	return &backlightFilter{
		enabled:   cal.BacklightThreshold > 0,
		colored:   cal.BacklightColored,
		threshold: cal.BacklightThreshold,
		next:      next,
	}
}

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

func (f *backlightFilter) Write(frame []ledmap.ColorRGB) error {
	if !f.enabled {
		return f.next.Write(frame)
	}
	out := make([]ledmap.ColorRGB, len(frame))
	for i, c := range frame {
		if f.colored {
			out[i] = ledmap.ColorRGB{R: maxU8(c.R, f.threshold), G: maxU8(c.G, f.threshold), B: maxU8(c.B, f.threshold)}
			continue
		}
		min := c.R
		if c.G < min {
			min = c.G
		}
		if c.B < min {
			min = c.B
		}
		max := c.R
		if c.G > max {
			max = c.G
		}
		if c.B > max {
			max = c.B
		}
		if (int(min)+int(max))/2 < int(f.threshold) {
			out[i] = ledmap.ColorRGB{R: f.threshold, G: f.threshold, B: f.threshold}
		} else {
			out[i] = c
		}
	}
	return f.next.Write(out)
}

func (f *backlightFilter) Close() error { return f.next.Close() }
