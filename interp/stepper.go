package interp

import (
	"math"

	"github.com/ledstream/core/ledmap"
)

// stepBandLimits are the three /255 thresholds separating the four
// exponent bands.
var stepBandLimits = [3]float64{16.0 / 255, 32.0 / 255, 60.0 / 255}

// stepBandExponents are the per-band powers applied to k, largest
// remaining-distance band first.
var stepBandExponents = [4]float64{1, 0.9, 0.75, 0.6}

// stepper advances each channel by k^exponent(remaining), where k is
// the overall progress fraction and exponent is chosen from the
// channel's own remaining distance, so small deltas move gently
// (anti-flicker) while large deltas snap quickly.
type stepper struct {
	duration float64

	target   []ledmap.Float3
	current  []ledmap.Float3
	startMs  float64
	complete bool
}

func newStepper(cfg Config) *stepper {
	return &stepper{duration: cfg.TransitionDuration}
}

func (s *stepper) SetTransitionDuration(ms float64) { s.duration = ms }

func (s *stepper) SetTargetColors(targets []ledmap.Float3, nowMs float64) {
	s.current = resizeFloat3(s.current, len(targets))
	s.target = append([]ledmap.Float3(nil), targets...)
	s.startMs = nowMs
	s.complete = false
}

func exponentFor(remaining float64) float64 {
	r := math.Abs(remaining)
	switch {
	case r >= stepBandLimits[2]:
		return stepBandExponents[0]
	case r >= stepBandLimits[1]:
		return stepBandExponents[1]
	case r >= stepBandLimits[0]:
		return stepBandExponents[2]
	default:
		return stepBandExponents[3]
	}
}

func (s *stepper) UpdateCurrentColors(nowMs float64) {
	k := 1e-4
	if s.duration > 0 {
		remaining := s.duration - (nowMs - s.startMs)
		k = clamp01(1 - remaining/s.duration)
	}
	if k < 1e-4 {
		k = 1e-4
	}

	allDone := true
	for i := range s.target {
		cur, tgt := s.current[i], s.target[i]
		step := func(c, t float64) float64 {
			remaining := t - c
			if math.Abs(remaining) < 1e-6 {
				return t
			}
			exp := exponentFor(remaining)
			frac := math.Pow(k, exp)
			next := c + remaining*frac
			if frac >= 1 {
				return t
			}
			return next
		}
		s.current[i] = ledmap.Float3{R: step(cur.R, tgt.R), G: step(cur.G, tgt.G), B: step(cur.B, tgt.B)}
		if math.Abs(s.current[i].R-tgt.R) > 1e-3 || math.Abs(s.current[i].G-tgt.G) > 1e-3 || math.Abs(s.current[i].B-tgt.B) > 1e-3 {
			allDone = false
		}
	}
	s.complete = allDone || k >= 1
}

func (s *stepper) GetCurrentColors() []ledmap.Float3 { return clampColors(s.current) }

func (s *stepper) ResetToColors(colors []ledmap.Float3, nowMs float64) {
	s.current = append([]ledmap.Float3(nil), colors...)
	s.target = append([]ledmap.Float3(nil), colors...)
	s.startMs = nowMs
	s.complete = true
}

func (s *stepper) IsAnimationComplete() bool { return s.complete }
