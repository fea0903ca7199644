package interp

import (
	"math"

	"github.com/ledstream/core/ledmap"
)

// positionTolerance and velocityTolerance are the spring family's
// termination thresholds.
const (
	positionTolerance = 1.4e-4
	velocityTolerance = 5e-4
)

const (
	defaultStiffness = 120.0
	defaultDamping   = 18.0
)

// spring is a critically-dampable second-order interpolator: each channel independently integrates
// accel = stiffness*(target-current) - damping*velocity.
type spring struct {
	stiffness, damping float64
	smoothing          float64

	target   []ledmap.Float3
	current  []ledmap.Float3
	velocity []ledmap.Float3
	lastMs   float64
	complete bool
}

func newSpring(cfg Config) *spring {
	s := &spring{stiffness: cfg.SpringStiffness, damping: cfg.SpringDamping, smoothing: cfg.SmoothingFactor}
	if s.stiffness <= 0 {
		s.stiffness = defaultStiffness
	}
	if s.damping <= 0 {
		s.damping = defaultDamping
	}
	return s
}

func (s *spring) SetTransitionDuration(ms float64) {} // spring's rate is stiffness/damping, not a fixed duration.

func (s *spring) SetTargetColors(targets []ledmap.Float3, nowMs float64) {
	if s.target != nil && s.smoothing > 0 && s.smoothing < 1 {
		blended := make([]ledmap.Float3, len(targets))
		for i, nt := range targets {
			var old ledmap.Float3
			if i < len(s.target) {
				old = s.target[i]
			}
			blended[i] = ledmap.Float3{
				R: s.smoothing*old.R + (1-s.smoothing)*nt.R,
				G: s.smoothing*old.G + (1-s.smoothing)*nt.G,
				B: s.smoothing*old.B + (1-s.smoothing)*nt.B,
			}
		}
		s.target = blended
	} else {
		s.target = append([]ledmap.Float3(nil), targets...)
	}
	s.current = resizeFloat3(s.current, len(s.target))
	s.velocity = resizeFloat3(s.velocity, len(s.target))
	s.lastMs = nowMs
	s.complete = false
}

func (s *spring) UpdateCurrentColors(nowMs float64) {
	dt := (nowMs - s.lastMs) / 1000
	s.lastMs = nowMs
	if dt <= 0 {
		return
	}

	maxPosErr, maxVel := 0.0, 0.0
	for i := range s.target {
		cur, vel, tgt := &s.current[i], &s.velocity[i], s.target[i]
		for _, axis := range []struct {
			c, v *float64
			t    float64
		}{
			{&cur.R, &vel.R, tgt.R},
			{&cur.G, &vel.G, tgt.G},
			{&cur.B, &vel.B, tgt.B},
		} {
			accel := s.stiffness*(axis.t-*axis.c) - s.damping*(*axis.v)
			*axis.v += accel * dt
			*axis.c += *axis.v * dt

			if d := math.Abs(axis.t - *axis.c); d > maxPosErr {
				maxPosErr = d
			}
			if d := math.Abs(*axis.v); d > maxVel {
				maxVel = d
			}
		}
	}
	s.complete = maxPosErr < positionTolerance && maxVel < velocityTolerance
}

func (s *spring) GetCurrentColors() []ledmap.Float3 { return clampColors(s.current) }

func (s *spring) ResetToColors(colors []ledmap.Float3, nowMs float64) {
	s.current = append([]ledmap.Float3(nil), colors...)
	s.target = append([]ledmap.Float3(nil), colors...)
	s.velocity = make([]ledmap.Float3, len(colors))
	s.lastMs = nowMs
	s.complete = true
}

func (s *spring) IsAnimationComplete() bool { return s.complete }
