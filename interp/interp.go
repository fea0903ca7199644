// Package interp implements the interpolator (component C6): it
// animates the output color vector toward the visible source's target
// vector, using one of five interchangeable families.
package interp

import (
	"math"

	"github.com/ledstream/core/ledmap"
)

// Interpolator is the contract every family implements.
type Interpolator interface {
	SetTransitionDuration(ms float64)
	SetTargetColors(targets []ledmap.Float3, nowMs float64)
	UpdateCurrentColors(nowMs float64)
	GetCurrentColors() []ledmap.Float3
	ResetToColors(colors []ledmap.Float3, nowMs float64)
	IsAnimationComplete() bool
}

// Family selects which interpolator implementation New constructs.
type Family int

const (
	FamilyLinear Family = iota
	FamilySpring
	FamilyHybrid
	FamilyStepper
	FamilyYUVLimited
)

// Config is the per-instance smoothing configuration: the family, its
// transition duration and the per-family tuning values.
type Config struct {
	Family             Family
	TransitionDuration float64 // ms.
	SmoothingFactor    float64 // ∈ [0,1].

	// SpringStiffness/SpringDamping are only consulted by FamilySpring
	// and the luminance channel of FamilyHybrid.
	SpringStiffness float64
	SpringDamping   float64

	// YUVDeltaYCap is only consulted by FamilyYUVLimited; 0 uses the
	// default of 0.02.
	YUVDeltaYCap float64
}

// New builds the Interpolator named by cfg.Family.
func New(cfg Config) Interpolator {
	switch cfg.Family {
	case FamilySpring:
		return newSpring(cfg)
	case FamilyStepper:
		return newStepper(cfg)
	case FamilyYUVLimited:
		return newYUVLimited(cfg)
	case FamilyHybrid:
		return newHybrid(cfg)
	default:
		return newLinear(cfg)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampColors(colors []ledmap.Float3) []ledmap.Float3 {
	out := make([]ledmap.Float3, len(colors))
	for i, c := range colors {
		out[i] = ledmap.Float3{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
	}
	return out
}

func maxAbsDiff(a, b []ledmap.Float3) float64 {
	max := 0.0
	for i := range a {
		if i >= len(b) {
			break
		}
		for _, d := range []float64{
			math.Abs(a[i].R - b[i].R),
			math.Abs(a[i].G - b[i].G),
			math.Abs(a[i].B - b[i].B),
		} {
			if d > max {
				max = d
			}
		}
	}
	return max
}

func resizeFloat3(s []ledmap.Float3, n int) []ledmap.Float3 {
	if len(s) == n {
		return s
	}
	out := make([]ledmap.Float3, n)
	copy(out, s)
	return out
}
