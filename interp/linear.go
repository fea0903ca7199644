package interp

import (
	"math"

	"github.com/ledstream/core/ledmap"
)

// linear is the default interpolator family: the
// transition duration is scaled by sqrt(distanceChange/lastDistance)
// on each retarget so the apparent speed of motion stays continuous,
// and an optional per-frame smoothing factor blends the raw linear
// position toward the ideal one.
type linear struct {
	duration  float64 // ms.
	smoothing float64

	start       []ledmap.Float3
	target      []ledmap.Float3
	current     []ledmap.Float3
	startMs     float64
	lastDist    float64
	complete    bool
}

func newLinear(cfg Config) *linear {
	return &linear{duration: cfg.TransitionDuration, smoothing: cfg.SmoothingFactor}
}

func (l *linear) SetTransitionDuration(ms float64) { l.duration = ms }

func (l *linear) SetTargetColors(targets []ledmap.Float3, nowMs float64) {
	cur := l.current
	if cur == nil {
		cur = resizeFloat3(nil, len(targets))
	}
	dist := maxAbsDiff(cur, targets)
	if l.lastDist > 0 {
		scale := math.Sqrt(dist / l.lastDist)
		if scale > 0 && !math.IsInf(scale, 0) && !math.IsNaN(scale) {
			l.duration *= scale
		}
	}
	l.lastDist = dist

	l.start = append([]ledmap.Float3(nil), cur...)
	l.target = append([]ledmap.Float3(nil), targets...)
	l.current = cur
	l.startMs = nowMs
	l.complete = dist == 0
}

func (l *linear) UpdateCurrentColors(nowMs float64) {
	if l.complete || l.duration <= 0 {
		l.current = append([]ledmap.Float3(nil), l.target...)
		l.complete = true
		return
	}
	t := clamp01((nowMs - l.startMs) / l.duration)

	blend := 1.0
	if l.smoothing > 0 && l.smoothing < 1 {
		blend = l.smoothing + (1-l.smoothing)*t
	}

	out := make([]ledmap.Float3, len(l.target))
	for i := range l.target {
		var s ledmap.Float3
		if i < len(l.start) {
			s = l.start[i]
		}
		ideal := ledmap.Float3{
			R: s.R + (l.target[i].R-s.R)*t,
			G: s.G + (l.target[i].G-s.G)*t,
			B: s.B + (l.target[i].B-s.B)*t,
		}
		var cur ledmap.Float3
		if i < len(l.current) {
			cur = l.current[i]
		}
		out[i] = ledmap.Float3{
			R: cur.R + (ideal.R-cur.R)*blend,
			G: cur.G + (ideal.G-cur.G)*blend,
			B: cur.B + (ideal.B-cur.B)*blend,
		}
	}
	l.current = out
	l.complete = t >= 1
}

func (l *linear) GetCurrentColors() []ledmap.Float3 { return clampColors(l.current) }

func (l *linear) ResetToColors(colors []ledmap.Float3, nowMs float64) {
	l.current = append([]ledmap.Float3(nil), colors...)
	l.target = append([]ledmap.Float3(nil), colors...)
	l.start = append([]ledmap.Float3(nil), colors...)
	l.startMs = nowMs
	l.lastDist = 0
	l.complete = true
}

func (l *linear) IsAnimationComplete() bool { return l.complete }
