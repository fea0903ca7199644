package interp

import (
	"math"

	"github.com/ledstream/core/ledmap"
)

// defaultDeltaYCap is the YUV-limited family's default per-step cap on Y.
const defaultDeltaYCap = 0.02

type yuv struct {
	y, u, v float64
}

func rgbToYUV709(c ledmap.Float3) yuv {
	y := 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
	u := (c.B - y) / 1.8556
	v := (c.R - y) / 1.5748
	return yuv{y: y, u: u, v: v}
}

func yuvToRGB709(y yuv) ledmap.Float3 {
	r := y.y + 1.5748*y.v
	b := y.y + 1.8556*y.u
	g := (y.y - 0.2126*r - 0.0722*b) / 0.7152
	return ledmap.Float3{R: r, G: g, B: b}
}

// yuvLimited converts targets to BT.709 YUV and interpolates there,
// capping the per-step luma delta so large brightness jumps don't
// produce a visible flash; memoizes the RGB conversion on read.
type yuvLimited struct {
	deltaYCap float64

	target   []yuv
	current  []yuv
	complete bool

	dirty   bool
	memoRGB []ledmap.Float3
}

func newYUVLimited(cfg Config) *yuvLimited {
	cap := cfg.YUVDeltaYCap
	if cap <= 0 {
		cap = defaultDeltaYCap
	}
	return &yuvLimited{deltaYCap: cap}
}

func (y *yuvLimited) SetTransitionDuration(ms float64) {} // rate is governed by the per-step Y cap, not a duration.

func (y *yuvLimited) SetTargetColors(targets []ledmap.Float3, nowMs float64) {
	newTarget := make([]yuv, len(targets))
	for i, c := range targets {
		newTarget[i] = rgbToYUV709(c)
	}
	if y.current == nil {
		y.current = append([]yuv(nil), newTarget...)
	} else {
		y.current = resizeYUV(y.current, len(newTarget))
	}
	y.target = newTarget
	y.complete = false
	y.dirty = true
}

func resizeYUV(s []yuv, n int) []yuv {
	if len(s) == n {
		return s
	}
	out := make([]yuv, n)
	copy(out, s)
	return out
}

func (y *yuvLimited) UpdateCurrentColors(nowMs float64) {
	allDone := true
	for i := range y.target {
		cur, tgt := y.current[i], y.target[i]
		dy := tgt.y - cur.y
		if math.Abs(dy) > y.deltaYCap {
			if dy > 0 {
				dy = y.deltaYCap
			} else {
				dy = -y.deltaYCap
			}
			allDone = false
		}
		cur.y += dy
		cur.u = tgt.u
		cur.v = tgt.v
		y.current[i] = cur
	}
	y.complete = allDone
	y.dirty = true
}

func (y *yuvLimited) GetCurrentColors() []ledmap.Float3 {
	if !y.dirty && y.memoRGB != nil {
		return y.memoRGB
	}
	out := make([]ledmap.Float3, len(y.current))
	for i, c := range y.current {
		out[i] = yuvToRGB709(c)
	}
	out = clampColors(out)
	y.memoRGB = out
	y.dirty = false
	return out
}

func (y *yuvLimited) ResetToColors(colors []ledmap.Float3, nowMs float64) {
	y.current = make([]yuv, len(colors))
	y.target = make([]yuv, len(colors))
	for i, c := range colors {
		v := rgbToYUV709(c)
		y.current[i] = v
		y.target[i] = v
	}
	y.complete = true
	y.dirty = true
}

func (y *yuvLimited) IsAnimationComplete() bool { return y.complete }
