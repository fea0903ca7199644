package interp

import "github.com/ledstream/core/ledmap"

// hybrid runs the spring family on luminance and the linear family on
// chroma: luminance follows the spring's second-order response (which
// overshoots when the damping is below critical) while hue/saturation
// move at constant apparent speed.
type hybrid struct {
	lum    *spring
	chroma *linear
}

func newHybrid(cfg Config) *hybrid {
	return &hybrid{lum: newSpring(cfg), chroma: newLinear(cfg)}
}

func luminanceOf(c ledmap.Float3) float64 { return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B }

func (h *hybrid) SetTransitionDuration(ms float64) { h.chroma.SetTransitionDuration(ms) }

func (h *hybrid) SetTargetColors(targets []ledmap.Float3, nowMs float64) {
	lumTargets := make([]ledmap.Float3, len(targets))
	for i, c := range targets {
		l := luminanceOf(c)
		lumTargets[i] = ledmap.Float3{R: l, G: l, B: l}
	}
	h.lum.SetTargetColors(lumTargets, nowMs)
	h.chroma.SetTargetColors(targets, nowMs)
}

func (h *hybrid) UpdateCurrentColors(nowMs float64) {
	h.lum.UpdateCurrentColors(nowMs)
	h.chroma.UpdateCurrentColors(nowMs)
}

func (h *hybrid) GetCurrentColors() []ledmap.Float3 {
	lum := h.lum.GetCurrentColors()
	chroma := h.chroma.GetCurrentColors()
	out := make([]ledmap.Float3, len(chroma))
	for i, c := range chroma {
		chromaLum := luminanceOf(c)
		var targetLum float64
		if i < len(lum) {
			targetLum = lum[i].R // lum channels are equal by construction.
		}
		if chromaLum < 1e-6 {
			out[i] = ledmap.Float3{R: targetLum, G: targetLum, B: targetLum}
			continue
		}
		scale := targetLum / chromaLum
		out[i] = ledmap.Float3{R: c.R * scale, G: c.G * scale, B: c.B * scale}
	}
	return clampColors(out)
}

func (h *hybrid) ResetToColors(colors []ledmap.Float3, nowMs float64) {
	lumColors := make([]ledmap.Float3, len(colors))
	for i, c := range colors {
		l := luminanceOf(c)
		lumColors[i] = ledmap.Float3{R: l, G: l, B: l}
	}
	h.lum.ResetToColors(lumColors, nowMs)
	h.chroma.ResetToColors(colors, nowMs)
}

func (h *hybrid) IsAnimationComplete() bool {
	return h.lum.IsAnimationComplete() && h.chroma.IsAnimationComplete()
}
