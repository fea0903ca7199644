package interp

import (
	"math"
	"testing"

	"github.com/ledstream/core/ledmap"
)

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// TestLinearInterpolatorScenario mirrors the worked example: duration
// 100ms, target (0,0,0) -> (1,1,1) at t=0; at t=50 current is ~0.5, at
// t=100 current is 1.0 and the animation reports complete.
func TestLinearInterpolatorScenario(t *testing.T) {
	li := New(Config{Family: FamilyLinear, TransitionDuration: 100})
	li.ResetToColors([]ledmap.Float3{{0, 0, 0}}, 0)
	li.SetTargetColors([]ledmap.Float3{{1, 1, 1}}, 0)

	li.UpdateCurrentColors(50)
	cur := li.GetCurrentColors()
	if !approx(cur[0].R, 0.5, 1e-3) || !approx(cur[0].G, 0.5, 1e-3) || !approx(cur[0].B, 0.5, 1e-3) {
		t.Fatalf("t=50: got %+v, want ~(0.5,0.5,0.5)", cur[0])
	}

	li.UpdateCurrentColors(100)
	cur = li.GetCurrentColors()
	if !approx(cur[0].R, 1, 1e-3) || !approx(cur[0].G, 1, 1e-3) || !approx(cur[0].B, 1, 1e-3) {
		t.Fatalf("t=100: got %+v, want (1,1,1)", cur[0])
	}
	if !li.IsAnimationComplete() {
		t.Fatal("expected IsAnimationComplete at t=100")
	}
}

func testResetRoundTrip(t *testing.T, name string, mk func() Interpolator) {
	t.Run(name, func(t *testing.T) {
		in := mk()
		colors := []ledmap.Float3{{0.3, 0.6, 0.9}, {1, 0, 0.5}}
		in.ResetToColors(colors, 1000)

		got := in.GetCurrentColors()
		for i, c := range colors {
			if !approx(got[i].R, c.R, 1e-9) || !approx(got[i].G, c.G, 1e-9) || !approx(got[i].B, c.B, 1e-9) {
				t.Fatalf("resetToColors round-trip: got %+v, want %+v", got[i], c)
			}
		}
		if !in.IsAnimationComplete() {
			t.Fatal("expected IsAnimationComplete immediately after resetToColors")
		}
	})
}

func TestResetToColorsRoundTrip(t *testing.T) {
	testResetRoundTrip(t, "linear", func() Interpolator { return New(Config{Family: FamilyLinear, TransitionDuration: 100}) })
	testResetRoundTrip(t, "spring", func() Interpolator { return New(Config{Family: FamilySpring}) })
	testResetRoundTrip(t, "stepper", func() Interpolator { return New(Config{Family: FamilyStepper, TransitionDuration: 100}) })
	testResetRoundTrip(t, "yuvLimited", func() Interpolator { return New(Config{Family: FamilyYUVLimited}) })
	testResetRoundTrip(t, "hybrid", func() Interpolator { return New(Config{Family: FamilyHybrid, TransitionDuration: 100}) })
}

func TestSpringSettlesToTarget(t *testing.T) {
	s := New(Config{Family: FamilySpring, SpringStiffness: 200, SpringDamping: 30})
	s.ResetToColors([]ledmap.Float3{{0, 0, 0}}, 0)
	s.SetTargetColors([]ledmap.Float3{{1, 1, 1}}, 0)

	now := 0.0
	for i := 0; i < 500 && !s.IsAnimationComplete(); i++ {
		now += 16
		s.UpdateCurrentColors(now)
	}
	if !s.IsAnimationComplete() {
		t.Fatal("spring did not settle within 500 steps")
	}
	cur := s.GetCurrentColors()[0]
	if !approx(cur.R, 1, 0.01) {
		t.Fatalf("settled far from target: %+v", cur)
	}
}

func TestYUVLimitedCapsPerStepDelta(t *testing.T) {
	y := New(Config{Family: FamilyYUVLimited, YUVDeltaYCap: 0.02})
	y.ResetToColors([]ledmap.Float3{{0, 0, 0}}, 0)
	y.SetTargetColors([]ledmap.Float3{{1, 1, 1}}, 0)
	y.UpdateCurrentColors(16)
	cur := y.GetCurrentColors()[0]
	if cur.R > 0.05 || cur.G > 0.05 || cur.B > 0.05 {
		t.Fatalf("expected a small first step under the Y cap, got %+v", cur)
	}
}
