package rest

import (
	"math"
	"testing"

	"github.com/ledstream/core/ledmap"
)

func TestRGBToHSVPureColors(t *testing.T) {
	h, s, v := rgbToHSV(ledmap.ColorRGB{R: 255, G: 0, B: 0})
	if h != 0 || s != 1 || v != 1 {
		t.Fatalf("red: h=%v s=%v v=%v, want 0,1,1", h, s, v)
	}
	h, s, v = rgbToHSV(ledmap.ColorRGB{R: 0, G: 255, B: 0})
	if math.Abs(h-120) > 1e-9 || s != 1 || v != 1 {
		t.Fatalf("green: h=%v s=%v v=%v, want 120,1,1", h, s, v)
	}
	_, s, v = rgbToHSV(ledmap.ColorRGB{R: 0, G: 0, B: 0})
	if s != 0 || v != 0 {
		t.Fatalf("black: s=%v v=%v, want 0,0", s, v)
	}
}

func TestLuma601Weighting(t *testing.T) {
	white := luma601(ledmap.ColorRGB{R: 255, G: 255, B: 255})
	if white != 255 {
		t.Fatalf("white luma = %d, want 255", white)
	}
	black := luma601(ledmap.ColorRGB{R: 0, G: 0, B: 0})
	if black != 0 {
		t.Fatalf("black luma = %d, want 0", black)
	}
}

func TestClampByte(t *testing.T) {
	if clampByte(-5) != 0 || clampByte(300) != 255 || clampByte(100) != 100 {
		t.Fatal("clampByte failed to clip to [0,255]")
	}
}
