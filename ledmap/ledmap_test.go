package ledmap

import "testing"

// TestAveragerLinearMean covers a 4x1 image of primary-ish colors, one
// LED covering the whole row, averaged in linear light.
func TestAveragerLinearMean(t *testing.T) {
	img := &Image{
		Width:  4,
		Height: 1,
		Pix: []ColorRGB{
			{0, 0, 0},
			{255, 0, 0},
			{0, 255, 0},
			{0, 0, 255},
		},
	}
	strip := Strip{{MinXFrac: 0, MaxXFrac: 1, MinYFrac: 0, MaxYFrac: 1}}
	m := Rebuild(4, 1, 0, 0, strip, false)

	a := &Averager{Mode: ModeMulticolor, Linear: true}
	got := a.Process(img, m)
	if len(got) != 1 {
		t.Fatalf("expected 1 LED color, got %d", len(got))
	}
	c := got[0].ToColorRGB()
	for _, ch := range []uint8{c.R, c.G, c.B} {
		if diff := int(ch) - 119; diff < -1 || diff > 1 {
			t.Errorf("channel = %d, want 119 ±1", ch)
		}
	}
}

// TestAveragerEmptyRegion checks the "empty region -> Black" contract.
func TestAveragerEmptyRegion(t *testing.T) {
	img := &Image{Width: 2, Height: 2, Pix: make([]ColorRGB, 4)}
	strip := Strip{{MinXFrac: 0.5, MaxXFrac: 0.5, MinYFrac: 0, MaxYFrac: 1}}
	m := Rebuild(2, 2, 0, 0, strip, false)
	a := &Averager{}
	got := a.Process(img, m)
	if got[0] != (Float3{}) {
		t.Errorf("expected black for zero-area LED, got %v", got[0])
	}
}

// TestMappingGrouping verifies that grouped LEDs receive identical output.
func TestMappingGrouping(t *testing.T) {
	img := &Image{
		Width:  2,
		Height: 1,
		Pix: []ColorRGB{
			{10, 20, 30},
			{200, 100, 50},
		},
	}
	strip := Strip{
		{MinXFrac: 0, MaxXFrac: 0.5, MinYFrac: 0, MaxYFrac: 1, Group: 7},
		{MinXFrac: 0.5, MaxXFrac: 1, MinYFrac: 0, MaxYFrac: 1, Group: 7},
	}
	m := Rebuild(2, 1, 0, 0, strip, false)
	a := &Averager{Mode: ModeMulticolor}
	got := a.Process(img, m)
	if got[0] != got[1] {
		t.Errorf("grouped LEDs diverged: %v != %v", got[0], got[1])
	}
}

// TestPoolReuse checks that a released buffer is handed back out again.
func TestPoolReuse(t *testing.T) {
	p := NewPool(0)
	img1, err := p.Get(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	buf := img1.Pix
	img1.Release()

	img2, err := p.Get(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if &img2.Pix[0] != &buf[0] {
		t.Errorf("pool did not reuse released buffer")
	}
}

func TestPoolRejectsOversizedImage(t *testing.T) {
	p := NewPool(0)
	if _, err := p.Get(100000, 10000); err == nil {
		t.Errorf("expected error for oversized image")
	}
}
