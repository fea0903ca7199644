package pixel

import (
	"testing"

	"github.com/ledstream/core/ledmap"
)

func TestDecodeYUYVScenario1(t *testing.T) {
	pool := ledmap.NewPool(0)
	src := []byte{128, 64, 128, 192, 255, 128, 0, 128}
	img, err := Decode(pool, Request{
		Src: src, Width: 4, Height: 1, Stride: 8, Format: YUYV,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer img.Release()

	if img.Width != 4 || img.Height != 1 {
		t.Fatalf("unexpected dims: %dx%d", img.Width, img.Height)
	}
	c := img.ColorAt(2, 0) // Y2 = 255.
	if c.R < 235 || c.G < 235 || c.B < 235 {
		t.Errorf("pixel 3 (Y=255) = %+v, want all channels >= 235", c)
	}
}

func TestDecodeRGB24Identity(t *testing.T) {
	pool := ledmap.NewPool(0)
	// B,G,R per pixel.
	src := []byte{1, 2, 3, 4, 5, 6}
	img, err := Decode(pool, Request{
		Src: src, Width: 2, Height: 1, Stride: 6, Format: RGB24,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer img.Release()

	want := []ledmap.ColorRGB{{R: 3, G: 2, B: 1}, {R: 6, G: 5, B: 4}}
	for i, w := range want {
		if img.Pix[i] != w {
			t.Errorf("pixel %d = %+v, want %+v", i, img.Pix[i], w)
		}
	}
}

func TestDecodeInvalidCrop(t *testing.T) {
	pool := ledmap.NewPool(0)
	_, err := Decode(pool, Request{
		Src: make([]byte, 100), Width: 4, Height: 4, Stride: 12,
		Format: RGB24, Crop: Crop{Left: 2, Right: 2},
	})
	var de *DecodeError
	if err == nil {
		t.Fatal("expected error")
	}
	if !asDecodeError(err, &de) || de.Reason != ReasonInvalidCrop {
		t.Errorf("got %v, want INVALID_CROP", err)
	}
}

func asDecodeError(err error, target **DecodeError) bool {
	de, ok := err.(*DecodeError)
	if ok {
		*target = de
	}
	return ok
}

func TestLUTRequiredForHDR(t *testing.T) {
	pool := ledmap.NewPool(0)
	_, err := Decode(pool, Request{
		Src: make([]byte, 8), Width: 4, Height: 1, Stride: 8,
		Format: YUYV, HDRMode: HDRFull,
	})
	var de *DecodeError
	if !asDecodeError(err, &de) || de.Reason != ReasonLUTRequired {
		t.Errorf("got %v, want LUT_REQUIRED", err)
	}
}
