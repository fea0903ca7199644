package pixel

import "github.com/ledstream/core/ledmap"

// decodeRGB24 handles RGB24 (3 bytes/pixel) and XRGB (4 bytes/pixel)
// sources. Both are stored as B,G,R,[X] and are copied with a channel
// swap; under a LUT they are treated as a straight RGB->RGB lookup.
func decodeRGB24(pool *ledmap.Pool, req Request, crop Crop, outW, outH int, hasX bool) (*ledmap.Image, error) {
	img, err := pool.Get(outW, outH)
	if err != nil {
		return nil, decodeErr(ReasonDecodeFailed, err)
	}

	bpp := 3
	if hasX {
		bpp = 4
	}
	stride := req.Stride
	src := req.Src

	for oy := 0; oy < outH; oy++ {
		sy := oy + crop.Top
		row := src[sy*stride:]
		for ox := 0; ox < outW; ox++ {
			sx := ox + crop.Left
			base := sx * bpp
			b, g, r := row[base], row[base+1], row[base+2]

			var c ledmap.ColorRGB
			if req.LUT != nil {
				c = req.LUT.LookupRGB(r, g, b)
			} else {
				c = ledmap.ColorRGB{R: r, G: g, B: b}
			}
			img.Pix[oy*outW+ox] = c
		}
	}

	return img, nil
}
