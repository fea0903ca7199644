package pixel

import "github.com/ledstream/core/ledmap"

// decodeYUYV handles both YUYV and UYVY (byte order swapped) 4:2:2
// packed formats: two luma samples per 4-byte macro-pixel share one U
// and one V sample.
func decodeYUYV(pool *ledmap.Pool, req Request, crop Crop, outW, outH int) (*ledmap.Image, error) {
	return decode422(pool, req, crop, outW, outH, false)
}

func decodeUYVY(pool *ledmap.Pool, req Request, crop Crop, outW, outH int) (*ledmap.Image, error) {
	return decode422(pool, req, crop, outW, outH, true)
}

func decode422(pool *ledmap.Pool, req Request, crop Crop, outW, outH int, uFirst bool) (*ledmap.Image, error) {
	img, err := pool.Get(outW, outH)
	if err != nil {
		return nil, decodeErr(ReasonDecodeFailed, err)
	}

	stride := req.Stride
	src := req.Src

	for oy := 0; oy < outH; oy++ {
		sy := oy + crop.Top
		row := src[sy*stride:]

		// Macro-pixel index the output row starts at; crop.Left is even.
		mx0 := crop.Left / 2

		for ox := 0; ox < outW; ox += 2 {
			mi := mx0 + ox/2
			base := mi * 4

			var y0, u, y1, v uint8
			if uFirst {
				u, y0, v, y1 = row[base], row[base+1], row[base+2], row[base+3]
			} else {
				y0, u, y1, v = row[base], row[base+1], row[base+2], row[base+3]
			}

			p0 := oy*outW + ox
			img.Pix[p0] = sample(y0, u, v, req.LUT)
			if ox+1 < outW {
				img.Pix[p0+1] = sample(y1, u, v, req.LUT)
			}
		}
	}

	return img, nil
}

// sample looks up (y,u,v) in lut if present, otherwise converts directly.
func sample(y, u, v uint8, lut *LUT) ledmap.ColorRGB {
	if lut != nil {
		return lut.Lookup(y, u, v)
	}
	return yuvToRGB(y, u, v)
}
