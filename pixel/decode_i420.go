package pixel

import "github.com/ledstream/core/ledmap"

// decodeI420 handles planar 4:2:0 YUV: a dense Y plane and U/V planes at
// quarter resolution. One macro-pixel is two Y samples by two rows, so
// the loop advances two output pixels per inner step and the chroma
// planes by one byte every two source columns and every two source
// rows.
func decodeI420(pool *ledmap.Pool, req Request, crop Crop, outW, outH int) (*ledmap.Image, error) {
	img, err := pool.Get(outW, outH)
	if err != nil {
		return nil, decodeErr(ReasonDecodeFailed, err)
	}

	yStride := req.Stride
	cStride := yStride / 2
	yPlane := req.Src
	uPlane := yPlane[req.Height*yStride:]
	vPlane := uPlane[(req.Height/2)*cStride:]

	for oy := 0; oy < outH; oy += 2 {
		sy := oy + crop.Top
		for ox := 0; ox < outW; ox += 2 {
			sx := ox + crop.Left

			u := uPlane[(sy/2)*cStride+sx/2]
			v := vPlane[(sy/2)*cStride+sx/2]

			writeBlock2x2(img, yPlane, yStride, sx, sy, ox, oy, outW, outH, u, v, req.LUT)
		}
	}

	return img, nil
}

// decodeNV12 handles planar 4:2:0 YUV with U,V interleaved at quarter
// resolution ("semi-planar"), otherwise identical to I420.
func decodeNV12(pool *ledmap.Pool, req Request, crop Crop, outW, outH int) (*ledmap.Image, error) {
	img, err := pool.Get(outW, outH)
	if err != nil {
		return nil, decodeErr(ReasonDecodeFailed, err)
	}

	yStride := req.Stride
	cStride := yStride // interleaved U,V plane has the same row stride as Y.
	yPlane := req.Src
	uvPlane := yPlane[req.Height*yStride:]

	for oy := 0; oy < outH; oy += 2 {
		sy := oy + crop.Top
		for ox := 0; ox < outW; ox += 2 {
			sx := ox + crop.Left

			cOff := (sy/2)*cStride + (sx/2)*2
			u := uvPlane[cOff]
			v := uvPlane[cOff+1]

			writeBlock2x2(img, yPlane, yStride, sx, sy, ox, oy, outW, outH, u, v, req.LUT)
		}
	}

	return img, nil
}

// writeBlock2x2 converts the 2x2 luma block anchored at source (sx,sy) /
// output (ox,oy) sharing chroma (u,v) and writes it into img, clipping
// against the image bounds for the final row/column of an odd-sized
// frame.
func writeBlock2x2(img *ledmap.Image, yPlane []byte, yStride, sx, sy, ox, oy, outW, outH int, u, v uint8, lut *LUT) {
	for dy := 0; dy < 2 && oy+dy < outH; dy++ {
		for dx := 0; dx < 2 && ox+dx < outW; dx++ {
			y := yPlane[(sy+dy)*yStride+sx+dx]
			img.Pix[(oy+dy)*outW+ox+dx] = sample(y, u, v, lut)
		}
	}
}
