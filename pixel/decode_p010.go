package pixel

import (
	"encoding/binary"

	"github.com/ledstream/core/ledmap"
)

// decodeP010 handles the 10-bit-in-16-bit-container semi-planar format:
// identical layout to NV12 but every sample occupies two little-endian
// bytes with the 10 significant bits left-justified in the top of the
// 16-bit word. Each sample is reduced to 8 bits via req.P010Table (or a
// plain shift) before LUT lookup or straight conversion.
func decodeP010(pool *ledmap.Pool, req Request, crop Crop, outW, outH int) (*ledmap.Image, error) {
	img, err := pool.Get(outW, outH)
	if err != nil {
		return nil, decodeErr(ReasonDecodeFailed, err)
	}

	yStride := req.Stride // byte stride; two bytes per sample.
	yPlane := req.Src
	uvPlane := yPlane[req.Height*yStride:]

	read16 := func(plane []byte, off int) uint16 {
		return binary.LittleEndian.Uint16(plane[off:]) >> 6 // top 10 bits of 16.
	}

	for oy := 0; oy < outH; oy += 2 {
		sy := oy + crop.Top
		for ox := 0; ox < outW; ox += 2 {
			sx := ox + crop.Left

			cOff := (sy/2)*yStride + (sx/2)*4
			u := reduce10to8(read16(uvPlane, cOff), req.P010Table)
			v := reduce10to8(read16(uvPlane, cOff+2), req.P010Table)

			for dy := 0; dy < 2 && oy+dy < outH; dy++ {
				for dx := 0; dx < 2 && ox+dx < outW; dx++ {
					yOff := (sy+dy)*yStride + (sx+dx)*2
					y := reduce10to8(read16(yPlane, yOff), req.P010Table)
					img.Pix[(oy+dy)*outW+ox+dx] = sample(y, u, v, req.LUT)
				}
			}
		}
	}

	return img, nil
}

// BuildP010Table precomputes the 1024-entry 10-bit to 8-bit reduction
// table used by decodeP010. A linear scale is used; callers wanting a
// perceptual curve can substitute their own table directly on Request.
func BuildP010Table() *[1024]uint8 {
	var t [1024]uint8
	for i := range t {
		t[i] = uint8(i * 255 / 1023)
	}
	return &t
}
