package pixel

import "github.com/ledstream/core/ledmap"

// yuvToRGB converts a single BT.601 YUV sample (full range, as emitted
// by the common capture formats this package decodes) to RGB via the
// standard inverse transform.
func yuvToRGB(y, u, v uint8) ledmap.ColorRGB {
	yy := int32(y)
	cb := int32(u) - 128
	cr := int32(v) - 128

	r := yy + (91881*cr)>>16
	g := yy - (22554*cb+46802*cr)>>16
	b := yy + (116130*cb)>>16

	return ledmap.ColorRGB{R: clampByte(r), G: clampByte(g), B: clampByte(b)}
}

func clampByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// reduce10to8 maps a 10-bit sample (as carried in a P010 16-bit
// container) to an 8-bit sample, using the caller-supplied table when
// present, or else a plain right-shift.
func reduce10to8(v uint16, table *[1024]uint8) uint8 {
	v &= 0x3ff
	if table != nil {
		return table[v]
	}
	return uint8(v >> 2)
}
