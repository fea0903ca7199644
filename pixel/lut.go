package pixel

import (
	"github.com/pkg/errors"

	"github.com/ledstream/core/ledmap"
)

// lutSide is the number of distinct values per axis of the tone-map LUT.
const lutSide = 256

// lutEntries is the total number of (Y,U,V) combinations the LUT holds.
const lutEntries = lutSide * lutSide * lutSide

// LUT is a 256x256x256 table of ColorRGB triples addressed by
// (Y | U<<8 | V<<16), used to perform HDR-to-SDR tone-mapping and
// colour-space conversion in one lookup.
type LUT struct {
	entries []ledmap.ColorRGB
}

// NewLUT builds a LUT from a flat byte buffer of 3-byte (R,G,B) entries,
// one per (Y,U,V) combination in the addressing order described above.
func NewLUT(data []byte) (*LUT, error) {
	if len(data) != lutEntries*3 {
		return nil, errors.Errorf("pixel: LUT must be %d bytes, got %d", lutEntries*3, len(data))
	}
	entries := make([]ledmap.ColorRGB, lutEntries)
	for i := range entries {
		entries[i] = ledmap.ColorRGB{R: data[i*3], G: data[i*3+1], B: data[i*3+2]}
	}
	return &LUT{entries: entries}, nil
}

// Lookup returns the RGB triple for a given (Y,U,V) sample.
func (l *LUT) Lookup(y, u, v uint8) ledmap.ColorRGB {
	idx := int(y) | int(u)<<8 | int(v)<<16
	return l.entries[idx]
}

// LookupRGB treats the LUT as a straight RGB->RGB lookup (used for
// RGB24/XRGB sources under HDR tone-mapping), addressing it by
// (R | G<<8 | B<<16) instead of (Y | U<<8 | V<<16).
func (l *LUT) LookupRGB(r, g, b uint8) ledmap.ColorRGB {
	return l.Lookup(r, g, b)
}
