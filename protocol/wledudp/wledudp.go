// Package wledudp packs per-LED colors into WLED's UDP realtime
// protocol wire formats. Pack allocates fresh datagram buffers on each
// call.
package wledudp

import "github.com/ledstream/core/ledmap"

// maxSingleDatagram is the largest LED count that fits the single-
// datagram mode-2 format before chunking into mode-4 is required.
const maxSingleDatagram = 490

// maxChunkLEDs is the largest LED count carried in a single mode-4
// chunk.
const maxChunkLEDs = 489

// Mode2 is the single-datagram wire format:
// [0x02, 0xFF, R0,G0,B0, R1,G1,B1, ...].
const Mode2 byte = 0x02

// Mode4 is the chunked wire format:
// [0x04, 0xFF, offsetHi, offsetLo, RGB...].
const Mode4 byte = 0x04

// Chunk is one outgoing datagram's payload plus the LED offset (in
// LEDs, not bytes) it starts at.
type Chunk struct {
	Offset int
	Data   []byte
}

// Pack builds the datagram(s) required to carry colors, choosing
// Mode2 for ≤490 LEDs or Mode4 chunks of ≤489 LEDs each otherwise.
func Pack(colors []ledmap.ColorRGB) []Chunk {
	if len(colors) <= maxSingleDatagram {
		buf := make([]byte, 2+3*len(colors))
		writeMode2(buf, colors)
		return []Chunk{{Offset: 0, Data: buf}}
	}

	var chunks []Chunk
	for offset := 0; offset < len(colors); offset += maxChunkLEDs {
		end := offset + maxChunkLEDs
		if end > len(colors) {
			end = len(colors)
		}
		seg := colors[offset:end]
		buf := make([]byte, 4+3*len(seg))
		writeMode4(buf, offset, seg)
		chunks = append(chunks, Chunk{Offset: offset, Data: buf})
	}
	return chunks
}

func writeMode2(buf []byte, colors []ledmap.ColorRGB) {
	buf[0] = Mode2
	buf[1] = 0xFF
	writeColors(buf[2:], colors)
}

func writeMode4(buf []byte, offset int, colors []ledmap.ColorRGB) {
	buf[0] = Mode4
	buf[1] = 0xFF
	buf[2] = byte(offset >> 8)
	buf[3] = byte(offset)
	writeColors(buf[4:], colors)
}

func writeColors(buf []byte, colors []ledmap.ColorRGB) {
	for i, c := range colors {
		buf[3*i] = c.R
		buf[3*i+1] = c.G
		buf[3*i+2] = c.B
	}
}
