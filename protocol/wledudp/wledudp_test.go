package wledudp

import (
	"testing"

	"github.com/ledstream/core/ledmap"
)

// TestChunkingScenario mirrors the worked example: N=500 LEDs splits
// into a first chunk at offset 0 with 489 LEDs and a second chunk at
// offset 489 with 11 LEDs, both headed [0x04, 0xFF, offsetHi, offsetLo].
func TestChunkingScenario(t *testing.T) {
	colors := make([]ledmap.ColorRGB, 500)
	chunks := Pack(colors)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Offset != 0 || (len(chunks[0].Data)-4)/3 != 489 {
		t.Fatalf("chunk 1: offset=%d ledCount=%d, want offset=0 ledCount=489",
			chunks[0].Offset, (len(chunks[0].Data)-4)/3)
	}
	if chunks[1].Offset != 489 || (len(chunks[1].Data)-4)/3 != 11 {
		t.Fatalf("chunk 2: offset=%d ledCount=%d, want offset=489 ledCount=11",
			chunks[1].Offset, (len(chunks[1].Data)-4)/3)
	}
	for _, c := range chunks {
		if c.Data[0] != Mode4 || c.Data[1] != 0xFF {
			t.Fatalf("chunk header = %v, want [0x04, 0xFF, ...]", c.Data[:2])
		}
	}
}

func TestDatagramLengthInvariant(t *testing.T) {
	for n := 0; n <= 490; n++ {
		chunks := Pack(make([]ledmap.ColorRGB, n))
		if len(chunks) != 1 {
			t.Fatalf("n=%d: got %d chunks, want 1", n, len(chunks))
		}
		if len(chunks[0].Data) != 2+3*n {
			t.Fatalf("n=%d: datagram length = %d, want %d", n, len(chunks[0].Data), 2+3*n)
		}
	}
}

func TestChunkCoverageInvariant(t *testing.T) {
	n := 1337
	chunks := Pack(make([]ledmap.ColorRGB, n))

	totalPayload := 0
	covered := make([]bool, n)
	for _, c := range chunks {
		ledCount := (len(c.Data) - 4) / 3
		totalPayload += ledCount
		for i := 0; i < ledCount; i++ {
			covered[c.Offset+i] = true
		}
		if ledCount > maxChunkLEDs {
			t.Fatalf("chunk at offset %d carries %d LEDs, want <= %d", c.Offset, ledCount, maxChunkLEDs)
		}
	}
	if totalPayload != n {
		t.Fatalf("total payload LEDs = %d, want %d", totalPayload, n)
	}
	for i, ok := range covered {
		if !ok {
			t.Fatalf("offset %d not covered by any chunk", i)
		}
	}
}
