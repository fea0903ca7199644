package spi

import "testing"

// TestRealizedRateFormula checks the quantified invariant: realized
// rate = 30MHz / (1 + ceil((30M - requested)/requested)).
func TestRealizedRateFormula(t *testing.T) {
	cases := []struct {
		requested int
		wantRate  int
	}{
		{requested: 4_000_000, wantRate: 30_000_000 / 8},
		{requested: 1_000_000, wantRate: 30_000_000 / 30},
		{requested: 30_000_000, wantRate: 30_000_000},
		{requested: 15_000_000, wantRate: 30_000_000 / 2},
	}
	for _, c := range cases {
		div := Divisor(c.requested)
		got := RealizedRate(div)
		if got != c.wantRate {
			t.Errorf("requested=%d: divisor=%d realized=%d, want %d", c.requested, div, got, c.wantRate)
		}
	}
}

func TestBuildFrameFraming(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6}
	frame := BuildFrame(payload)

	if frame[0] != csLowCmd {
		t.Fatalf("frame[0] = %#x, want CS-low command %#x", frame[0], csLowCmd)
	}
	if frame[len(frame)-1] != csHighCmd {
		t.Fatalf("last byte = %#x, want CS-high command %#x", frame[len(frame)-1], csHighCmd)
	}
	if frame[1] != mpsseWriteCmd {
		t.Fatalf("frame[1] = %#x, want MPSSE write command %#x", frame[1], mpsseWriteCmd)
	}
	n := int(frame[2]) | int(frame[3])<<8
	if n != len(payload)-1 {
		t.Fatalf("encoded size-1 = %d, want %d", n, len(payload)-1)
	}
	got := frame[4 : 4+len(payload)]
	for i, b := range payload {
		if got[i] != b {
			t.Fatalf("payload[%d] = %#x, want %#x", i, got[i], b)
		}
	}
}
