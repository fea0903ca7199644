package netframe

import (
	"bufio"
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello frame")
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestRequestRoundTripEachVariant(t *testing.T) {
	cases := []Request{
		{Image: []byte{1, 2, 3, 4}},
		{HasClear: true, Clear: true},
		{HasRegister: true, Register: 42},
		{Color: &Color{R: 10, G: 20, B: 30}},
	}
	for _, req := range cases {
		data, err := Encode(req)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		switch {
		case req.Image != nil:
			if !bytes.Equal(got.Image, req.Image) {
				t.Fatalf("image round trip: got %v, want %v", got.Image, req.Image)
			}
		case req.HasClear:
			if !got.HasClear || got.Clear != req.Clear {
				t.Fatalf("clear round trip: got %+v, want %+v", got, req)
			}
		case req.HasRegister:
			if !got.HasRegister || got.Register != req.Register {
				t.Fatalf("register round trip: got %+v, want %+v", got, req)
			}
		case req.Color != nil:
			if got.Color == nil || *got.Color != *req.Color {
				t.Fatalf("color round trip: got %+v, want %+v", got.Color, req.Color)
			}
		}
	}
}

func TestEncodeRejectsEmptyRequest(t *testing.T) {
	if _, err := Encode(Request{}); err == nil {
		t.Fatal("expected error encoding a Request with no oneof variant set")
	}
}
