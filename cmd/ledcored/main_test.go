package main

import (
	"encoding/json"
	"testing"
)

func TestStringVarsFlattensTypedValues(t *testing.T) {
	raw := json.RawMessage(`{"LogLevel":"1","HDRMode":2,"Linearize":true}`)
	vars, err := stringVars(raw)
	if err != nil {
		t.Fatal(err)
	}
	if vars["LogLevel"] != "1" {
		t.Fatalf("got LogLevel=%q, want \"1\"", vars["LogLevel"])
	}
	if vars["HDRMode"] != "2" {
		t.Fatalf("got HDRMode=%q, want \"2\"", vars["HDRMode"])
	}
	if vars["Linearize"] != "true" {
		t.Fatalf("got Linearize=%q, want \"true\"", vars["Linearize"])
	}
}

func TestDefaultStripCoversFullWidth(t *testing.T) {
	strip := defaultStrip(4)
	if len(strip) != 4 {
		t.Fatalf("got %d LEDs, want 4", len(strip))
	}
	if strip[0].MinXFrac != 0 {
		t.Fatalf("first LED should start at 0, got %v", strip[0].MinXFrac)
	}
	if strip[len(strip)-1].MaxXFrac != 1 {
		t.Fatalf("last LED should end at 1, got %v", strip[len(strip)-1].MaxXFrac)
	}
	for i := 0; i < len(strip)-1; i++ {
		if strip[i].MaxXFrac != strip[i+1].MinXFrac {
			t.Fatalf("LED %d and %d not contiguous: %v != %v", i, i+1, strip[i].MaxXFrac, strip[i+1].MinXFrac)
		}
	}
}

func TestDefaultStripZeroFallsBackToOne(t *testing.T) {
	strip := defaultStrip(0)
	if len(strip) != 1 {
		t.Fatalf("got %d LEDs, want 1", len(strip))
	}
}
