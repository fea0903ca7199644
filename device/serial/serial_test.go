package serial

import "testing"

func TestMatchesAny(t *testing.T) {
	if !matchesAny("303a", "80c2", knownESPA) {
		t.Fatal("expected ESP32-S2 VID/PID to match knownESPA")
	}
	if !matchesAny("303a", "ffff", knownESPB) {
		t.Fatal("expected any 303a VID to match knownESPB (empty PID wildcard)")
	}
	if matchesAny("dead", "beef", knownESPA) {
		t.Fatal("unexpected match for unrelated VID/PID")
	}
}

func TestPlausiblePort(t *testing.T) {
	if plausiblePort("ttyAMA0") {
		t.Fatal("ttyAMA0 should be excluded from plausible auto-discovery")
	}
	if plausiblePort("cu.Bluetooth-Incoming-Port") {
		t.Fatal("bluetooth ports should be excluded from plausible auto-discovery")
	}
	if !plausiblePort("ttyUSB0") {
		t.Fatal("a plain USB-serial port should be plausible")
	}
}

func TestParseHexID(t *testing.T) {
	v, err := parseHexID("0x303A")
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x303a {
		t.Fatalf("got %#x, want 0x303a", v)
	}
}
