package ssdp

import "testing"

func TestIsMSearchMatchesSearchTarget(t *testing.T) {
	req := "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: 239.255.255.250:1900\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"ST: urn:hyperhdr:device:basic:1\r\n" +
		"MX: 2\r\n\r\n"
	if !isMSearch([]byte(req)) {
		t.Fatal("expected a matching ST header to be recognized as M-SEARCH")
	}
}

func TestIsMSearchMatchesWildcard(t *testing.T) {
	req := "M-SEARCH * HTTP/1.1\r\nST: ssdp:all\r\n\r\n"
	if !isMSearch([]byte(req)) {
		t.Fatal("expected ssdp:all to be recognized as a matching M-SEARCH")
	}
}

func TestIsMSearchRejectsOtherTargets(t *testing.T) {
	req := "M-SEARCH * HTTP/1.1\r\nST: upnp:rootdevice\r\n\r\n"
	if isMSearch([]byte(req)) {
		t.Fatal("expected an unrelated ST header to be rejected")
	}
}

func TestIsMSearchRejectsNonSearchRequest(t *testing.T) {
	req := "NOTIFY * HTTP/1.1\r\nST: urn:hyperhdr:device:basic:1\r\n\r\n"
	if isMSearch([]byte(req)) {
		t.Fatal("expected a NOTIFY request to be rejected")
	}
}
