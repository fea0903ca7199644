// Package settings implements the engine's external settings
// interface: a read-only subscription
// contract over the general/color/device/leds/grabber/netForward/
// netServers/effects/videoDetection/performance document kinds, and a
// versioned local store with migrations and backup-before-rewrite.
package settings

import (
	"encoding/json"
	"fmt"
)

// Kind names the settings documents the engine subscribes to.
const (
	KindGeneral        = "general"
	KindColor          = "color"
	KindDevice         = "device"
	KindLeds           = "leds"
	KindGrabber        = "grabber"
	KindNetForward     = "netForward"
	KindNetServers     = "netServers"
	KindEffects        = "effects"
	KindVideoDetection = "videoDetection"
	KindPerformance    = "performance"
)

// Channel is the read-only contract the engine uses to learn about
// settings documents as they change, independent of how they're
// transported (local file watch, HTTP push, IPC).
type Channel interface {
	// Subscribe returns a channel of raw documents of the given kind.
	// The returned channel is closed when the subscription ends.
	Subscribe(kind string) (<-chan json.RawMessage, error)
}

// staticChannel is a Channel backed by an in-memory map (each kind's
// document is delivered once as the initial value on its
// subscription).
type staticChannel struct {
	docs map[string]chan json.RawMessage
}

// NewStaticChannel returns a Channel that immediately delivers each
// kind's current document once, then stays open with no further
// updates - the shape every real transport's subscription degrades to
// when nothing has changed since startup.
func NewStaticChannel(initial map[string]json.RawMessage) Channel {
	sc := &staticChannel{docs: make(map[string]chan json.RawMessage)}
	for kind, doc := range initial {
		ch := make(chan json.RawMessage, 1)
		ch <- doc
		sc.docs[kind] = ch
	}
	return sc
}

func (sc *staticChannel) Subscribe(kind string) (<-chan json.RawMessage, error) {
	ch, ok := sc.docs[kind]
	if !ok {
		return nil, fmt.Errorf("settings: unknown kind %q", kind)
	}
	return ch, nil
}
