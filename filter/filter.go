// Package filter provides the chaining interface used by the
// calibration stage (component C7): each stage consumes one frame of
// per-LED colors and forwards its transformed output to the next
// stage's Write, terminating in a sink that hands the frame to the
// device dispatcher.
package filter

import "github.com/ledstream/core/ledmap"

// Filter is the interface every calibration stage implements. Rather
// than an io.Writer-of-bytes shape, a Filter consumes and produces
// whole frames of per-LED color, since calibration operates on
// structured color data rather than an encoded byte stream.
type Filter interface {
	Write(frame []ledmap.ColorRGB) error
	Close() error
}

// NoOp forwards each frame unchanged to dst, used when a calibration
// stage is disabled by configuration.
type NoOp struct {
	dst Filter
}

// NewNoOp returns a Filter that passes every frame through unmodified.
func NewNoOp(dst Filter) *NoOp { return &NoOp{dst: dst} }

func (n *NoOp) Write(frame []ledmap.ColorRGB) error { return n.dst.Write(frame) }

func (n *NoOp) Close() error { return n.dst.Close() }

// Sink is a terminal Filter that records the most recently written
// frame, used as the tail of a calibration chain under test or when no
// downstream dispatcher is wired yet.
type Sink struct {
	Last []ledmap.ColorRGB
}

// NewSink returns a Filter that stores each frame it receives.
func NewSink() *Sink { return &Sink{} }

func (s *Sink) Write(frame []ledmap.ColorRGB) error {
	s.Last = append([]ledmap.ColorRGB(nil), frame...)
	return nil
}

func (s *Sink) Close() error { return nil }
