// Package netframe implements the length-prefixed TCP framing used by
// both the flatbuffer grabber-forwarding path and the proto-nano
// control path: a 4-byte big-endian
// size prefix followed by a payload, the payload for the control path
// being a HyperhdrRequest oneof of {Image, Clear, Register, Color}
// encoded with google.golang.org/protobuf's wire primitives.
package netframe

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// maxFrameSize guards against a corrupt or hostile size prefix
// allocating an unbounded buffer.
const maxFrameSize = 64 << 20

// WriteFrame writes the [size:u32 BE][payload] framing for payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one [size:u32 BE][payload] frame from r.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("netframe: frame size %d exceeds limit %d", size, maxFrameSize)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Field numbers for the HyperhdrRequest oneof: exactly one of
// these is populated per Request.
const (
	fieldImage    = protowire.Number(1)
	fieldClear    = protowire.Number(2)
	fieldRegister = protowire.Number(3)
	fieldColor    = protowire.Number(4)
)

// Color sub-message field numbers.
const (
	colorFieldR = protowire.Number(1)
	colorFieldG = protowire.Number(2)
	colorFieldB = protowire.Number(3)
)

// Color is the Color variant's payload.
type Color struct {
	R, G, B uint32
}

// Request is the decoded form of a HyperhdrRequest oneof message: at
// most one of Image, HasClear, HasRegister, Color is set.
type Request struct {
	Image       []byte
	HasClear    bool
	Clear       bool
	HasRegister bool
	Register    int32
	Color       *Color
}

func appendColor(c Color) []byte {
	var body []byte
	body = protowire.AppendTag(body, colorFieldR, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(c.R))
	body = protowire.AppendTag(body, colorFieldG, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(c.G))
	body = protowire.AppendTag(body, colorFieldB, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(c.B))
	return body
}

// Encode serializes req as a single-field HyperhdrRequest message.
func Encode(req Request) ([]byte, error) {
	var out []byte
	switch {
	case req.Image != nil:
		out = protowire.AppendTag(out, fieldImage, protowire.BytesType)
		out = protowire.AppendBytes(out, req.Image)
	case req.HasClear:
		out = protowire.AppendTag(out, fieldClear, protowire.VarintType)
		v := uint64(0)
		if req.Clear {
			v = 1
		}
		out = protowire.AppendVarint(out, v)
	case req.HasRegister:
		out = protowire.AppendTag(out, fieldRegister, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(uint32(req.Register)))
	case req.Color != nil:
		out = protowire.AppendTag(out, fieldColor, protowire.BytesType)
		out = protowire.AppendBytes(out, appendColor(*req.Color))
	default:
		return nil, fmt.Errorf("netframe: request has no oneof variant set")
	}
	return out, nil
}

// Decode parses a HyperhdrRequest message, populating exactly the
// field the wire data selected.
func Decode(data []byte) (Request, error) {
	var req Request
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return req, fmt.Errorf("netframe: malformed tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case fieldImage:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return req, fmt.Errorf("netframe: malformed image field")
			}
			req.Image = append([]byte(nil), v...)
			data = data[n:]
		case fieldClear:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return req, fmt.Errorf("netframe: malformed clear field")
			}
			req.HasClear, req.Clear = true, v != 0
			data = data[n:]
		case fieldRegister:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return req, fmt.Errorf("netframe: malformed register field")
			}
			req.HasRegister, req.Register = true, int32(v)
			data = data[n:]
		case fieldColor:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return req, fmt.Errorf("netframe: malformed color field")
			}
			c, err := decodeColor(v)
			if err != nil {
				return req, err
			}
			req.Color = &c
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return req, fmt.Errorf("netframe: malformed unknown field %d", num)
			}
			data = data[n:]
		}
	}
	return req, nil
}

func decodeColor(data []byte) (Color, error) {
	var c Color
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return c, fmt.Errorf("netframe: malformed color tag")
		}
		data = data[n:]
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return c, fmt.Errorf("netframe: malformed color value")
		}
		data = data[n:]
		switch num {
		case colorFieldR:
			c.R = uint32(v)
		case colorFieldG:
			c.G = uint32(v)
		case colorFieldB:
			c.B = uint32(v)
		default:
			_ = typ
		}
	}
	return c, nil
}
