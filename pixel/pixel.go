// Package pixel implements the pixel decoder (component C1): conversion
// of a packed source frame (YUYV, UYVY, I420, NV12, P010, RGB24, XRGB or
// MJPEG) plus an optional 3D tone-map LUT into a linear RGB ledmap.Image.
package pixel

import (
	"github.com/pkg/errors"

	"github.com/ledstream/core/ledmap"
)

// Format identifies a source pixel format.
type Format int

const (
	YUYV Format = iota
	UYVY
	I420
	NV12
	P010
	RGB24
	XRGB
	MJPEG
)

func (f Format) String() string {
	switch f {
	case YUYV:
		return "YUYV"
	case UYVY:
		return "UYVY"
	case I420:
		return "I420"
	case NV12:
		return "NV12"
	case P010:
		return "P010"
	case RGB24:
		return "RGB24"
	case XRGB:
		return "XRGB"
	case MJPEG:
		return "MJPEG"
	default:
		return "unknown"
	}
}

// HDRMode selects whether tone-mapping is applied during decode.
type HDRMode int

const (
	HDROff HDRMode = iota
	HDRFull
	HDRPartial
)

// Crop describes the border pixels to exclude from the output image.
// Left and Right are rounded down to an even number before use, since
// chroma is shared between adjacent horizontal pixels in every
// subsampled format this package decodes.
type Crop struct {
	Left, Right, Top, Bottom int
}

func (c Crop) evened() Crop {
	c.Left &^= 1
	c.Right &^= 1
	return c
}

// DecodeError is the error kind returned for any decode failure.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "pixel: decode failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "pixel: decode failed: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}

// Reasons used by DecodeError.Reason.
const (
	ReasonUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ReasonLUTRequired       = "LUT_REQUIRED"
	ReasonInvalidCrop       = "INVALID_CROP"
	ReasonDecodeFailed      = "DECODE_FAILED"
)

// Request bundles every input to a single Decode call.
type Request struct {
	Src           []byte
	Width, Height int
	Stride        int
	Format        Format
	Crop          Crop
	LUT           *LUT // optional tone-map/colour LUT.
	HDRMode       HDRMode

	// Subsampling is required for MJPEG when HDRMode != HDROff; it must
	// be one of Subsampling420 or Subsampling422.
	Subsampling Subsampling

	// QuarterFrame decodes MJPEG at half scale in each dimension.
	QuarterFrame bool

	// P010Table, when non-nil, is the precomputed 1024-entry 10-bit to
	// 8-bit reduction table used to decode P010 frames. A nil table
	// falls back to a linear >>2 shift.
	P010Table *[1024]uint8
}

// Subsampling identifies chroma subsampling for MJPEG decode.
type Subsampling int

const (
	SubsamplingUnknown Subsampling = iota
	Subsampling420
	Subsampling422
)

// Decode converts req.Src into a ledmap.Image obtained from pool, cropped
// by req.Crop. The caller owns the returned image and must Release it.
func Decode(pool *ledmap.Pool, req Request) (*ledmap.Image, error) {
	crop := req.Crop.evened()

	if crop.Left+crop.Right >= req.Width || crop.Top+crop.Bottom >= req.Height {
		return nil, decodeErr(ReasonInvalidCrop, errors.Errorf(
			"crop %+v exceeds frame %dx%d", crop, req.Width, req.Height))
	}

	if req.HDRMode != HDROff && req.LUT == nil && req.Format != MJPEG {
		return nil, decodeErr(ReasonLUTRequired, nil)
	}

	outW := req.Width - crop.Left - crop.Right
	outH := req.Height - crop.Top - crop.Bottom

	switch req.Format {
	case YUYV:
		return decodeYUYV(pool, req, crop, outW, outH)
	case UYVY:
		return decodeUYVY(pool, req, crop, outW, outH)
	case I420:
		return decodeI420(pool, req, crop, outW, outH)
	case NV12:
		return decodeNV12(pool, req, crop, outW, outH)
	case P010:
		return decodeP010(pool, req, crop, outW, outH)
	case RGB24:
		return decodeRGB24(pool, req, crop, outW, outH, false)
	case XRGB:
		return decodeRGB24(pool, req, crop, outW, outH, true)
	case MJPEG:
		return decodeMJPEG(pool, req)
	default:
		return nil, decodeErr(ReasonUnsupportedFormat, errors.Errorf("format %v", req.Format))
	}
}
