package pixel

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ledstream/core/ledmap"
)

// decodeMJPEG decodes a single MJPEG frame via gocv's OpenCV binding,
// honoring HDR subsampling requirements and quarter-frame scaling
//. On an OpenCV decode failure, it returns DECODE_FAILED.
func decodeMJPEG(pool *ledmap.Pool, req Request) (*ledmap.Image, error) {
	if req.HDRMode != HDROff && req.Subsampling != Subsampling420 && req.Subsampling != Subsampling422 {
		return nil, decodeErr(ReasonUnsupportedFormat,
			errors.New("HDR tone-mapping requires 4:2:0 or 4:2:2 subsampling"))
	}

	mat, err := gocv.IMDecode(req.Src, gocv.IMReadColor)
	if err != nil {
		return nil, decodeErr(ReasonDecodeFailed, err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, decodeErr(ReasonDecodeFailed, errors.New("libjpeg: empty frame"))
	}

	if req.QuarterFrame {
		half := gocv.NewMat()
		gocv.Resize(mat, &half, image.Pt(mat.Cols()/2, mat.Rows()/2), 0, 0, gocv.InterpolationLinear)
		mat.Close()
		mat = half
	}
	defer mat.Close()

	w, h := mat.Cols(), mat.Rows()
	crop := req.Crop.evened()
	if crop.Left+crop.Right >= w || crop.Top+crop.Bottom >= h {
		return nil, decodeErr(ReasonInvalidCrop, nil)
	}
	outW, outH := w-crop.Left-crop.Right, h-crop.Top-crop.Bottom

	img, err := pool.Get(outW, outH)
	if err != nil {
		return nil, decodeErr(ReasonDecodeFailed, err)
	}

	data, err := mat.DataPtrUint8()
	if err != nil {
		return nil, decodeErr(ReasonDecodeFailed, err)
	}
	stride := w * 3 // gocv's decoded Mat is BGR, 3 bytes/pixel, tightly packed.

	for oy := 0; oy < outH; oy++ {
		sy := oy + crop.Top
		row := data[sy*stride:]
		for ox := 0; ox < outW; ox++ {
			sx := (ox + crop.Left) * 3
			img.Pix[oy*outW+ox] = ledmap.ColorRGB{R: row[sx+2], G: row[sx+1], B: row[sx]}
		}
	}

	return img, nil
}
