package grabber

import (
	"time"

	"github.com/ledstream/core/hdr"
	"github.com/ledstream/core/pixel"
)

// worker decodes one buffer at a time, scanning for HDR breach before
// decode.
type worker struct {
	id   int
	pool *Pool
}

func (w *worker) run(buf Buffer) {
	now := time.Now()

	if buf.RawStats8 != nil && w.pool.hdrDetector8 != nil {
		sig := w.pool.hdrDetector8.Observe(*buf.RawStats8, now)
		if sig != hdr.NoChange && w.pool.onHDRSignal != nil {
			w.pool.onHDRSignal(sig)
		}
	}
	if buf.RawStats10 != nil && w.pool.hdrDetector10 != nil {
		sig := w.pool.hdrDetector10.Observe(*buf.RawStats10, now)
		if sig != hdr.NoChange && w.pool.onHDRSignal != nil {
			w.pool.onHDRSignal(sig)
		}
	}

	req := buf.Request
	if w.pool.hdrDetector8 != nil && w.pool.hdrDetector8.IsHDR() {
		req.HDRMode = pixel.HDRFull
	}
	if w.pool.hdrDetector10 != nil && w.pool.hdrDetector10.IsHDR() {
		req.HDRMode = pixel.HDRFull
	}

	img, err := pixel.Decode(w.pool.pool, req)
	if err != nil {
		w.pool.complete(w.id, buf.Seq, &FailedFrame{Worker: w.id, Err: err, Seq: buf.Seq})
		return
	}

	w.pool.complete(w.id, buf.Seq, &Frame{
		Worker:    w.id,
		Image:     img,
		Seq:       buf.Seq,
		StartedAt: buf.Arrived,
	})
}
