// Package grabber implements the grabber pool (component C4): a fixed
// pool of worker goroutines that decode raw capture buffers into
// ordered, back-pressured ledmap.Image frames.
package grabber

import (
	"sync"
	"time"

	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/hdr"
	"github.com/ledstream/core/ledmap"
	"github.com/ledstream/core/pixel"
)

// Frame is a successfully decoded frame, tagged with the worker that
// produced it and its sequence number for reassembly.
type Frame struct {
	Worker    int
	Image     *ledmap.Image
	Seq       uint64
	StartedAt time.Time
}

// FailedFrame is emitted in place of a Frame when decode fails; it is
// logged downstream and otherwise dropped.
type FailedFrame struct {
	Worker int
	Err    error
	Seq    uint64
}

// Buffer is a single raw capture buffer submitted to the pool.
type Buffer struct {
	Seq     uint64
	Arrived time.Time
	Request pixel.Request

	// RawStats8/RawStats10, when non-nil, are computed by the caller before
	// decode (the HDR detector must scan the raw buffer ahead of the
	// decoder touching it) and passed through so Pool can drive the
	// hdr.Detector without a second pass over the bytes.
	RawStats8  *hdr.Stats8
	RawStats10 *hdr.Stats10
}

// Stats is the pool's running frame-accounting counters.
type Stats struct {
	Decoded uint64
	Dropped uint64
	Failed  uint64
}

// Pool is a fixed-size worker pool decoding submitted buffers
// concurrently. Submit is non-blocking: a buffer arriving while every
// worker is busy is dropped and Stats.Dropped advances.
type Pool struct {
	log  config.Logger
	pool *ledmap.Pool

	workers []*worker
	idle    chan int // indices of idle workers.

	out    chan interface{} // *Frame or *FailedFrame, in submission order.
	active bool
	mu     sync.Mutex

	nextSeq      uint64
	nextExpected uint64
	pending      map[uint64]interface{}
	pendingMu    sync.Mutex

	hdrDetector8  *hdr.Detector8
	hdrDetector10 *hdr.Detector10
	onHDRSignal   func(hdr.Signal)

	stats   Stats
	statsMu sync.Mutex
}

// workerCount clamps the requested worker count to
// min(max(ideal-1,1),4), leaving one CPU free for the capture source
// and the mux/dispatch loops.
func workerCount(ideal int) int {
	n := ideal - 1
	if n < 1 {
		n = 1
	}
	if n > 4 {
		n = 4
	}
	return n
}

// New returns a running Pool with workerCount(idealThreads) workers,
// each decoding into images drawn from imgPool.
func New(idealThreads int, imgPool *ledmap.Pool, log config.Logger) *Pool {
	if log == nil {
		log = config.NewDiscardLogger()
	}
	n := workerCount(idealThreads)
	p := &Pool{
		log:          log,
		pool:         imgPool,
		idle:         make(chan int, n),
		out:          make(chan interface{}, n*2),
		active:       true,
		nextExpected: 0,
		pending:      make(map[uint64]interface{}),
	}
	for i := 0; i < n; i++ {
		w := &worker{id: i, pool: p}
		p.workers = append(p.workers, w)
		p.idle <- i
	}
	return p
}

// SetHDRDetector8 / SetHDRDetector10 install the HDR auto-detector that
// scans each raw buffer before decode, and the callback invoked
// with any resulting signal.
func (p *Pool) SetHDRDetector8(d *hdr.Detector8, onSignal func(hdr.Signal)) {
	p.hdrDetector8 = d
	p.onHDRSignal = onSignal
}

func (p *Pool) SetHDRDetector10(d *hdr.Detector10, onSignal func(hdr.Signal)) {
	p.hdrDetector10 = d
	p.onHDRSignal = onSignal
}

// Submit assigns buf to an idle worker, or drops it if none is idle.
// Submit never blocks. A dropped buffer never consumes a sequence
// number, so the complete/drain ordering below never stalls waiting
// on a seq that will never arrive.
func (p *Pool) Submit(buf Buffer) {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	select {
	case idx := <-p.idle:
		p.mu.Lock()
		buf.Seq = p.nextSeq
		p.nextSeq++
		p.mu.Unlock()
		go p.workers[idx].run(buf)
	default:
		p.statsMu.Lock()
		p.stats.Dropped++
		p.statsMu.Unlock()
		p.log.Debug("grabber: no idle worker, dropping buffer")
	}
}

// Out returns the pool's ordered output stream: each value is a *Frame
// or a *FailedFrame, delivered strictly in Buffer.Seq order.
func (p *Pool) Out() <-chan interface{} { return p.out }

// Stop clears the pool's active flag; workers in flight finish their
// current decode and do not pick up new work.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.active = false
	p.mu.Unlock()
}

// Stats returns a snapshot of the pool's frame-accounting counters.
func (p *Pool) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

// complete is called by a worker when it finishes, handing the result
// (a *Frame or *FailedFrame) to the reassembly queue and returning the
// worker to idle.
func (p *Pool) complete(workerID int, seq uint64, result interface{}) {
	p.pendingMu.Lock()
	p.pending[seq] = result
	for {
		r, ok := p.pending[p.nextExpected]
		if !ok {
			break
		}
		delete(p.pending, p.nextExpected)
		p.nextExpected++
		p.pendingMu.Unlock()

		switch r.(type) {
		case *Frame:
			p.statsMu.Lock()
			p.stats.Decoded++
			p.statsMu.Unlock()
		case *FailedFrame:
			p.statsMu.Lock()
			p.stats.Failed++
			p.statsMu.Unlock()
		}
		p.out <- r

		p.pendingMu.Lock()
	}
	p.pendingMu.Unlock()

	p.mu.Lock()
	active := p.active
	p.mu.Unlock()
	if active {
		p.idle <- workerID
	}
}
