package ledmap

import "sync"

// Image is an owned, resizable row-major grid of ColorRGB. Its backing
// buffer is lent from a Pool and returned with Release; callers must not
// retain a reference to Pix after calling Release.
type Image struct {
	Width, Height int
	Pix           []ColorRGB

	pool *Pool
}

// Offset returns the byte offset (in a 3-byte-per-pixel row-major buffer,
// matching the decoder's addressing scheme) of pixel (x, y).
func (img *Image) Offset(x, y int) int {
	return y*img.Width*3 + x*3
}

// ColorAt returns the color at pixel (x, y).
func (img *Image) ColorAt(x, y int) ColorRGB {
	return img.Pix[y*img.Width+x]
}

// Release returns the image's backing buffer to its pool. Release is a
// no-op if the image was not obtained from a Pool.
func (img *Image) Release() {
	if img.pool != nil {
		img.pool.put(img.Pix)
		img.Pix = nil
		img.pool = nil
	}
}

// defaultMaxPooledBytes is the Pool's total cached-size cap when NewPool
// is given no cap; beyond the cap, put evicts buffers via evictOneLocked.
const defaultMaxPooledBytes = 256 << 20 // 256 MiB.

// Pool is a size-keyed LIFO cache of ColorRGB slices, avoiding per-frame
// allocation in the hot decode path. Buffers
// are keyed by their exact pixel count (not by width/height), since a
// resize that preserves total pixel count can reuse a buffer untouched.
type Pool struct {
	mu        sync.Mutex
	buckets   map[int][][]ColorRGB // pixel count -> free list, LIFO.
	totalSize int                  // total bytes currently cached (3 bytes/pixel).
	maxBytes  int
}

// NewPool returns a Pool capped at maxBytes total cached bytes. A maxBytes
// of 0 selects defaultMaxPooledBytes.
func NewPool(maxBytes int) *Pool {
	if maxBytes <= 0 {
		maxBytes = defaultMaxPooledBytes
	}
	return &Pool{
		buckets:  make(map[int][][]ColorRGB),
		maxBytes: maxBytes,
	}
}

// maxImagePixels bounds a single image to 10 million pixels.
const maxImagePixels = 10_000_000

// Get returns an Image of the given dimensions, reusing a pooled buffer
// of the exact same pixel count if one is available.
func (p *Pool) Get(width, height int) (*Image, error) {
	n := width * height
	if n < 0 || n > maxImagePixels {
		return nil, errImageTooLarge
	}

	p.mu.Lock()
	var buf []ColorRGB
	if free := p.buckets[n]; len(free) > 0 {
		buf = free[len(free)-1]
		p.buckets[n] = free[:len(free)-1]
		p.totalSize -= n * 3
	}
	p.mu.Unlock()

	if buf == nil {
		buf = make([]ColorRGB, n)
	} else {
		for i := range buf {
			buf[i] = ColorRGB{}
		}
	}

	return &Image{Width: width, Height: height, Pix: buf, pool: p}, nil
}

// put returns buf to its bucket, first evicting cached buffers one at a
// time (from any bucket, including buf's own size) while the pool would
// exceed its byte cap.
func (p *Pool) put(buf []ColorRGB) {
	if buf == nil {
		return
	}
	n := len(buf)
	size := n * 3

	p.mu.Lock()
	defer p.mu.Unlock()

	for p.totalSize+size > p.maxBytes && p.evictOneLocked() {
	}

	p.buckets[n] = append(p.buckets[n], buf)
	p.totalSize += size
}

// evictOneLocked drops the buffer at the front of some non-empty bucket's
// free list (the earliest-pushed entry in that bucket). Which bucket is
// chosen follows map iteration order and is not defined; buffer size
// plays no part. Returns false if the pool is already empty.
func (p *Pool) evictOneLocked() bool {
	for n, free := range p.buckets {
		if len(free) == 0 {
			continue
		}
		p.buckets[n] = free[1:]
		p.totalSize -= n * 3
		return true
	}
	return false
}
