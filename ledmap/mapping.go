package ledmap

// sparseAreaThreshold is the pixel-count above which a LED's region is
// auto-forced to sparse (stride-2) sampling.
const sparseAreaThreshold = 1600

// Mapping is the precomputed relation between image pixel offsets and LED
// indices. It is rebuilt once per resize or strip
// replacement and then reused for every frame until the next rebuild.
type Mapping struct {
	width, height int

	// offsets[i] holds the byte offsets sampled for LED i. For LEDs that
	// are group members (Group != 0) other than the group's first
	// member, offsets[i] is nil and groupOf[i] points at the first
	// member's index instead.
	offsets [][]int

	// groupOf maps a group-member LED index to the index holding the
	// group's combined offset list. Only group members other than the
	// group's first LED have an entry; presence, not the value, marks
	// membership.
	groupOf map[int]int

	// whole holds every sampled offset across the bordered image, used by
	// the unicolor_mean averaging mode.
	whole []int
}

// Rebuild computes a new Mapping for a width x height image with the
// given horizontal/vertical border (pixels excluded on every side, as
// detected upstream by a black-border detector outside this core) and
// LED strip. forceSparse forces stride-2 sampling for every LED
// regardless of region size; regions above sparseAreaThreshold are always
// sampled at stride 2 even if forceSparse is false.
func Rebuild(width, height, hBorder, vBorder int, strip Strip, forceSparse bool) *Mapping {
	m := &Mapping{
		width:   width,
		height:  height,
		offsets: make([][]int, len(strip)),
		groupOf: make(map[int]int),
	}

	borderedW := width - 2*hBorder
	borderedH := height - 2*vBorder
	if borderedW < 0 {
		borderedW = 0
	}
	if borderedH < 0 {
		borderedH = 0
	}

	// first tracks, for each non-zero group key, the index of the first
	// LED seen carrying that key.
	first := make(map[int32]int)

	for i, led := range strip {
		if led.Empty() {
			continue
		}

		x0 := hBorder + int(led.MinXFrac*float64(borderedW))
		x1 := hBorder + int(led.MaxXFrac*float64(borderedW))
		y0 := vBorder + int(led.MinYFrac*float64(borderedH))
		y1 := vBorder + int(led.MaxYFrac*float64(borderedH))

		if x1 <= x0 || y1 <= y0 {
			continue
		}
		if x1 > width {
			x1 = width
		}
		if y1 > height {
			y1 = height
		}

		area := (x1 - x0) * (y1 - y0)
		stride := 1
		if forceSparse || area > sparseAreaThreshold {
			stride = 2
		}

		offs := make([]int, 0, area/(stride*stride)+1)
		for y := y0; y < y1; y += stride {
			for x := x0; x < x1; x += stride {
				offs = append(offs, y*width*3+x*3)
			}
		}

		if led.Group == 0 {
			m.offsets[i] = offs
			continue
		}

		firstIdx, ok := first[led.Group]
		if !ok {
			first[led.Group] = i
			m.offsets[i] = offs
			continue
		}
		m.offsets[firstIdx] = append(m.offsets[firstIdx], offs...)
		m.groupOf[i] = firstIdx
	}

	wholeArea := borderedW * borderedH
	wholeStride := 1
	if forceSparse || wholeArea > sparseAreaThreshold {
		wholeStride = 2
	}
	m.whole = make([]int, 0, wholeArea/(wholeStride*wholeStride)+1)
	for y := vBorder; y < vBorder+borderedH && y < height; y += wholeStride {
		for x := hBorder; x < hBorder+borderedW && x < width; x += wholeStride {
			m.whole = append(m.whole, y*width*3+x*3)
		}
	}

	return m
}

// LEDCount returns the number of LEDs this mapping was built for.
func (m *Mapping) LEDCount() int { return len(m.offsets) }
