package ledmap

// Averager folds per-frame pixel data into per-LED colors using a
// precomputed Mapping. It holds no per-frame state, so a single
// Averager may be reused across
// frames as long as the Mapping it is given is kept current.
type Averager struct {
	// Mode selects multicolor_mean (default, per-LED means) or
	// unicolor_mean (whole-image mean replicated to every LED).
	Mode int

	// Linear, when true, computes means in linear light via the
	// Linearize/Delinearize tables before converting back to
	// gamma-encoded output. When false the arithmetic mean is computed
	// directly in gamma-encoded space.
	Linear bool
}

// Averaging modes, mirrored from engine/config to avoid an import cycle;
// engine/config.MeanMulticolor/MeanUnicolor share these numeric values.
const (
	ModeMulticolor = 0
	ModeUnicolor   = 1
)

// Process computes the per-LED color vector for img using m. The
// returned slice has one entry per LED in the strip the Mapping was
// built from, each in [0,1].
func (a *Averager) Process(img *Image, m *Mapping) []Float3 {
	out := make([]Float3, len(m.offsets))

	if a.Mode == ModeUnicolor {
		c := a.mean(img, m.whole)
		for i := range out {
			out[i] = c
		}
		return out
	}

	for i := range m.offsets {
		if other, grouped := m.groupOf[i]; grouped {
			out[i] = out[other]
			continue
		}
		out[i] = a.mean(img, m.offsets[i])
	}
	return out
}

// mean computes the average color of img's pixels at the given byte
// offsets, returning Black for an empty sample set, and rounding
// within ±1 of the true mean.
func (a *Averager) mean(img *Image, offsets []int) Float3 {
	if len(offsets) == 0 {
		return Float3{}
	}

	if a.Linear {
		var sr, sg, sb float64
		for _, off := range offsets {
			c := img.Pix[off/3]
			sr += float64(Linearize(c.R))
			sg += float64(Linearize(c.G))
			sb += float64(Linearize(c.B))
		}
		n := float64(len(offsets))
		return ColorRGB{
			R: Delinearize(sr / n),
			G: Delinearize(sg / n),
			B: Delinearize(sb / n),
		}.ToFloat3()
	}

	var sr, sg, sb int
	for _, off := range offsets {
		c := img.Pix[off/3]
		sr += int(c.R)
		sg += int(c.G)
		sb += int(c.B)
	}
	n := len(offsets)
	return ColorRGB{
		R: uint8((sr + n/2) / n),
		G: uint8((sg + n/2) / n),
		B: uint8((sb + n/2) / n),
	}.ToFloat3()
}
