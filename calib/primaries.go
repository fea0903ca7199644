package calib

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ledstream/core/engine/config"
	"github.com/ledstream/core/filter"
	"github.com/ledstream/core/ledmap"
)

// cubeWeights returns the eight trilinear interpolation weights for c,
// in the corner order config.PrimaryBlack..PrimaryWhite. Each weight is
// the volume of the sub-box opposite its corner, so the weights sum to
// 1 and, when each corner value equals the canonical RGB vertex it
// names, the weighted sum reproduces the input color exactly.
func cubeWeights(c ledmap.ColorRGB) [8]float64 {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	var w [8]float64
	w[config.PrimaryBlack] = (1 - r) * (1 - g) * (1 - b)
	w[config.PrimaryRed] = r * (1 - g) * (1 - b)
	w[config.PrimaryGreen] = (1 - r) * g * (1 - b)
	w[config.PrimaryBlue] = (1 - r) * (1 - g) * b
	w[config.PrimaryCyan] = (1 - r) * g * b
	w[config.PrimaryMagenta] = r * (1 - g) * b
	w[config.PrimaryYellow] = r * g * (1 - b)
	w[config.PrimaryWhite] = r * g * b
	return w
}

// primariesFilter implements the classic pipeline's step 3 (direct
// trilinear mix of the eight per-primary vectors) and the "new mode"
// multilinear decomposition (the same weights, each additionally
// scaled by its group's brightness factor before summing), selected
// by cal.Mode.
type primariesFilter struct {
	mode int
	// primaries is the 3x8 matrix whose columns are the eight
	// per-primary target vectors, in config.PrimaryBlack..PrimaryWhite
	// order; the new-mode pipeline scales its columns by groupScale
	// before every multiply.
	primaries  *mat.Dense
	groupScale [8]float64
	next       filter.Filter
}

func newPrimariesFilter(cal Calibration, next filter.Filter) *primariesFilter {
	data := make([]float64, 3*8)
	for col, p := range cal.Primaries {
		data[0*8+col] = float64(p[0])
		data[1*8+col] = float64(p[1])
		data[2*8+col] = float64(p[2])
	}
	f := &primariesFilter{mode: cal.Mode, primaries: mat.NewDense(3, 8, data), next: next}

	brightness := float64(cal.Brightness) / 100
	compensation := float64(cal.BrightnessCompensation) / 100
	scale := brightness * compensation
	for i := range f.groupScale {
		f.groupScale[i] = 1
	}
	for _, i := range []int{config.PrimaryRed, config.PrimaryGreen, config.PrimaryBlue,
		config.PrimaryCyan, config.PrimaryMagenta, config.PrimaryYellow, config.PrimaryWhite} {
		f.groupScale[i] = scale
	}
	return f
}

func (f *primariesFilter) Write(frame []ledmap.ColorRGB) error {
	out := make([]ledmap.ColorRGB, len(frame))

	var weights mat.VecDense
	weights.ReuseAsVec(8)
	var result mat.VecDense
	result.ReuseAsVec(3)

	for i, c := range frame {
		w := cubeWeights(c)
		for k := 0; k < 8; k++ {
			wk := w[k]
			if f.mode == config.CalibrationNew {
				wk *= f.groupScale[k]
			}
			weights.SetVec(k, wk)
		}
		result.MulVec(f.primaries, &weights)
		out[i] = ledmap.ColorRGB{R: clampByte(result.AtVec(0)), G: clampByte(result.AtVec(1)), B: clampByte(result.AtVec(2))}
	}
	return f.next.Write(out)
}

func (f *primariesFilter) Close() error { return f.next.Close() }
