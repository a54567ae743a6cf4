// Package pyramid builds multi-scale image pyramids.
package pyramid

import (
	"pixelforge/internal/convolve"
	"pixelforge/internal/pixbuf"
)

// binomial is the 1D factor of the [1 2 1; 2 4 2; 1 2 1]/16 blur applied
// before decimation.
var binomial = []float64{0.25, 0.5, 0.25}

// Downsample blurs with the 3x3 binomial kernel (clamp-to-edge) and keeps
// every second pixel, halving each dimension (rounded down).
func Downsample(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Downsample", buf); err != nil {
		return nil, err
	}
	w, h := buf.Width()/2, buf.Height()/2
	if w == 0 || h == 0 {
		return nil, pixbuf.OutOfRange("Downsample", "size", buf.String(), "image too small to halve")
	}
	blurred := convolve.SeparableFloats(buf.Floats(), binomial, binomial)
	out := pixbuf.NewFloats(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := ((2*y)*blurred.Width + 2*x) * pixbuf.Channels
			dst := (y*w + x) * pixbuf.Channels
			copy(out.Data[dst:dst+pixbuf.Channels], blurred.Data[src:src+pixbuf.Channels])
		}
	}
	return out.Quantize(), nil
}

// Upsample resizes to width x height by nearest-neighbour lookup at
// floor(x·w/width), floor(y·h/height).
func Upsample(buf *pixbuf.Buffer, width, height int) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Upsample", buf); err != nil {
		return nil, err
	}
	if width < 1 || height < 1 {
		return nil, pixbuf.OutOfRange("Upsample", "size", [2]int{width, height}, "must be at least 1x1")
	}
	return nearest(buf, width, height), nil
}

// GaussianPyramid returns levels images, the first being a copy of buf.
func GaussianPyramid(buf *pixbuf.Buffer, levels int) ([]*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("GaussianPyramid", buf); err != nil {
		return nil, err
	}
	if levels < 1 {
		return nil, pixbuf.OutOfRange("GaussianPyramid", "levels", levels, "must be >= 1")
	}
	pyr := make([]*pixbuf.Buffer, 0, levels)
	pyr = append(pyr, pixbuf.Wrap(buf.Width(), buf.Height(), buf.Pix()))
	for i := 1; i < levels; i++ {
		next, err := Downsample(pyr[i-1])
		if err != nil {
			return nil, err
		}
		pyr = append(pyr, next)
	}
	return pyr, nil
}

// LaplacianPyramid stores each level as current − upsample(next) + 128 and
// ends with the coarsest Gaussian level.
func LaplacianPyramid(buf *pixbuf.Buffer, levels int) ([]*pixbuf.Buffer, error) {
	gauss, err := GaussianPyramid(buf, levels)
	if err != nil {
		return nil, err
	}
	pyr := make([]*pixbuf.Buffer, 0, levels)
	for i := 0; i < levels-1; i++ {
		cur := gauss[i]
		up := nearest(gauss[i+1], cur.Width(), cur.Height())
		pyr = append(pyr, combine(cur, up, -1))
	}
	return append(pyr, gauss[levels-1]), nil
}

// Reconstruct inverts LaplacianPyramid. It is exact wherever no level
// difference was clipped.
func Reconstruct(pyr []*pixbuf.Buffer) (*pixbuf.Buffer, error) {
	if len(pyr) == 0 {
		return nil, pixbuf.Invalid("Reconstruct", "pyramid", 0, "no levels")
	}
	for _, l := range pyr {
		if err := pixbuf.RequireBuffer("Reconstruct", l); err != nil {
			return nil, err
		}
	}
	result := pyr[len(pyr)-1]
	for i := len(pyr) - 2; i >= 0; i-- {
		up := nearest(result, pyr[i].Width(), pyr[i].Height())
		result = combine(pyr[i], up, 1)
	}
	return result, nil
}

// combine computes a + sign·b − sign·128 on RGB, clamped, keeping a's alpha.
func combine(a, b *pixbuf.Buffer, sign int) *pixbuf.Buffer {
	pa, pb := a.Raw(), b.Raw()
	out := make([]uint8, len(pa))
	for i := 0; i < len(pa); i += pixbuf.Channels {
		for c := 0; c < 3; c++ {
			v := int(pa[i+c]) + sign*int(pb[i+c]) - sign*128
			out[i+c] = uint8(min(max(v, 0), 255))
		}
		out[i+3] = pa[i+3]
	}
	return pixbuf.Wrap(a.Width(), a.Height(), out)
}
