package convolve

import (
	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// SeparableConvolve runs a horizontal pass with kx followed by a vertical
// pass with ky over R, G and B. The intermediate is kept unclamped, so the
// result matches Convolve2D with Outer(kx, ky) up to rounding.
func SeparableConvolve(buf *pixbuf.Buffer, kx, ky []float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("SeparableConvolve", buf); err != nil {
		return nil, err
	}
	if err := validate1D("SeparableConvolve", "kernelX", kx); err != nil {
		return nil, err
	}
	if err := validate1D("SeparableConvolve", "kernelY", ky); err != nil {
		return nil, err
	}
	return SeparableFloats(buf.Floats(), kx, ky).Quantize(), nil
}

// SeparableFloats is SeparableConvolve on a working image.
func SeparableFloats(src *pixbuf.Floats, kx, ky []float64) *pixbuf.Floats {
	return pass(pass(src, kx, true), ky, false)
}

func pass(src *pixbuf.Floats, k []float64, horizontal bool) *pixbuf.Floats {
	w, h := src.Width, src.Height
	out := pixbuf.NewFloats(w, h)
	center := len(k) / 2
	parallel.Rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				var r, g, b float64
				for i, wt := range k {
					var p int
					if horizontal {
						p = (y*w + pixbuf.ClampIndex(x+i-center, w)) * pixbuf.Channels
					} else {
						p = (pixbuf.ClampIndex(y+i-center, h)*w + x) * pixbuf.Channels
					}
					r += src.Data[p] * wt
					g += src.Data[p+1] * wt
					b += src.Data[p+2] * wt
				}
				o := (y*w + x) * pixbuf.Channels
				out.Data[o] = r
				out.Data[o+1] = g
				out.Data[o+2] = b
				out.Data[o+3] = src.Data[o+3]
			}
		}
	})
	return out
}

// SeparablePlane applies kx along rows then ky along columns of a plane.
func SeparablePlane(src *pixbuf.Plane, kx, ky []float64) *pixbuf.Plane {
	w, h := src.Width, src.Height
	tmp := pixbuf.NewPlane(w, h)
	cx := len(kx) / 2
	parallel.Rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				s := 0.0
				for i, wt := range kx {
					s += src.Data[y*w+pixbuf.ClampIndex(x+i-cx, w)] * wt
				}
				tmp.Data[y*w+x] = s
			}
		}
	})

	out := pixbuf.NewPlane(w, h)
	cy := len(ky) / 2
	parallel.Rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				s := 0.0
				for i, wt := range ky {
					s += tmp.Data[pixbuf.ClampIndex(y+i-cy, h)*w+x] * wt
				}
				out.Data[y*w+x] = s
			}
		}
	})
	return out
}

// GaussianFloats blurs a working image with a separable Gaussian.
func GaussianFloats(src *pixbuf.Floats, sigma float64) (*pixbuf.Floats, error) {
	k, err := Gaussian1D(sigma)
	if err != nil {
		return nil, err
	}
	return SeparableFloats(src, k, k), nil
}

// GaussianPlane blurs a plane with a separable Gaussian.
func GaussianPlane(src *pixbuf.Plane, sigma float64) (*pixbuf.Plane, error) {
	k, err := Gaussian1D(sigma)
	if err != nil {
		return nil, err
	}
	return SeparablePlane(src, k, k), nil
}
