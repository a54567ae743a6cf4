// Package spatial contains neighbourhood filters that work directly on pixel
// values: blurs, edge operators and sharpening.
package spatial

import (
	"math"
	"slices"

	"pixelforge/internal/convolve"
	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// GaussianBlur applies a separable Gaussian of GaussianSize(sigma) taps.
func GaussianBlur(buf *pixbuf.Buffer, sigma float64) (*pixbuf.Buffer, error) {
	k, err := convolve.Gaussian1D(sigma)
	if err != nil {
		return nil, err
	}
	return convolve.SeparableConvolve(buf, k, k)
}

// Median replaces each channel by the median of its size x size
// neighbourhood.
func Median(buf *pixbuf.Buffer, size int) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Median", buf); err != nil {
		return nil, err
	}
	if err := pixbuf.RequireOddSize("Median", "size", size); err != nil {
		return nil, err
	}

	w, h := buf.Width(), buf.Height()
	src := buf.Raw()
	out := make([]uint8, len(src))
	half := size / 2
	mid := size * size / 2

	parallel.Rows(h, func(start, end int) {
		var window [3][]uint8
		for c := range window {
			window[c] = make([]uint8, 0, size*size)
		}
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				for c := range window {
					window[c] = window[c][:0]
				}
				for dy := -half; dy <= half; dy++ {
					py := pixbuf.ClampIndex(y+dy, h)
					for dx := -half; dx <= half; dx++ {
						p := (py*w + pixbuf.ClampIndex(x+dx, w)) * pixbuf.Channels
						for c := range window {
							window[c] = append(window[c], src[p+c])
						}
					}
				}
				o := (y*w + x) * pixbuf.Channels
				for c := range window {
					slices.Sort(window[c])
					out[o+c] = window[c][mid]
				}
				out[o+3] = src[o+3]
			}
		}
	})
	return pixbuf.Wrap(w, h, out), nil
}

// Bilateral is an edge-preserving blur. Weights combine spatial distance
// and RGB distance to the centre pixel over a ceil(2·sigmaSpace)|1 window.
func Bilateral(buf *pixbuf.Buffer, sigmaSpace, sigmaColor float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Bilateral", buf); err != nil {
		return nil, err
	}
	if err := pixbuf.RequirePositive("Bilateral", "sigmaSpace", sigmaSpace); err != nil {
		return nil, err
	}
	if err := pixbuf.RequirePositive("Bilateral", "sigmaColor", sigmaColor); err != nil {
		return nil, err
	}

	w, h := buf.Width(), buf.Height()
	src := buf.Raw()
	out := pixbuf.NewFloats(w, h)
	half := (int(math.Ceil(sigmaSpace*2)) | 1) / 2
	ss := 2 * sigmaSpace * sigmaSpace
	sc := 2 * sigmaColor * sigmaColor

	parallel.Rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				o := (y*w + x) * pixbuf.Channels
				cr, cg, cb := float64(src[o]), float64(src[o+1]), float64(src[o+2])
				var sr, sg, sb, sw float64
				for dy := -half; dy <= half; dy++ {
					py := pixbuf.ClampIndex(y+dy, h)
					for dx := -half; dx <= half; dx++ {
						p := (py*w + pixbuf.ClampIndex(x+dx, w)) * pixbuf.Channels
						r, g, b := float64(src[p]), float64(src[p+1]), float64(src[p+2])
						dr, dg, db := r-cr, g-cg, b-cb
						wt := math.Exp(-float64(dx*dx+dy*dy)/ss) * math.Exp(-(dr*dr+dg*dg+db*db)/sc)
						sr += r * wt
						sg += g * wt
						sb += b * wt
						sw += wt
					}
				}
				out.Data[o] = sr / sw
				out.Data[o+1] = sg / sw
				out.Data[o+2] = sb / sw
				out.Data[o+3] = float64(src[o+3])
			}
		}
	})
	return out.Quantize(), nil
}

// Sobel writes the per-channel gradient magnitude sqrt(gx²+gy²), clamped to
// 255, with opaque alpha. Borders are clamp-to-edge.
func Sobel(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Sobel", buf); err != nil {
		return nil, err
	}
	f := buf.Floats()
	gx := convolve.ConvolveFloats(f, convolve.SobelX, convolve.AllChannels)
	gy := convolve.ConvolveFloats(f, convolve.SobelY, convolve.AllChannels)
	out := pixbuf.NewFloats(f.Width, f.Height)
	for i := 0; i < len(out.Data); i += pixbuf.Channels {
		for c := 0; c < 3; c++ {
			out.Data[i+c] = math.Hypot(gx.Data[i+c], gy.Data[i+c])
		}
		out.Data[i+3] = 255
	}
	return out.Quantize(), nil
}

// LaplacianOfGaussian convolves with the abs-normalised LoG kernel.
func LaplacianOfGaussian(buf *pixbuf.Buffer, sigma float64) (*pixbuf.Buffer, error) {
	k, err := convolve.LaplacianOfGaussian(sigma)
	if err != nil {
		return nil, err
	}
	return convolve.Convolve2D(buf, k, convolve.AllChannels)
}

// DifferenceOfGaussians returns |blur(σ1) − blur(σ2)| per channel with
// opaque alpha.
func DifferenceOfGaussians(buf *pixbuf.Buffer, sigma1, sigma2 float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("DifferenceOfGaussians", buf); err != nil {
		return nil, err
	}
	f := buf.Floats()
	a, err := convolve.GaussianFloats(f, sigma1)
	if err != nil {
		return nil, err
	}
	b, err := convolve.GaussianFloats(f, sigma2)
	if err != nil {
		return nil, err
	}
	out := pixbuf.NewFloats(f.Width, f.Height)
	for i := 0; i < len(out.Data); i += pixbuf.Channels {
		for c := 0; c < 3; c++ {
			out.Data[i+c] = math.Abs(a.Data[i+c] - b.Data[i+c])
		}
		out.Data[i+3] = 255
	}
	return out.Quantize(), nil
}

func Sharpen(buf *pixbuf.Buffer, amount float64) (*pixbuf.Buffer, error) {
	k, err := convolve.Sharpen(amount)
	if err != nil {
		return nil, err
	}
	return convolve.Convolve2D(buf, k, convolve.AllChannels)
}

func Emboss(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return convolve.Convolve2D(buf, convolve.Emboss, convolve.AllChannels)
}

func EdgeEnhance(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return convolve.Convolve2D(buf, convolve.EdgeEnhance, convolve.AllChannels)
}
