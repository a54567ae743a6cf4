// Package metrics compares images and summarises their intensity
// distributions.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"pixelforge/internal/pixbuf"
)

// SSIM stabilisers for an 8-bit dynamic range.
var (
	ssimC1 = math.Pow(0.01*255, 2)
	ssimC2 = math.Pow(0.03*255, 2)
)

func checkPair(context string, a, b *pixbuf.Buffer) error {
	if err := pixbuf.RequireBuffer(context, a); err != nil {
		return err
	}
	if err := pixbuf.RequireBuffer(context, b); err != nil {
		return err
	}
	return pixbuf.RequireSameSize(context, a, b)
}

// MSE is the mean squared RGB difference; alpha is ignored.
func MSE(a, b *pixbuf.Buffer) (float64, error) {
	if err := checkPair("MSE", a, b); err != nil {
		return 0, err
	}
	pa, pb := a.Raw(), b.Raw()
	var sum int64
	for i := 0; i < len(pa); i += pixbuf.Channels {
		for c := 0; c < 3; c++ {
			d := int64(pa[i+c]) - int64(pb[i+c])
			sum += d * d
		}
	}
	return float64(sum) / float64(a.Pixels()*3), nil
}

// PSNR is 10·log10(255²/MSE) in dB, +Inf for identical images.
func PSNR(a, b *pixbuf.Buffer) (float64, error) {
	mse, err := MSE(a, b)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(255*255/mse), nil
}

// SSIM is the structural similarity of the grey (RGB mean) images computed
// over the whole frame as one window, with population statistics.
func SSIM(a, b *pixbuf.Buffer) (float64, error) {
	if err := checkPair("SSIM", a, b); err != nil {
		return 0, err
	}
	x, y := a.Intensities(), b.Intensities()
	mx, vx := stat.PopMeanVariance(x, nil)
	my, vy := stat.PopMeanVariance(y, nil)

	floats.AddConst(-mx, x)
	floats.AddConst(-my, y)
	cov := floats.Dot(x, y) / float64(len(x))

	num := (2*mx*my + ssimC1) * (2*cov + ssimC2)
	den := (mx*mx + my*my + ssimC1) * (vx + vy + ssimC2)
	return num / den, nil
}

// Histograms counts each channel and the rounded RGB mean.
type Histograms struct {
	R, G, B, Gray [256]int
}

func Histogram(buf *pixbuf.Buffer) (*Histograms, error) {
	if err := pixbuf.RequireBuffer("Histogram", buf); err != nil {
		return nil, err
	}
	h := &Histograms{}
	src := buf.Raw()
	for i := 0; i < len(src); i += pixbuf.Channels {
		h.R[src[i]]++
		h.G[src[i+1]]++
		h.B[src[i+2]]++
		h.Gray[int(math.Floor(buf.Intensity(i)+0.5))]++
	}
	return h, nil
}

// Entropy is the Shannon entropy in bits of the grey histogram.
func Entropy(buf *pixbuf.Buffer) (float64, error) {
	h, err := Histogram(buf)
	if err != nil {
		return 0, err
	}
	total := float64(buf.Pixels())
	p := make([]float64, len(h.Gray))
	for i, n := range h.Gray {
		p[i] = float64(n) / total
	}
	return stat.Entropy(p) / math.Ln2, nil
}

// Report bundles the full-reference comparison of two images.
type Report struct {
	MSE  float64 `json:"mse" yaml:"mse"`
	PSNR float64 `json:"psnr" yaml:"psnr"`
	SSIM float64 `json:"ssim" yaml:"ssim"`
}

func Compare(a, b *pixbuf.Buffer) (*Report, error) {
	mse, err := MSE(a, b)
	if err != nil {
		return nil, err
	}
	psnr, _ := PSNR(a, b)
	ssim, err := SSIM(a, b)
	if err != nil {
		return nil, err
	}
	return &Report{MSE: mse, PSNR: psnr, SSIM: ssim}, nil
}
