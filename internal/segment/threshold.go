// Package segment splits images into regions: global, Otsu and adaptive
// thresholding, K-means colour clustering, seeded region growing,
// connected-component labelling and a gradient-based watershed
// approximation.
package segment

import (
	"math"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

func binarize(buf *pixbuf.Buffer, fg func(i int) bool) *pixbuf.Buffer {
	src := buf.Raw()
	out := make([]uint8, len(src))
	w := buf.Width()
	parallel.Rows(buf.Height(), func(start, end int) {
		for p := start * w; p < end*w; p++ {
			i := p * pixbuf.Channels
			var v uint8
			if fg(i) {
				v = 255
			}
			out[i], out[i+1], out[i+2], out[i+3] = v, v, v, src[i+3]
		}
	})
	return pixbuf.Wrap(w, buf.Height(), out)
}

// Threshold marks pixels whose mean of R, G and B is >= t as 255 and the
// rest as 0.
func Threshold(buf *pixbuf.Buffer, t float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Threshold", buf); err != nil {
		return nil, err
	}
	if math.IsNaN(t) {
		return nil, pixbuf.OutOfRange("Threshold", "threshold", t, "must be a number")
	}
	return binarize(buf, func(i int) bool { return buf.Intensity(i) >= t }), nil
}

// Histogram counts rounded intensities.
func Histogram(buf *pixbuf.Buffer) [256]int {
	var hist [256]int
	src := buf.Raw()
	for i := 0; i < len(src); i += pixbuf.Channels {
		hist[int(math.Round(buf.Intensity(i)))]++
	}
	return hist
}

// OtsuLevel returns the threshold for Threshold chosen by Otsu's method.
// The first t maximising wB·wF·(mB−mF)², with levels <= t as background, is
// found and t+1 is returned so that Threshold puts level t in the
// background. A single-level image yields 0.
func OtsuLevel(buf *pixbuf.Buffer) (int, error) {
	if err := pixbuf.RequireBuffer("OtsuLevel", buf); err != nil {
		return 0, err
	}
	return otsuFromHistogram(Histogram(buf), buf.Pixels()), nil
}

func otsuFromHistogram(hist [256]int, total int) int {
	sum := 0.0
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumB, wB, best float64
	level := 0
	for t, n := range hist {
		wB += float64(n)
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * n)
		mB := sumB / wB
		mF := (sum - sumB) / wF
		v := wB * wF * (mB - mF) * (mB - mF)
		if v > best {
			best = v
			level = t + 1
		}
	}
	return level
}

func Otsu(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	level, err := OtsuLevel(buf)
	if err != nil {
		return nil, err
	}
	return Threshold(buf, float64(level))
}

// Adaptive marks a pixel as foreground when its intensity is >= the mean of
// its blockSize x blockSize neighbourhood (clamp-to-edge) minus c.
func Adaptive(buf *pixbuf.Buffer, blockSize int, c float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Adaptive", buf); err != nil {
		return nil, err
	}
	if err := pixbuf.RequireOddSize("Adaptive", "blockSize", blockSize); err != nil {
		return nil, err
	}
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return nil, pixbuf.OutOfRange("Adaptive", "c", c, "must be finite")
	}

	// Channel sums r+g+b are integers, so block sums stay exact and the
	// comparison s/3 >= S/(3n) - c becomes s·n >= S - 3cn.
	w, h := buf.Width(), buf.Height()
	src := buf.Raw()
	sums := make([]int, w*h)
	for p := range sums {
		i := p * pixbuf.Channels
		sums[p] = int(src[i]) + int(src[i+1]) + int(src[i+2])
	}
	half := blockSize / 2
	rows := make([]int, w*h)
	parallel.Rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				s := 0
				for dx := -half; dx <= half; dx++ {
					s += sums[y*w+pixbuf.ClampIndex(x+dx, w)]
				}
				rows[y*w+x] = s
			}
		}
	})
	n := float64(blockSize * blockSize)
	block := make([]int, w*h)
	parallel.Rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				s := 0
				for dy := -half; dy <= half; dy++ {
					s += rows[pixbuf.ClampIndex(y+dy, h)*w+x]
				}
				block[y*w+x] = s
			}
		}
	})

	return binarize(buf, func(i int) bool {
		p := i / pixbuf.Channels
		return float64(sums[p])*n >= float64(block[p])-3*c*n
	}), nil
}
