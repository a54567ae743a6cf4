// Package features detects edges, corners and lines.
package features

import (
	"math"

	"pixelforge/internal/convolve"
	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// Edge map values.
const (
	EdgeNone   uint8 = 0
	EdgeWeak   uint8 = 128
	EdgeStrong uint8 = 255
)

// Gradients returns the Sobel magnitude and direction (radians, atan2(gy, gx))
// of p. Border pixels are left at zero.
func Gradients(p *pixbuf.Plane) (mag, dir *pixbuf.Plane) {
	w, h := p.Width, p.Height
	mag = pixbuf.NewPlane(w, h)
	dir = pixbuf.NewPlane(w, h)
	parallel.Rows(h, func(start, end int) {
		for y := max(start, 1); y < min(end, h-1); y++ {
			for x := 1; x < w-1; x++ {
				var gx, gy float64
				for ky := 0; ky < 3; ky++ {
					for kx := 0; kx < 3; kx++ {
						v := p.At(x+kx-1, y+ky-1)
						gx += v * convolve.SobelX.At(ky, kx)
						gy += v * convolve.SobelY.At(ky, kx)
					}
				}
				mag.Data[y*w+x] = math.Hypot(gx, gy)
				dir.Data[y*w+x] = math.Atan2(gy, gx)
			}
		}
	})
	return mag, dir
}

// NonMaxSuppression keeps an interior magnitude only if it is >= both
// neighbours along the gradient direction quantised to 0°, 45°, 90° or 135°.
func NonMaxSuppression(mag, dir *pixbuf.Plane) *pixbuf.Plane {
	w, h := mag.Width, mag.Height
	out := pixbuf.NewPlane(w, h)
	parallel.Rows(h, func(start, end int) {
		for y := max(start, 1); y < min(end, h-1); y++ {
			for x := 1; x < w-1; x++ {
				i := y*w + x
				a := dir.Data[i] * 180 / math.Pi
				var n1, n2 float64
				switch {
				case (a >= -22.5 && a < 22.5) || a >= 157.5 || a < -157.5:
					n1, n2 = mag.Data[i-1], mag.Data[i+1]
				case (a >= 22.5 && a < 67.5) || (a >= -157.5 && a < -112.5):
					n1, n2 = mag.Data[i-w-1], mag.Data[i+w+1]
				case (a >= 67.5 && a < 112.5) || (a >= -112.5 && a < -67.5):
					n1, n2 = mag.Data[i-w], mag.Data[i+w]
				default:
					n1, n2 = mag.Data[i-w+1], mag.Data[i+w-1]
				}
				if m := mag.Data[i]; m >= n1 && m >= n2 {
					out.Data[i] = m
				}
			}
		}
	})
	return out
}

// Hysteresis classifies magnitudes as strong (>= high), weak (>= low) or
// none, then makes one raster pass over the interior promoting a weak pixel
// to strong if any 8-neighbour is strong at that moment and dropping it
// otherwise. Promotions made earlier in the pass are visible to later
// pixels; there is no further propagation.
func Hysteresis(mag *pixbuf.Plane, low, high float64) []uint8 {
	w, h := mag.Width, mag.Height
	edges := make([]uint8, len(mag.Data))
	for i, m := range mag.Data {
		switch {
		case m >= high:
			edges[i] = EdgeStrong
		case m >= low:
			edges[i] = EdgeWeak
		}
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if edges[i] != EdgeWeak {
				continue
			}
			edges[i] = EdgeNone
		scan:
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if (dx != 0 || dy != 0) && edges[i+dy*w+dx] == EdgeStrong {
						edges[i] = EdgeStrong
						break scan
					}
				}
			}
		}
	}
	return edges
}

// EdgeMap runs the Canny stages and returns the per-pixel edge classes.
func EdgeMap(buf *pixbuf.Buffer, low, high, sigma float64) ([]uint8, error) {
	if err := pixbuf.RequireBuffer("Canny", buf); err != nil {
		return nil, err
	}
	if math.IsNaN(low) || low < 0 {
		return nil, pixbuf.OutOfRange("Canny", "low", low, "must be >= 0")
	}
	if math.IsNaN(high) || high < low {
		return nil, pixbuf.OutOfRange("Canny", "high", high, "must be >= low")
	}
	blurred, err := convolve.GaussianFloats(buf.Floats(), sigma)
	if err != nil {
		return nil, err
	}
	gray := pixbuf.NewPlane(blurred.Width, blurred.Height)
	for p := range gray.Data {
		i := p * pixbuf.Channels
		gray.Data[p] = (blurred.Data[i] + blurred.Data[i+1] + blurred.Data[i+2]) / 3
	}
	mag, dir := Gradients(gray)
	return Hysteresis(NonMaxSuppression(mag, dir), low, high), nil
}

// Canny renders the edge map as an opaque black and white image.
func Canny(buf *pixbuf.Buffer, low, high, sigma float64) (*pixbuf.Buffer, error) {
	edges, err := EdgeMap(buf, low, high, sigma)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, len(edges)*pixbuf.Channels)
	for p, e := range edges {
		i := p * pixbuf.Channels
		out[i], out[i+1], out[i+2], out[i+3] = e, e, e, 255
	}
	return pixbuf.Wrap(buf.Width(), buf.Height(), out), nil
}
