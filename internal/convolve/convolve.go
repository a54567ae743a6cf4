package convolve

import (
	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// Convolve2D applies k to the selected channel(s) of buf. Out-of-range taps
// read the nearest edge pixel. Weights are used as given; sums are clamped to
// [0,255]. Alpha is copied from the source, as are the unselected channels
// in single-channel mode.
func Convolve2D(buf *pixbuf.Buffer, k Kernel, ch Channel) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Convolve2D", buf); err != nil {
		return nil, err
	}
	if k.IsZero() {
		return nil, pixbuf.Invalid("Convolve2D", "kernel", "empty", "kernel must have at least one weight")
	}
	if !ch.valid() {
		return nil, pixbuf.OutOfRange("Convolve2D", "channel", int(ch), "must be -1 (all), 0, 1 or 2")
	}
	return ConvolveFloats(buf.Floats(), k, ch).Quantize(), nil
}

// ConvolveFloats is Convolve2D on a working image, without clamping.
func ConvolveFloats(src *pixbuf.Floats, k Kernel, ch Channel) *pixbuf.Floats {
	w, h := src.Width, src.Height
	out := pixbuf.NewFloats(w, h)
	copy(out.Data, src.Data)

	first, last := 0, 2
	if ch != AllChannels {
		first, last = int(ch), int(ch)
	}
	cx, cy := k.CenterX(), k.CenterY()

	parallel.Rows(h, func(start, end int) {
		var acc [3]float64
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				acc = [3]float64{}
				for ky := 0; ky < k.rows; ky++ {
					py := pixbuf.ClampIndex(y+ky-cy, h)
					row := py * w
					for kx := 0; kx < k.cols; kx++ {
						wt := k.weights[ky*k.cols+kx]
						if wt == 0 {
							continue
						}
						p := (row + pixbuf.ClampIndex(x+kx-cx, w)) * pixbuf.Channels
						for c := first; c <= last; c++ {
							acc[c] += src.Data[p+c] * wt
						}
					}
				}
				o := (y*w + x) * pixbuf.Channels
				for c := first; c <= last; c++ {
					out.Data[o+c] = acc[c]
				}
			}
		}
	})
	return out
}

// ConvolvePlane convolves a single-channel plane with clamp-to-edge borders.
func ConvolvePlane(src *pixbuf.Plane, k Kernel) *pixbuf.Plane {
	w, h := src.Width, src.Height
	out := pixbuf.NewPlane(w, h)
	cx, cy := k.CenterX(), k.CenterY()
	parallel.Rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				sum := 0.0
				for ky := 0; ky < k.rows; ky++ {
					row := pixbuf.ClampIndex(y+ky-cy, h) * w
					for kx := 0; kx < k.cols; kx++ {
						sum += src.Data[row+pixbuf.ClampIndex(x+kx-cx, w)] * k.weights[ky*k.cols+kx]
					}
				}
				out.Data[y*w+x] = sum
			}
		}
	})
	return out
}
