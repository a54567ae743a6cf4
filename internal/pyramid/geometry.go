package pyramid

import (
	"fmt"
	"math"
	"strings"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

type Interpolation int

const (
	Nearest Interpolation = iota
	Bilinear
)

func (i Interpolation) String() string {
	if i == Nearest {
		return "nearest"
	}
	return "bilinear"
}

func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(s) {
	case "nearest":
		return Nearest, nil
	case "bilinear", "":
		return Bilinear, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q: %w", s, pixbuf.ErrInvalidInput)
}

// Scale resizes by factor to floor(w·factor) x floor(h·factor).
func Scale(buf *pixbuf.Buffer, factor float64, interp Interpolation) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Scale", buf); err != nil {
		return nil, err
	}
	if err := pixbuf.RequirePositive("Scale", "factor", factor); err != nil {
		return nil, err
	}
	if math.IsInf(factor, 1) {
		return nil, pixbuf.OutOfRange("Scale", "factor", factor, "must be finite")
	}
	w := int(math.Floor(float64(buf.Width()) * factor))
	h := int(math.Floor(float64(buf.Height()) * factor))
	if w < 1 || h < 1 {
		return nil, pixbuf.OutOfRange("Scale", "factor", factor, "result would be empty")
	}
	if interp == Nearest {
		return nearest(buf, w, h), nil
	}
	return bilinear(buf, w, h), nil
}

func nearest(buf *pixbuf.Buffer, width, height int) *pixbuf.Buffer {
	src := buf.Raw()
	sx := float64(buf.Width()) / float64(width)
	sy := float64(buf.Height()) / float64(height)
	out := make([]uint8, width*height*pixbuf.Channels)
	parallel.Rows(height, func(start, end int) {
		for y := start; y < end; y++ {
			srcY := int(float64(y) * sy)
			for x := 0; x < width; x++ {
				s := buf.Offset(int(float64(x)*sx), srcY)
				d := (y*width + x) * pixbuf.Channels
				copy(out[d:d+pixbuf.Channels], src[s:s+pixbuf.Channels])
			}
		}
	})
	return pixbuf.Wrap(width, height, out)
}

// bilinear samples at x·(w−1)/width so the last source column is only
// approached, never reached.
func bilinear(buf *pixbuf.Buffer, width, height int) *pixbuf.Buffer {
	src := buf.Raw()
	w, h := buf.Width(), buf.Height()
	sx := float64(w-1) / float64(width)
	sy := float64(h-1) / float64(height)
	out := make([]uint8, width*height*pixbuf.Channels)
	parallel.Rows(height, func(start, end int) {
		for y := start; y < end; y++ {
			fy := float64(y) * sy
			y1 := int(fy)
			y2 := min(y1+1, h-1)
			dy := fy - float64(y1)
			for x := 0; x < width; x++ {
				fx := float64(x) * sx
				x1 := int(fx)
				x2 := min(x1+1, w-1)
				dx := fx - float64(x1)
				i11, i12 := buf.Offset(x1, y1), buf.Offset(x2, y1)
				i21, i22 := buf.Offset(x1, y2), buf.Offset(x2, y2)
				d := (y*width + x) * pixbuf.Channels
				for c := 0; c < pixbuf.Channels; c++ {
					v := float64(src[i11+c])*(1-dx)*(1-dy) +
						float64(src[i12+c])*dx*(1-dy) +
						float64(src[i21+c])*(1-dx)*dy +
						float64(src[i22+c])*dx*dy
					out[d+c] = pixbuf.Quantize(v)
				}
			}
		}
	})
	return pixbuf.Wrap(width, height, out)
}

// Rotate turns the image by degrees about its centre onto a canvas that
// fits the rotated bounds. Mapped pixels are opaque; uncovered ones are
// transparent black.
func Rotate(buf *pixbuf.Buffer, degrees float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Rotate", buf); err != nil {
		return nil, err
	}
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return nil, pixbuf.OutOfRange("Rotate", "degrees", degrees, "must be finite")
	}
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	w, h := buf.Width(), buf.Height()
	fw, fh := float64(w), float64(h)
	nw := int(math.Ceil(math.Abs(fw*cos) + math.Abs(fh*sin)))
	nh := int(math.Ceil(math.Abs(fw*sin) + math.Abs(fh*cos)))
	cx, cy := fw/2, fh/2
	ncx, ncy := float64(nw)/2, float64(nh)/2

	src := buf.Raw()
	out := make([]uint8, nw*nh*pixbuf.Channels)
	parallel.Rows(nh, func(start, end int) {
		for y := start; y < end; y++ {
			dy := float64(y) - ncy
			for x := 0; x < nw; x++ {
				dx := float64(x) - ncx
				sx := int(math.Floor(dx*cos + dy*sin + cx))
				sy := int(math.Floor(-dx*sin + dy*cos + cy))
				if sx < 0 || sx >= w || sy < 0 || sy >= h {
					continue
				}
				s := buf.Offset(sx, sy)
				d := (y*nw + x) * pixbuf.Channels
				out[d], out[d+1], out[d+2], out[d+3] = src[s], src[s+1], src[s+2], 255
			}
		}
	})
	return pixbuf.Wrap(nw, nh, out), nil
}

// BoxDownsample averages factor x factor blocks, all four channels.
func BoxDownsample(buf *pixbuf.Buffer, factor int) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("BoxDownsample", buf); err != nil {
		return nil, err
	}
	if factor < 1 {
		return nil, pixbuf.OutOfRange("BoxDownsample", "factor", factor, "must be >= 1")
	}
	w, h := buf.Width()/factor, buf.Height()/factor
	if w == 0 || h == 0 {
		return nil, pixbuf.OutOfRange("BoxDownsample", "factor", factor, "larger than the image")
	}
	src := buf.Raw()
	out := make([]uint8, w*h*pixbuf.Channels)
	n := float64(factor * factor)
	parallel.Rows(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				var sum [pixbuf.Channels]float64
				for dy := 0; dy < factor; dy++ {
					for dx := 0; dx < factor; dx++ {
						s := buf.Offset(x*factor+dx, y*factor+dy)
						for c := range sum {
							sum[c] += float64(src[s+c])
						}
					}
				}
				d := (y*w + x) * pixbuf.Channels
				for c, v := range sum {
					out[d+c] = pixbuf.Quantize(v / n)
				}
			}
		}
	})
	return pixbuf.Wrap(w, h, out), nil
}
