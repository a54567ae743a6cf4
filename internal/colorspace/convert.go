// Package colorspace implements per-pixel colour conversions and
// adjustments. Alpha is always copied from the source.
package colorspace

import (
	"math"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// Luma weights (ITU-R BT.601).
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// D65 reference white, scaled so Y = 100.
const (
	WhiteX = 95.047
	WhiteY = 100.0
	WhiteZ = 108.883
)

type pixelFunc func(r, g, b float64) (float64, float64, float64)

func pointOp(context string, buf *pixbuf.Buffer, fn pixelFunc) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer(context, buf); err != nil {
		return nil, err
	}
	src := buf.Raw()
	out := make([]uint8, len(src))
	w := buf.Width()
	parallel.Rows(buf.Height(), func(start, end int) {
		for i := start * w * pixbuf.Channels; i < end*w*pixbuf.Channels; i += pixbuf.Channels {
			r, g, b := fn(float64(src[i]), float64(src[i+1]), float64(src[i+2]))
			out[i] = pixbuf.Quantize(r)
			out[i+1] = pixbuf.Quantize(g)
			out[i+2] = pixbuf.Quantize(b)
			out[i+3] = src[i+3]
		}
	})
	return pixbuf.Wrap(w, buf.Height(), out), nil
}

func Luma(r, g, b float64) float64 {
	return LumaR*r + LumaG*g + LumaB*b
}

// Grayscale replaces R, G and B by the luma.
func Grayscale(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return pointOp("Grayscale", buf, func(r, g, b float64) (float64, float64, float64) {
		y := Luma(r, g, b)
		return y, y, y
	})
}

// RGBToHSV converts 0..255 channels to h, s, v in [0,1].
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r, g, b = r/255, g/255, b/255
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	delta := mx - mn
	v = mx
	if delta == 0 {
		return 0, 0, v
	}
	s = delta / mx
	switch mx {
	case r:
		h = (g - b) / delta
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	return h / 6, s, v
}

// HSVToRGB is the inverse of RGBToHSV, returning 0..255 channels. h = 1 is
// treated as h = 0.
func HSVToRGB(h, s, v float64) (r, g, b float64) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := v - c
	switch int(math.Floor(h*6)) % 6 {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	case 5:
		r, g, b = c, 0, x
	}
	return (r + m) * 255, (g + m) * 255, (b + m) * 255
}

// ToHSV stores h, s, v scaled to 0..255 in R, G and B.
func ToHSV(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return pointOp("ToHSV", buf, func(r, g, b float64) (float64, float64, float64) {
		h, s, v := RGBToHSV(r, g, b)
		return h * 255, s * 255, v * 255
	})
}

// FromHSV reads h, s, v scaled to 0..255 from R, G and B.
func FromHSV(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return pointOp("FromHSV", buf, func(h, s, v float64) (float64, float64, float64) {
		return HSVToRGB(h/255, s/255, v/255)
	})
}

func linearize(c float64) float64 {
	c /= 255
	if c > 0.04045 {
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

// RGBToXYZ converts sRGB channels to CIE XYZ with Y in 0..100.
func RGBToXYZ(r, g, b float64) (x, y, z float64) {
	r, g, b = linearize(r)*100, linearize(g)*100, linearize(b)*100
	x = r*0.4124 + g*0.3576 + b*0.1805
	y = r*0.2126 + g*0.7152 + b*0.0722
	z = r*0.0193 + g*0.1192 + b*0.9505
	return x, y, z
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116
}

// RGBToLAB converts sRGB channels to CIE L*a*b* against D65.
func RGBToLAB(r, g, b float64) (l, a, bb float64) {
	x, y, z := RGBToXYZ(r, g, b)
	fx, fy, fz := labF(x/WhiteX), labF(y/WhiteY), labF(z/WhiteZ)
	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)
}

// ToXYZ stores X, Y and Z (0..~109) in R, G and B.
func ToXYZ(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return pointOp("ToXYZ", buf, RGBToXYZ)
}

// ToLAB stores L·2.55, a+128 and b+128 in R, G and B.
func ToLAB(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return pointOp("ToLAB", buf, func(r, g, b float64) (float64, float64, float64) {
		l, a, bb := RGBToLAB(r, g, b)
		return l / 100 * 255, a + 128, bb + 128
	})
}
