package colorspace

import (
	"math"

	"pixelforge/internal/pixbuf"
)

func requireFinite(context, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return pixbuf.OutOfRange(context, field, v, "must be finite")
	}
	return nil
}

// Brightness adds amount to every colour channel.
func Brightness(buf *pixbuf.Buffer, amount float64) (*pixbuf.Buffer, error) {
	if err := requireFinite("Brightness", "amount", amount); err != nil {
		return nil, err
	}
	return pointOp("Brightness", buf, func(r, g, b float64) (float64, float64, float64) {
		return r + amount, g + amount, b + amount
	})
}

// Contrast scales channels about 128 by (factor+100)/100. factor = 0 is the
// identity and factor = -100 collapses to mid grey.
func Contrast(buf *pixbuf.Buffer, factor float64) (*pixbuf.Buffer, error) {
	if err := requireFinite("Contrast", "factor", factor); err != nil {
		return nil, err
	}
	if factor < -100 {
		return nil, pixbuf.OutOfRange("Contrast", "factor", factor, "must be >= -100")
	}
	c := (factor + 100) / 100
	intercept := 128 * (1 - c)
	return pointOp("Contrast", buf, func(r, g, b float64) (float64, float64, float64) {
		return c*r + intercept, c*g + intercept, c*b + intercept
	})
}

// Saturation moves each channel away from (amount > 1) or towards
// (amount < 1) the pixel's luma.
func Saturation(buf *pixbuf.Buffer, amount float64) (*pixbuf.Buffer, error) {
	if err := requireFinite("Saturation", "amount", amount); err != nil {
		return nil, err
	}
	return pointOp("Saturation", buf, func(r, g, b float64) (float64, float64, float64) {
		y := Luma(r, g, b)
		return y + amount*(r-y), y + amount*(g-y), y + amount*(b-y)
	})
}

// Hue rotates the HSV hue by degrees.
func Hue(buf *pixbuf.Buffer, degrees float64) (*pixbuf.Buffer, error) {
	if err := requireFinite("Hue", "degrees", degrees); err != nil {
		return nil, err
	}
	return pointOp("Hue", buf, func(r, g, b float64) (float64, float64, float64) {
		h, s, v := RGBToHSV(r, g, b)
		h = math.Mod(h+degrees/360, 1)
		if h < 0 {
			h++
		}
		return HSVToRGB(h, s, v)
	})
}

func Invert(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return pointOp("Invert", buf, func(r, g, b float64) (float64, float64, float64) {
		return 255 - r, 255 - g, 255 - b
	})
}

func Sepia(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return pointOp("Sepia", buf, func(r, g, b float64) (float64, float64, float64) {
		return 0.393*r + 0.769*g + 0.189*b,
			0.349*r + 0.686*g + 0.168*b,
			0.272*r + 0.534*g + 0.131*b
	})
}
