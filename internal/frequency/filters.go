// Package frequency implements radially symmetric filters applied in the
// Fourier domain. Each filter converts the image to a padded grey grid,
// transforms it, multiplies the centred spectrum by a mask H(d) where d is
// the distance from the centre, and transforms back.
package frequency

import (
	"math"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
	"pixelforge/internal/spectral"
)

// Mask returns the gain for a frequency at distance d from the centre.
type Mask func(d float64) float64

// Apply runs the shift, mask, unshift pipeline with an arbitrary mask.
func Apply(buf *pixbuf.Buffer, mask Mask) (*pixbuf.Buffer, error) {
	g, err := spectral.FromBuffer(buf)
	if err != nil {
		return nil, err
	}
	f, err := spectral.FFT2D(g)
	if err != nil {
		return nil, err
	}
	shifted := spectral.Shift(f)

	cx, cy := float64(shifted.Width)/2, float64(shifted.Height)/2
	parallel.Rows(shifted.Height, func(start, end int) {
		for y := start; y < end; y++ {
			dy := float64(y) - cy
			for x := 0; x < shifted.Width; x++ {
				i := y*shifted.Width + x
				gain := mask(math.Hypot(float64(x)-cx, dy))
				if gain == 0 {
					shifted.Data[i] = 0
					continue
				}
				shifted.Data[i] *= complex(gain, 0)
			}
		}
	})

	back, err := spectral.IFFT2D(spectral.Shift(shifted))
	if err != nil {
		return nil, err
	}
	return spectral.ToBuffer(back, buf.Width(), buf.Height())
}

// LowPass keeps frequencies with d <= cutoff.
func LowPass(buf *pixbuf.Buffer, cutoff float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequirePositive("LowPass", "cutoff", cutoff); err != nil {
		return nil, err
	}
	return Apply(buf, func(d float64) float64 {
		if d > cutoff {
			return 0
		}
		return 1
	})
}

// HighPass removes frequencies with d < cutoff.
func HighPass(buf *pixbuf.Buffer, cutoff float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequirePositive("HighPass", "cutoff", cutoff); err != nil {
		return nil, err
	}
	return Apply(buf, func(d float64) float64 {
		if d < cutoff {
			return 0
		}
		return 1
	})
}

// BandPass keeps low <= d <= high.
func BandPass(buf *pixbuf.Buffer, low, high float64) (*pixbuf.Buffer, error) {
	if err := checkBand("BandPass", low, high); err != nil {
		return nil, err
	}
	return Apply(buf, func(d float64) float64 {
		if d < low || d > high {
			return 0
		}
		return 1
	})
}

// BandStop removes low <= d <= high.
func BandStop(buf *pixbuf.Buffer, low, high float64) (*pixbuf.Buffer, error) {
	if err := checkBand("BandStop", low, high); err != nil {
		return nil, err
	}
	return Apply(buf, func(d float64) float64 {
		if d >= low && d <= high {
			return 0
		}
		return 1
	})
}

func checkBand(context string, low, high float64) error {
	if math.IsNaN(low) || low < 0 {
		return pixbuf.OutOfRange(context, "low", low, "must be >= 0")
	}
	if math.IsNaN(high) || high <= low {
		return pixbuf.OutOfRange(context, "high", high, "must be greater than low")
	}
	return nil
}

// GaussianLowPass multiplies by exp(-d²/2σ²).
func GaussianLowPass(buf *pixbuf.Buffer, sigma float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequirePositive("GaussianLowPass", "sigma", sigma); err != nil {
		return nil, err
	}
	return Apply(buf, func(d float64) float64 {
		return math.Exp(-(d * d) / (2 * sigma * sigma))
	})
}

// GaussianHighPass multiplies by 1 - exp(-d²/2σ²).
func GaussianHighPass(buf *pixbuf.Buffer, sigma float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequirePositive("GaussianHighPass", "sigma", sigma); err != nil {
		return nil, err
	}
	return Apply(buf, func(d float64) float64 {
		return 1 - math.Exp(-(d*d)/(2*sigma*sigma))
	})
}

// ButterworthLowPass multiplies by 1/(1+(d/cutoff)^2n).
func ButterworthLowPass(buf *pixbuf.Buffer, cutoff float64, order int) (*pixbuf.Buffer, error) {
	if err := checkButterworth("ButterworthLowPass", cutoff, order); err != nil {
		return nil, err
	}
	return Apply(buf, func(d float64) float64 {
		return 1 / (1 + math.Pow(d/cutoff, float64(2*order)))
	})
}

// ButterworthHighPass multiplies by 1/(1+(cutoff/d)^2n); the DC term is
// removed.
func ButterworthHighPass(buf *pixbuf.Buffer, cutoff float64, order int) (*pixbuf.Buffer, error) {
	if err := checkButterworth("ButterworthHighPass", cutoff, order); err != nil {
		return nil, err
	}
	return Apply(buf, func(d float64) float64 {
		if d == 0 {
			return 0
		}
		return 1 / (1 + math.Pow(cutoff/d, float64(2*order)))
	})
}

func checkButterworth(context string, cutoff float64, order int) error {
	if err := pixbuf.RequirePositive(context, "cutoff", cutoff); err != nil {
		return err
	}
	if order < 1 {
		return pixbuf.OutOfRange(context, "order", order, "must be >= 1")
	}
	return nil
}
