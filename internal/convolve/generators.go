package convolve

import (
	"math"

	"pixelforge/internal/pixbuf"
)

// GaussianSize is the odd window used for a given sigma: ceil(6σ) with the
// low bit forced on.
func GaussianSize(sigma float64) int {
	return int(math.Ceil(sigma*6)) | 1
}

// Gaussian1D returns a sum-normalised sampled Gaussian of GaussianSize(sigma)
// taps.
func Gaussian1D(sigma float64) ([]float64, error) {
	if err := pixbuf.RequirePositive("Gaussian1D", "sigma", sigma); err != nil {
		return nil, err
	}
	size := GaussianSize(sigma)
	center := size / 2
	k := make([]float64, size)
	sum := 0.0
	for i := range k {
		d := float64(i - center)
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k, nil
}

// Gaussian2D returns a sum-normalised size x size Gaussian.
func Gaussian2D(size int, sigma float64) (Kernel, error) {
	if err := pixbuf.RequireOddSize("Gaussian2D", "size", size); err != nil {
		return Kernel{}, err
	}
	if err := pixbuf.RequirePositive("Gaussian2D", "sigma", sigma); err != nil {
		return Kernel{}, err
	}
	center := size / 2
	weights := make([]float64, size*size)
	sum := 0.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x-center), float64(y-center)
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			weights[y*size+x] = v
			sum += v
		}
	}
	for i := range weights {
		weights[i] /= sum
	}
	return Kernel{rows: size, cols: size, weights: weights}, nil
}

// LaplacianOfGaussian samples the LoG over GaussianSize(sigma) and scales it
// so the absolute weights sum to one. The centre weight is negative.
func LaplacianOfGaussian(sigma float64) (Kernel, error) {
	if err := pixbuf.RequirePositive("LaplacianOfGaussian", "sigma", sigma); err != nil {
		return Kernel{}, err
	}
	size := GaussianSize(sigma)
	center := size / 2
	s2 := sigma * sigma
	weights := make([]float64, size*size)
	abs := 0.0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x-center), float64(y-center)
			r2 := dx*dx + dy*dy
			v := -(1 / (math.Pi * s2 * s2)) * (1 - r2/(2*s2)) * math.Exp(-r2/(2*s2))
			weights[y*size+x] = v
			abs += math.Abs(v)
		}
	}
	for i := range weights {
		weights[i] /= abs
	}
	return Kernel{rows: size, cols: size, weights: weights}, nil
}

var (
	SobelX = mustKernel([][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	})
	SobelY = mustKernel([][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	})
	Emboss = mustKernel([][]float64{
		{-2, -1, 0},
		{-1, 1, 1},
		{0, 1, 2},
	})
	EdgeEnhance = mustKernel([][]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	})
	Identity = mustKernel([][]float64{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
)

// Sharpen returns the 4-neighbour sharpening kernel. Its weights sum to one
// for every amount.
func Sharpen(amount float64) (Kernel, error) {
	if math.IsNaN(amount) || amount < 0 {
		return Kernel{}, pixbuf.OutOfRange("Sharpen", "amount", amount, "must be >= 0")
	}
	return NewKernel([][]float64{
		{0, -amount, 0},
		{-amount, 1 + 4*amount, -amount},
		{0, -amount, 0},
	})
}
