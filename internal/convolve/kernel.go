// Package convolve implements 2D and separable convolution over pixel
// buffers with clamp-to-edge borders, plus the common kernel generators.
package convolve

import (
	"fmt"
	"math"
	"strings"

	"pixelforge/internal/pixbuf"
)

// Kernel is an immutable rows x cols weight grid. Its centre is
// (cols/2, rows/2) rounded down.
type Kernel struct {
	rows    int
	cols    int
	weights []float64
}

// NewKernel copies a rectangular weight grid. Empty, ragged or non-finite
// grids are rejected.
func NewKernel(grid [][]float64) (Kernel, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return Kernel{}, pixbuf.Invalid("NewKernel", "kernel", "empty", "kernel must have at least one weight")
	}
	cols := len(grid[0])
	weights := make([]float64, 0, len(grid)*cols)
	for r, row := range grid {
		if len(row) != cols {
			return Kernel{}, pixbuf.Invalid("NewKernel", fmt.Sprintf("row %d", r), len(row), fmt.Sprintf("expected %d columns", cols))
		}
		for _, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return Kernel{}, pixbuf.Invalid("NewKernel", "weight", w, "weights must be finite")
			}
		}
		weights = append(weights, row...)
	}
	return Kernel{rows: len(grid), cols: cols, weights: weights}, nil
}

func mustKernel(grid [][]float64) Kernel {
	k, err := NewKernel(grid)
	if err != nil {
		panic(err)
	}
	return k
}

// Outer returns the 2D kernel ky ⊗ kx, where kx runs along columns.
func Outer(kx, ky []float64) (Kernel, error) {
	if err := validate1D("Outer", "kernelX", kx); err != nil {
		return Kernel{}, err
	}
	if err := validate1D("Outer", "kernelY", ky); err != nil {
		return Kernel{}, err
	}
	weights := make([]float64, 0, len(kx)*len(ky))
	for _, wy := range ky {
		for _, wx := range kx {
			weights = append(weights, wx*wy)
		}
	}
	return Kernel{rows: len(ky), cols: len(kx), weights: weights}, nil
}

func (k Kernel) Rows() int           { return k.rows }
func (k Kernel) Cols() int           { return k.cols }
func (k Kernel) At(r, c int) float64 { return k.weights[r*k.cols+c] }
func (k Kernel) CenterX() int        { return k.cols / 2 }
func (k Kernel) CenterY() int        { return k.rows / 2 }
func (k Kernel) IsZero() bool        { return k.rows == 0 }

// Weights returns a copy of the weights in row-major order.
func (k Kernel) Weights() []float64 {
	cp := make([]float64, len(k.weights))
	copy(cp, k.weights)
	return cp
}

func (k Kernel) Sum() float64 {
	s := 0.0
	for _, w := range k.weights {
		s += w
	}
	return s
}

func validate1D(context, field string, k []float64) error {
	if len(k) == 0 {
		return pixbuf.Invalid(context, field, "empty", "kernel must have at least one weight")
	}
	for _, w := range k {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return pixbuf.Invalid(context, field, w, "weights must be finite")
		}
	}
	return nil
}

// Channel selects which colour channel a convolution writes.
type Channel int

const (
	AllChannels Channel = -1
	Red         Channel = 0
	Green       Channel = 1
	Blue        Channel = 2
)

func (c Channel) valid() bool {
	return c == AllChannels || (c >= Red && c <= Blue)
}

func (c Channel) String() string {
	switch c {
	case AllChannels:
		return "all"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

func ParseChannel(s string) (Channel, error) {
	for _, c := range []Channel{AllChannels, Red, Green, Blue} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	if s == "" {
		return AllChannels, nil
	}
	return 0, pixbuf.Invalid("ParseChannel", "channel", s, "must be all, red, green or blue")
}
