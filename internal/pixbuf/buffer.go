// Package pixbuf holds the canonical in-memory image used by every
// processing package: a width x height grid of interleaved R,G,B,A samples.
//
// A Buffer is never modified after construction. Operations read the source
// through Raw and build their result in a fresh slice handed over with Wrap.
package pixbuf

import (
	"fmt"
	"math"
)

const Channels = 4

type Buffer struct {
	width  int
	height int
	pix    []uint8
}

// New returns a zeroed (transparent black) buffer.
func New(width, height int) (*Buffer, error) {
	if width < 0 || height < 0 {
		return nil, Invalid("New", "dimensions", fmt.Sprintf("%dx%d", width, height), "must not be negative")
	}
	return &Buffer{width: width, height: height, pix: make([]uint8, width*height*Channels)}, nil
}

// FromPix copies pix into a new buffer. len(pix) must equal width*height*4.
func FromPix(width, height int, pix []uint8) (*Buffer, error) {
	if width < 0 || height < 0 {
		return nil, Invalid("FromPix", "dimensions", fmt.Sprintf("%dx%d", width, height), "must not be negative")
	}
	if len(pix) != width*height*Channels {
		return nil, Invalid("FromPix", "pix", len(pix), fmt.Sprintf("expected %d samples", width*height*Channels))
	}
	cp := make([]uint8, len(pix))
	copy(cp, pix)
	return &Buffer{width: width, height: height, pix: cp}, nil
}

// Wrap takes ownership of pix without copying. The caller must not touch pix
// afterwards.
func Wrap(width, height int, pix []uint8) *Buffer {
	if len(pix) != width*height*Channels {
		panic(fmt.Sprintf("pixbuf: Wrap got %d samples for %dx%d", len(pix), width, height))
	}
	return &Buffer{width: width, height: height, pix: pix}
}

// Uniform returns a buffer filled with a single colour.
func Uniform(width, height int, r, g, b, a uint8) *Buffer {
	pix := make([]uint8, width*height*Channels)
	for i := 0; i < len(pix); i += Channels {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = a
	}
	return &Buffer{width: width, height: height, pix: pix}
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

// Pixels returns width*height.
func (b *Buffer) Pixels() int { return b.width * b.height }

// Raw exposes the backing samples for reading. Callers must not write to it.
func (b *Buffer) Raw() []uint8 { return b.pix }

// Pix returns a copy of the samples.
func (b *Buffer) Pix() []uint8 {
	cp := make([]uint8, len(b.pix))
	copy(cp, b.pix)
	return cp
}

// Offset returns the index of the red sample of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.width + x) * Channels
}

func (b *Buffer) RGBA(x, y int) (r, g, bl, a uint8) {
	i := b.Offset(x, y)
	return b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]
}

// Intensity is the unweighted mean of R, G and B at sample offset i.
func (b *Buffer) Intensity(i int) float64 {
	return (float64(b.pix[i]) + float64(b.pix[i+1]) + float64(b.pix[i+2])) / 3
}

// Intensities returns the per-pixel mean of R, G and B.
func (b *Buffer) Intensities() []float64 {
	out := make([]float64, b.Pixels())
	for p := range out {
		out[p] = b.Intensity(p * Channels)
	}
	return out
}

func (b *Buffer) SameSize(o *Buffer) bool {
	return o != nil && b.width == o.width && b.height == o.height
}

func (b *Buffer) Equal(o *Buffer) bool {
	if !b.SameSize(o) {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(%dx%d)", b.width, b.height)
}

// Quantize converts a working value to a stored sample: clamp to [0,255] and
// round half to even. NaN maps to 0.
func Quantize(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}

// ClampIndex replaces an out-of-range coordinate by the nearest valid one.
func ClampIndex(i, size int) int {
	if i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}
