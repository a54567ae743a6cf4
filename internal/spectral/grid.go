package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// Grid is a row-major Height x Width array of complex samples.
type Grid struct {
	Width  int
	Height int
	Data   []complex128
}

func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, Data: make([]complex128, width*height)}
}

func (g *Grid) At(x, y int) complex128 { return g.Data[y*g.Width+x] }

func (g *Grid) Clone() *Grid {
	cp := &Grid{Width: g.Width, Height: g.Height, Data: make([]complex128, len(g.Data))}
	copy(cp.Data, g.Data)
	return cp
}

func (g *Grid) checkPow2(context string) error {
	if !IsPowerOfTwo(g.Width) || !IsPowerOfTwo(g.Height) {
		return pixbuf.Invalid(context, "grid", fmt.Sprintf("%dx%d", g.Width, g.Height), "dimensions must be powers of two")
	}
	return nil
}

// FFT2D transforms every row, then every column. The column pass starts only
// after all rows are done.
func FFT2D(g *Grid) (*Grid, error) {
	if err := g.checkPow2("FFT2D"); err != nil {
		return nil, err
	}
	out := g.Clone()
	out.rows(transform)
	out.columns(transform)
	return out, nil
}

// IFFT2D inverts FFT2D.
func IFFT2D(g *Grid) (*Grid, error) {
	if err := g.checkPow2("IFFT2D"); err != nil {
		return nil, err
	}
	out := g.Clone()
	out.rows(inverse)
	out.columns(inverse)
	return out, nil
}

func (g *Grid) rows(fn func(a, tw []complex128)) {
	tw := twiddles(g.Width)
	parallel.Rows(g.Height, func(start, end int) {
		for y := start; y < end; y++ {
			fn(g.Data[y*g.Width:(y+1)*g.Width], tw)
		}
	})
}

func (g *Grid) columns(fn func(a, tw []complex128)) {
	tw := twiddles(g.Height)
	parallel.Rows(g.Width, func(start, end int) {
		col := make([]complex128, g.Height)
		for x := start; x < end; x++ {
			for y := range col {
				col[y] = g.Data[y*g.Width+x]
			}
			fn(col, tw)
			for y, v := range col {
				g.Data[y*g.Width+x] = v
			}
		}
	})
}

// Shift rotates the grid by (Width/2, Height/2) so the zero frequency moves
// to the centre. It is its own inverse for even dimensions.
func Shift(g *Grid) *Grid {
	out := NewGrid(g.Width, g.Height)
	midX, midY := g.Width/2, g.Height/2
	for y := 0; y < g.Height; y++ {
		sy := (y + midY) % g.Height
		for x := 0; x < g.Width; x++ {
			out.Data[y*g.Width+x] = g.Data[sy*g.Width+(x+midX)%g.Width]
		}
	}
	return out
}

// FromBuffer converts the mean of R, G and B into a real-valued grid,
// zero-padded to power-of-two dimensions.
func FromBuffer(buf *pixbuf.Buffer) (*Grid, error) {
	if err := pixbuf.RequireBuffer("FromBuffer", buf); err != nil {
		return nil, err
	}
	w, h := buf.Width(), buf.Height()
	g := NewGrid(NextPowerOfTwo(w), NextPowerOfTwo(h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Data[y*g.Width+x] = complex(buf.Intensity(buf.Offset(x, y)), 0)
		}
	}
	return g, nil
}

// ToBuffer crops the grid to width x height and writes the clamped real part
// to R, G and B with opaque alpha.
func ToBuffer(g *Grid, width, height int) (*pixbuf.Buffer, error) {
	if width <= 0 || height <= 0 || width > g.Width || height > g.Height {
		return nil, pixbuf.Invalid("ToBuffer", "crop", fmt.Sprintf("%dx%d", width, height),
			fmt.Sprintf("must fit inside %dx%d", g.Width, g.Height))
	}
	p := pixbuf.NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p.Data[y*width+x] = real(g.Data[y*g.Width+x])
		}
	}
	return p.Gray(255), nil
}

// MagnitudeSpectrum renders log(1+|F|) of the shifted grid scaled so the
// largest value maps to 255.
func MagnitudeSpectrum(g *Grid) *pixbuf.Buffer {
	shifted := Shift(g)
	p := pixbuf.NewPlane(g.Width, g.Height)
	peak := 0.0
	for i, v := range shifted.Data {
		m := math.Log1p(cmplx.Abs(v))
		p.Data[i] = m
		peak = math.Max(peak, m)
	}
	if peak > 0 {
		for i := range p.Data {
			p.Data[i] = p.Data[i] / peak * 255
		}
	}
	return p.Gray(255)
}

// Spectrum is MagnitudeSpectrum of the padded transform of buf.
func Spectrum(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	g, err := FromBuffer(buf)
	if err != nil {
		return nil, err
	}
	f, err := FFT2D(g)
	if err != nil {
		return nil, err
	}
	return MagnitudeSpectrum(f), nil
}
