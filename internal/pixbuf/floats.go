package pixbuf

// Floats is a mutable RGBA working image with float64 samples. Multi-pass
// operations keep their intermediates here so nothing is clamped or rounded
// until the final Quantize.
type Floats struct {
	Width  int
	Height int
	Data   []float64
}

func NewFloats(width, height int) *Floats {
	return &Floats{Width: width, Height: height, Data: make([]float64, width*height*Channels)}
}

// Floats widens the buffer into a working image.
func (b *Buffer) Floats() *Floats {
	f := NewFloats(b.width, b.height)
	for i, v := range b.pix {
		f.Data[i] = float64(v)
	}
	return f
}

// Quantize writes the working image back into a Buffer.
func (f *Floats) Quantize() *Buffer {
	pix := make([]uint8, len(f.Data))
	for i, v := range f.Data {
		pix[i] = Quantize(v)
	}
	return Wrap(f.Width, f.Height, pix)
}

// Plane is a single-channel float image, used for gray levels, gradients
// and responses.
type Plane struct {
	Width  int
	Height int
	Data   []float64
}

func NewPlane(width, height int) *Plane {
	return &Plane{Width: width, Height: height, Data: make([]float64, width*height)}
}

// IntensityPlane returns the mean of R, G and B for every pixel.
func (b *Buffer) IntensityPlane() *Plane {
	return &Plane{Width: b.width, Height: b.height, Data: b.Intensities()}
}

func (p *Plane) At(x, y int) float64 { return p.Data[y*p.Width+x] }

// AtClamped reads with clamp-to-edge.
func (p *Plane) AtClamped(x, y int) float64 {
	return p.Data[ClampIndex(y, p.Height)*p.Width+ClampIndex(x, p.Width)]
}

// Gray replicates the plane into R, G, B with the given alpha.
func (p *Plane) Gray(alpha uint8) *Buffer {
	pix := make([]uint8, len(p.Data)*Channels)
	for i, v := range p.Data {
		q := Quantize(v)
		o := i * Channels
		pix[o] = q
		pix[o+1] = q
		pix[o+2] = q
		pix[o+3] = alpha
	}
	return Wrap(p.Width, p.Height, pix)
}

// GrayWithAlpha is Gray but takes the alpha channel from src.
func (p *Plane) GrayWithAlpha(src *Buffer) *Buffer {
	out := p.Gray(0)
	for i := 3; i < len(out.pix); i += Channels {
		out.pix[i] = src.pix[i]
	}
	return out
}
