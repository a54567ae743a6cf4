package spectral

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/mjibson/go-dsp/fft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"

	"pixelforge/internal/pixbuf"
)

func randomSeq(n int, seed uint64) []complex128 {
	rng := rand.New(rand.NewPCG(seed, 99))
	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(rng.Float64()*200-100, rng.Float64()*200-100)
	}
	return x
}

func assertClose(t *testing.T, want, got []complex128, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		scale := math.Max(1, cmplx.Abs(want[i]))
		assert.LessOrEqual(t, cmplx.Abs(want[i]-got[i])/scale, tol, "index %d: want %v got %v", i, want[i], got[i])
	}
}

func TestFFTRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 64, 256} {
		x := randomSeq(n, uint64(n))
		f, err := FFT(x)
		require.NoError(t, err)
		back, err := IFFT(f)
		require.NoError(t, err)
		assertClose(t, x, back, 1e-9)
	}
}

func TestFFTMatchesGoDSP(t *testing.T) {
	x := randomSeq(128, 3)
	got, err := FFT(x)
	require.NoError(t, err)
	assertClose(t, fft.FFT(x), got, 1e-9)
}

func TestFFTMatchesGonum(t *testing.T) {
	x := randomSeq(32, 5)
	got, err := FFT(x)
	require.NoError(t, err)
	want := fourier.NewCmplxFFT(len(x)).Coefficients(nil, x)
	assertClose(t, want, got, 1e-9)
}

func TestFFTImpulse(t *testing.T) {
	x := make([]complex128, 8)
	x[0] = 1
	f, err := FFT(x)
	require.NoError(t, err)
	for _, v := range f {
		assert.InDelta(t, 1, real(v), 1e-12)
		assert.InDelta(t, 0, imag(v), 1e-12)
	}
}

func TestFFTRejectsNonPowerOfTwo(t *testing.T) {
	_, err := FFT(make([]complex128, 6))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
	_, err = IFFT(make([]complex128, 3))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	_, err = FFT2D(NewGrid(4, 3))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
}

func TestFFTLeavesInputUntouched(t *testing.T) {
	x := randomSeq(16, 8)
	orig := append([]complex128(nil), x...)
	_, err := FFT(x)
	require.NoError(t, err)
	assert.Equal(t, orig, x)
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128}
	for in, want := range cases {
		assert.Equal(t, want, NextPowerOfTwo(in), "NextPowerOfTwo(%d)", in)
	}
	assert.True(t, IsPowerOfTwo(1))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(12))
}

func TestFFT2DRoundTripAndOrder(t *testing.T) {
	g := NewGrid(8, 4)
	copy(g.Data, randomSeq(32, 11))

	f, err := FFT2D(g)
	require.NoError(t, err)

	// Columns first must give the same result as rows first.
	alt := g.Clone()
	alt.columns(transform)
	alt.rows(transform)
	assertClose(t, f.Data, alt.Data, 1e-9)

	back, err := IFFT2D(f)
	require.NoError(t, err)
	assertClose(t, g.Data, back.Data, 1e-9)
}

func TestShiftInvolution(t *testing.T) {
	g := NewGrid(8, 4)
	copy(g.Data, randomSeq(32, 21))
	assert.Equal(t, g.Data, Shift(Shift(g)).Data)

	shifted := Shift(g)
	assert.Equal(t, g.At(0, 0), shifted.At(4, 2))
}

func TestBufferRoundTripThroughSpectrum(t *testing.T) {
	pix := make([]uint8, 5*3*pixbuf.Channels)
	for i := range pix {
		pix[i] = uint8((i * 13) % 256)
	}
	buf, err := pixbuf.FromPix(5, 3, pix)
	require.NoError(t, err)

	g, err := FromBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, 8, g.Width)
	assert.Equal(t, 4, g.Height)
	assert.Equal(t, complex128(0), g.At(7, 3))

	f, err := FFT2D(g)
	require.NoError(t, err)
	back, err := IFFT2D(f)
	require.NoError(t, err)
	out, err := ToBuffer(back, 5, 3)
	require.NoError(t, err)

	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			r, gr, b, a := out.RGBA(x, y)
			want := pixbuf.Quantize(buf.Intensity(buf.Offset(x, y)))
			assert.Equal(t, want, r)
			assert.Equal(t, r, gr)
			assert.Equal(t, r, b)
			assert.Equal(t, uint8(255), a)
		}
	}
}

func TestMagnitudeSpectrumPeaksAtCentre(t *testing.T) {
	buf := pixbuf.Uniform(8, 8, 100, 100, 100, 255)
	mag, err := Spectrum(buf)
	require.NoError(t, err)

	r, _, _, _ := mag.RGBA(4, 4)
	assert.Equal(t, uint8(255), r)
	r, _, _, _ = mag.RGBA(0, 0)
	assert.Equal(t, uint8(0), r)
}
