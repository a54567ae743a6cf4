package compression

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelforge/internal/pixbuf"
)

func TestDCTRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	var in Block
	for i := range in {
		for j := range in[i] {
			in[i][j] = rng.Float64()*255 - 128
		}
	}
	back := IDCT(DCT(in))
	for i := range in {
		for j := range in[i] {
			assert.InDelta(t, in[i][j], back[i][j], 1e-9)
		}
	}
}

func TestDCTConstantBlockIsDCOnly(t *testing.T) {
	var in Block
	for i := range in {
		for j := range in[i] {
			in[i][j] = 10
		}
	}
	coef := DCT(in)
	assert.InDelta(t, 80, coef[0][0], 1e-9)
	for i := range coef {
		for j := range coef[i] {
			if i+j > 0 {
				assert.InDelta(t, 0, coef[i][j], 1e-9)
			}
		}
	}
}

func TestJPEGStyleUniform(t *testing.T) {
	// DC = 8·(100−128) = −224 quantises to −225 with step 5, giving 99.875.
	src := pixbuf.Uniform(10, 9, 100, 128, 100, 77)
	out, err := JPEGStyle(src, 50)
	require.NoError(t, err)
	assert.True(t, out.Equal(src))
}

func mse(a, b *pixbuf.Buffer) float64 {
	pa, pb := a.Raw(), b.Raw()
	var s float64
	for i := range pa {
		if i%pixbuf.Channels == 3 {
			continue
		}
		d := float64(pa[i]) - float64(pb[i])
		s += d * d
	}
	return s / float64(a.Pixels()*3)
}

func TestJPEGStyleQualityOrdering(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 5))
	pix := make([]uint8, 16*16*pixbuf.Channels)
	for i := range pix {
		pix[i] = uint8(rng.IntN(256))
	}
	src, err := pixbuf.FromPix(16, 16, pix)
	require.NoError(t, err)

	hi, err := JPEGStyle(src, 100)
	require.NoError(t, err)
	lo, err := JPEGStyle(src, 5)
	require.NoError(t, err)
	assert.Less(t, mse(src, hi), mse(src, lo))

	raw := hi.Raw()
	for i := 3; i < len(raw); i += pixbuf.Channels {
		assert.Equal(t, pix[i], raw[i])
	}

	_, err = JPEGStyle(src, 101)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
	_, err = JPEGStyle(src, math.NaN())
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
}

func TestRunLengthRoundTrip(t *testing.T) {
	src, err := pixbuf.FromPix(4, 1, []uint8{
		10, 10, 10, 255,
		10, 10, 10, 255,
		20, 20, 20, 255,
		10, 10, 10, 255,
	})
	require.NoError(t, err)
	rl, err := RunLengthEncode(src)
	require.NoError(t, err)
	assert.Equal(t, []Run{{10, 2}, {20, 1}, {10, 1}}, rl.Runs)
	assert.Equal(t, 4, rl.Len())

	back, err := RunLengthDecode(rl)
	require.NoError(t, err)
	assert.True(t, back.Equal(src))
}

func TestRunLengthEncodeRoundsAverage(t *testing.T) {
	// (1+2+2)/3 = 1.67 -> 2; (1+1+2)/3 = 1.33 -> 1
	src, err := pixbuf.FromPix(2, 1, []uint8{1, 2, 2, 0, 1, 1, 2, 0})
	require.NoError(t, err)
	rl, err := RunLengthEncode(src)
	require.NoError(t, err)
	assert.Equal(t, []Run{{2, 1}, {1, 1}}, rl.Runs)
}

func TestRunLengthDecodeRejectsShortRuns(t *testing.T) {
	_, err := RunLengthDecode(&RunLength{Width: 2, Height: 2, Runs: []Run{{5, 3}}})
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
	_, err = RunLengthDecode(&RunLength{Width: 1, Height: 1, Runs: []Run{{5, 0}, {5, 1}}})
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
	_, err = RunLengthDecode(nil)
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
}
