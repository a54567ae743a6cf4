package colorspace

import (
	"math/rand/v2"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelforge/internal/pixbuf"
)

func randomBuffer(t *testing.T, w, h int) *pixbuf.Buffer {
	t.Helper()
	rng := rand.New(rand.NewPCG(42, 7))
	pix := make([]uint8, w*h*pixbuf.Channels)
	for i := range pix {
		pix[i] = uint8(rng.IntN(256))
	}
	b, err := pixbuf.FromPix(w, h, pix)
	require.NoError(t, err)
	return b
}

func TestInvertIsInvolution(t *testing.T) {
	src := randomBuffer(t, 13, 9)
	once, err := Invert(src)
	require.NoError(t, err)
	twice, err := Invert(once)
	require.NoError(t, err)
	assert.True(t, twice.Equal(src))

	r, _, _, _ := once.RGBA(0, 0)
	r0, _, _, _ := src.RGBA(0, 0)
	assert.Equal(t, 255-r0, r)
}

func TestGrayscaleFixedPoint(t *testing.T) {
	src := randomBuffer(t, 16, 16)
	once, err := Grayscale(src)
	require.NoError(t, err)
	twice, err := Grayscale(once)
	require.NoError(t, err)
	assert.True(t, twice.Equal(once))
}

func TestGrayscaleLuma(t *testing.T) {
	src, err := pixbuf.FromPix(1, 1, []uint8{100, 200, 50, 9})
	require.NoError(t, err)
	out, err := Grayscale(src)
	require.NoError(t, err)
	r, g, b, a := out.RGBA(0, 0)
	// 29.9 + 117.4 + 5.7 = 153
	assert.Equal(t, []uint8{153, 153, 153, 9}, []uint8{r, g, b, a})
}

func TestRGBToHSVMatchesColorful(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		r, g, b := rng.IntN(256), rng.IntN(256), rng.IntN(256)
		h, s, v := RGBToHSV(float64(r), float64(g), float64(b))

		c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		wh, ws, wv := c.Hsv()
		assert.InDelta(t, wh, h*360, 1e-9, "rgb %d,%d,%d", r, g, b)
		assert.InDelta(t, ws, s, 1e-9)
		assert.InDelta(t, wv, v, 1e-9)

		rr, gg, bb := HSVToRGB(h, s, v)
		assert.InDelta(t, float64(r), rr, 1e-9)
		assert.InDelta(t, float64(g), gg, 1e-9)
		assert.InDelta(t, float64(b), bb, 1e-9)
	}
}

func TestHueRotation(t *testing.T) {
	red := pixbuf.Uniform(2, 2, 255, 0, 0, 255)

	green, err := Hue(red, 120)
	require.NoError(t, err)
	assert.True(t, green.Equal(pixbuf.Uniform(2, 2, 0, 255, 0, 255)))

	blue, err := Hue(red, -120)
	require.NoError(t, err)
	assert.True(t, blue.Equal(pixbuf.Uniform(2, 2, 0, 0, 255, 255)))

	src := randomBuffer(t, 8, 8)
	full, err := Hue(src, 360)
	require.NoError(t, err)
	assert.True(t, full.Equal(src))
}

func TestHSVRoundTripThroughBuffers(t *testing.T) {
	src := pixbuf.Uniform(3, 3, 255, 0, 0, 200)
	hsv, err := ToHSV(src)
	require.NoError(t, err)
	h, s, v, a := hsv.RGBA(1, 1)
	assert.Equal(t, []uint8{0, 255, 255, 200}, []uint8{h, s, v, a})

	back, err := FromHSV(hsv)
	require.NoError(t, err)
	assert.True(t, back.Equal(src))
}

func TestLABWhiteAndBlack(t *testing.T) {
	l, a, b := RGBToLAB(255, 255, 255)
	assert.InDelta(t, 100, l, 0.05)
	assert.InDelta(t, 0, a, 0.1)
	assert.InDelta(t, 0, b, 0.1)

	want := colorful.Color{R: 0.2, G: 0.4, B: 0.6}
	wl, wa, wb := want.Lab()
	l, a, b = RGBToLAB(0.2*255, 0.4*255, 0.6*255)
	assert.InDelta(t, wl*100, l, 0.1)
	assert.InDelta(t, wa*100, a, 0.5)
	assert.InDelta(t, wb*100, b, 0.5)

	out, err := ToLAB(pixbuf.Uniform(1, 1, 0, 0, 0, 255))
	require.NoError(t, err)
	lr, ar, br, _ := out.RGBA(0, 0)
	assert.Equal(t, []uint8{0, 128, 128}, []uint8{lr, ar, br})
}

func TestXYZWhite(t *testing.T) {
	x, y, z := RGBToXYZ(255, 255, 255)
	assert.InDelta(t, WhiteX, x, 0.05)
	assert.InDelta(t, WhiteY, y, 0.01)
	assert.InDelta(t, WhiteZ, z, 0.05)
}

func TestBrightnessContrastClamp(t *testing.T) {
	src := pixbuf.Uniform(1, 1, 10, 128, 250, 255)

	bright, err := Brightness(src, 20)
	require.NoError(t, err)
	r, g, b, _ := bright.RGBA(0, 0)
	assert.Equal(t, []uint8{30, 148, 255}, []uint8{r, g, b})

	flat, err := Contrast(src, -100)
	require.NoError(t, err)
	assert.True(t, flat.Equal(pixbuf.Uniform(1, 1, 128, 128, 128, 255)))

	same, err := Contrast(src, 0)
	require.NoError(t, err)
	assert.True(t, same.Equal(src))

	_, err = Contrast(src, -150)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
}

func TestSaturation(t *testing.T) {
	src := randomBuffer(t, 6, 6)
	gray, err := Grayscale(src)
	require.NoError(t, err)
	desat, err := Saturation(src, 0)
	require.NoError(t, err)
	assert.True(t, desat.Equal(gray))

	same, err := Saturation(src, 1)
	require.NoError(t, err)
	assert.True(t, same.Equal(src))
}

func TestSepiaClampsWhite(t *testing.T) {
	out, err := Sepia(pixbuf.Uniform(1, 1, 255, 255, 255, 255))
	require.NoError(t, err)
	r, g, b, _ := out.RGBA(0, 0)
	// 0.272+0.534+0.131 = 0.937 → 238.9
	assert.Equal(t, []uint8{255, 255, 239}, []uint8{r, g, b})
}
