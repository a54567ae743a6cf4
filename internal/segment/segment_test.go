package segment

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelforge/internal/pixbuf"
)

func fromLevels(t *testing.T, w, h int, levels []uint8) *pixbuf.Buffer {
	t.Helper()
	require.Len(t, levels, w*h)
	pix := make([]uint8, 0, w*h*pixbuf.Channels)
	for _, l := range levels {
		pix = append(pix, l, l, l, 255)
	}
	b, err := pixbuf.FromPix(w, h, pix)
	require.NoError(t, err)
	return b
}

func reds(b *pixbuf.Buffer) []uint8 {
	out := make([]uint8, 0, b.Pixels())
	raw := b.Raw()
	for i := 0; i < len(raw); i += pixbuf.Channels {
		out = append(out, raw[i])
	}
	return out
}

func TestThresholdIsBinary(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	pix := make([]uint8, 10*10*pixbuf.Channels)
	for i := range pix {
		pix[i] = uint8(rng.IntN(256))
	}
	src, err := pixbuf.FromPix(10, 10, pix)
	require.NoError(t, err)

	out, err := Threshold(src, 100)
	require.NoError(t, err)
	raw := out.Raw()
	for i := 0; i < len(raw); i += pixbuf.Channels {
		assert.Contains(t, []uint8{0, 255}, raw[i])
		assert.Equal(t, raw[i], raw[i+1])
		assert.Equal(t, raw[i], raw[i+2])
		assert.Equal(t, pix[i+3], raw[i+3])
	}
}

func TestThresholdUniformAtThresholdIsForeground(t *testing.T) {
	out, err := Threshold(pixbuf.Uniform(4, 4, 128, 128, 128, 255), 128)
	require.NoError(t, err)
	assert.True(t, out.Equal(pixbuf.Uniform(4, 4, 255, 255, 255, 255)))
}

func TestOtsuBimodal(t *testing.T) {
	levels := make([]uint8, 64)
	for i := range levels {
		levels[i] = 30
		if i%2 == 1 {
			levels[i] = 220
		}
	}
	src := fromLevels(t, 8, 8, levels)

	level, err := OtsuLevel(src)
	require.NoError(t, err)
	assert.Greater(t, level, 30)
	assert.Less(t, level, 220)

	out, err := Otsu(src)
	require.NoError(t, err)
	for i, v := range reds(out) {
		if levels[i] == 30 {
			assert.Equal(t, uint8(0), v)
		} else {
			assert.Equal(t, uint8(255), v)
		}
	}
}

func TestOtsuSingleLevel(t *testing.T) {
	level, err := OtsuLevel(pixbuf.Uniform(3, 3, 90, 90, 90, 255))
	require.NoError(t, err)
	assert.Equal(t, 0, level)
}

func TestAdaptiveUniformIsForeground(t *testing.T) {
	src := pixbuf.Uniform(7, 5, 33, 66, 99, 255)
	out, err := Adaptive(src, 3, 0)
	require.NoError(t, err)
	assert.True(t, out.Equal(pixbuf.Uniform(7, 5, 255, 255, 255, 255)))
}

func TestAdaptiveFindsLocalDip(t *testing.T) {
	src := fromLevels(t, 5, 1, []uint8{100, 100, 40, 100, 100})
	out, err := Adaptive(src, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 255, 0, 255, 255}, reds(out))

	_, err = Adaptive(src, 4, 2)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
}

func TestKMeansTwoColours(t *testing.T) {
	pix := make([]uint8, 0, 16*pixbuf.Channels)
	for i := 0; i < 16; i++ {
		if i < 8 {
			pix = append(pix, 250, 10, 10, 255)
		} else {
			pix = append(pix, 10, 10, 250, 255)
		}
	}
	src, err := pixbuf.FromPix(4, 4, pix)
	require.NoError(t, err)

	// Try several seeds; with k = 2 the result only differs when both
	// centroids start on the same colour.
	for seed := uint64(0); seed < 8; seed++ {
		cl, err := Cluster(src, 2, 5, rand.New(rand.NewPCG(seed, 1)))
		require.NoError(t, err)
		if cl.Labels[0] == cl.Labels[15] {
			continue
		}
		out, err := KMeans(src, 2, 5, rand.New(rand.NewPCG(seed, 1)))
		require.NoError(t, err)
		assert.True(t, out.Equal(src))
		return
	}
	t.Fatal("no seed separated the two colours")
}

func TestKMeansDeterministicWithSeed(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	pix := make([]uint8, 12*12*pixbuf.Channels)
	for i := range pix {
		pix[i] = uint8(rng.IntN(256))
	}
	src, err := pixbuf.FromPix(12, 12, pix)
	require.NoError(t, err)

	a, err := KMeans(src, 4, 6, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	b, err := KMeans(src, 4, 6, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	_, err = KMeans(src, 0, 6, rng)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
	_, err = KMeans(src, 2, 0, rng)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
}

func TestKMeansEmptyClusterKeepsCentroid(t *testing.T) {
	src := pixbuf.Uniform(3, 3, 60, 60, 60, 255)
	cl, err := Cluster(src, 3, 4, rand.New(rand.NewPCG(5, 5)))
	require.NoError(t, err)
	for _, c := range cl.Centroids {
		assert.Equal(t, [3]float64{60, 60, 60}, c)
	}
	for _, l := range cl.Labels {
		assert.Equal(t, 0, l)
	}
}

func TestRegionGrowFourConnected(t *testing.T) {
	src := fromLevels(t, 4, 3, []uint8{
		10, 10, 200, 10,
		10, 200, 10, 10,
		200, 10, 10, 10,
	})
	out, err := RegionGrow(src, 0, 0, 5)
	require.NoError(t, err)

	painted := func(x, y int) bool {
		r, g, b, _ := out.RGBA(x, y)
		return r == 255 && g == 0 && b == 0
	}
	assert.True(t, painted(0, 0))
	assert.True(t, painted(1, 0))
	assert.True(t, painted(0, 1))
	// Diagonal-only neighbours are not reached.
	assert.False(t, painted(3, 0))
	assert.False(t, painted(2, 1))
	assert.False(t, painted(2, 0))

	_, err = RegionGrow(src, 4, 0, 5)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
}

func TestLabelUnionFind(t *testing.T) {
	// A U shape: the two arms get different provisional labels and merge at
	// the bottom row.
	src := fromLevels(t, 3, 3, []uint8{
		255, 0, 255,
		255, 0, 255,
		255, 255, 255,
	})
	m, err := Label(src)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count)
	assert.Equal(t, 1, m.At(2, 0))
	assert.Equal(t, 0, m.At(1, 0))
	assert.Equal(t, []int{2, 7}, m.Sizes())
}

func TestLabelSeparateComponents(t *testing.T) {
	src := fromLevels(t, 4, 2, []uint8{
		200, 0, 0, 200,
		0, 200, 0, 200,
	})
	m, err := Label(src)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Count)
	assert.Equal(t, 1, m.At(0, 0))
	assert.Equal(t, 2, m.At(3, 0))
	assert.Equal(t, 3, m.At(1, 1))
	assert.Equal(t, 2, m.At(3, 1))
}

func TestConnectedComponentsColours(t *testing.T) {
	src := fromLevels(t, 3, 1, []uint8{200, 0, 200})
	out, err := ConnectedComponents(src, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	r, g, b, a := out.RGBA(1, 0)
	assert.Equal(t, []uint8{0, 0, 0, 255}, []uint8{r, g, b, a})

	_, err = ConnectedComponents(src, nil)
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
}

func TestWatershedEdges(t *testing.T) {
	src := fromLevels(t, 4, 3, []uint8{
		0, 0, 255, 255,
		0, 0, 255, 255,
		0, 0, 255, 255,
	})
	out, err := Watershed(src)
	require.NoError(t, err)
	r, _, _, a := out.RGBA(0, 1)
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(255), a)
	r, _, _, _ = out.RGBA(1, 1)
	assert.Equal(t, uint8(255), r)
}
