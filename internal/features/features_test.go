package features

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelforge/internal/pixbuf"
)

func stepImage(t *testing.T, w, h, edge int) *pixbuf.Buffer {
	t.Helper()
	pix := make([]uint8, 0, w*h*pixbuf.Channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if x >= edge {
				v = 255
			}
			pix = append(pix, v, v, v, 255)
		}
	}
	b, err := pixbuf.FromPix(w, h, pix)
	require.NoError(t, err)
	return b
}

func squareImage(t *testing.T, size, lo, hi int) *pixbuf.Buffer {
	t.Helper()
	pix := make([]uint8, 0, size*size*pixbuf.Channels)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(0)
			if x >= lo && x <= hi && y >= lo && y <= hi {
				v = 255
			}
			pix = append(pix, v, v, v, 255)
		}
	}
	b, err := pixbuf.FromPix(size, size, pix)
	require.NoError(t, err)
	return b
}

func plane(w, h int, data ...float64) *pixbuf.Plane {
	p := pixbuf.NewPlane(w, h)
	copy(p.Data, data)
	return p
}

func TestHysteresisSinglePass(t *testing.T) {
	// Promotion follows raster order: a weak run right of a strong pixel is
	// fully promoted, a weak pixel left of one is not.
	forward := plane(5, 3,
		0, 0, 0, 0, 0,
		0, 200, 100, 100, 0,
		0, 0, 0, 0, 0,
	)
	edges := Hysteresis(forward, 50, 150)
	assert.Equal(t, []uint8{0, 255, 255, 255, 0}, edges[5:10])

	backward := plane(5, 3,
		0, 0, 0, 0, 0,
		0, 100, 100, 200, 0,
		0, 0, 0, 0, 0,
	)
	edges = Hysteresis(backward, 50, 150)
	assert.Equal(t, []uint8{0, 0, 255, 255, 0}, edges[5:10])
}

func TestNonMaxSuppression(t *testing.T) {
	dir := pixbuf.NewPlane(3, 3)
	kept := NonMaxSuppression(plane(3, 3, 0, 0, 0, 5, 10, 5, 0, 0, 0), dir)
	assert.Equal(t, 10.0, kept.At(1, 1))

	suppressed := NonMaxSuppression(plane(3, 3, 0, 0, 0, 5, 10, 20, 0, 0, 0), dir)
	assert.Equal(t, 0.0, suppressed.At(1, 1))
	assert.Equal(t, 0.0, suppressed.At(2, 1))
}

func TestCannyStep(t *testing.T) {
	src := stepImage(t, 12, 12, 6)
	out, err := Canny(src, 50, 150, 1)
	require.NoError(t, err)

	edgeCols := map[int]bool{}
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			r, g, b, a := out.RGBA(x, y)
			assert.Contains(t, []uint8{0, 255}, r)
			assert.Equal(t, r, g)
			assert.Equal(t, r, b)
			assert.Equal(t, uint8(255), a)
			if r == 255 {
				edgeCols[x] = true
				assert.NotZero(t, y)
				assert.NotEqual(t, 11, y)
			}
		}
	}
	assert.NotEmpty(t, edgeCols)
	for x := range edgeCols {
		assert.Contains(t, []int{5, 6}, x)
	}
}

func TestCannyFlatHasNoEdges(t *testing.T) {
	out, err := Canny(pixbuf.Uniform(8, 8, 90, 120, 30, 10), 10, 20, 1)
	require.NoError(t, err)
	assert.True(t, out.Equal(pixbuf.Uniform(8, 8, 0, 0, 0, 255)))
}

func TestCannyValidation(t *testing.T) {
	src := stepImage(t, 8, 8, 4)
	_, err := Canny(src, 100, 50, 1)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
	_, err = Canny(src, -1, 50, 1)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
	_, err = Canny(src, 50, 100, 0)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
}

func TestHarrisFindsSquareCorners(t *testing.T) {
	src := squareImage(t, 16, 4, 11)
	pts, err := Corners(src, 0.5, 0.04)
	require.NoError(t, err)
	require.NotEmpty(t, pts)

	corners := [][2]int{{4, 4}, {11, 4}, {4, 11}, {11, 11}}
	for _, p := range pts {
		near := false
		for _, c := range corners {
			if abs(p[0]-c[0]) <= 2 && abs(p[1]-c[1]) <= 2 {
				near = true
			}
		}
		assert.True(t, near, "point %v is not near a corner", p)
	}

	out, err := Harris(src, 0.5, 0.04)
	require.NoError(t, err)
	r, g, b, a := out.RGBA(0, 0)
	assert.Equal(t, []uint8{0, 0, 0, 255}, []uint8{r, g, b, a})
	r, g, b, _ = out.RGBA(pts[0][0], pts[0][1])
	assert.Equal(t, []uint8{255, 0, 0}, []uint8{r, g, b})
}

func TestHarrisResponseEdgeIsNegative(t *testing.T) {
	resp, err := HarrisResponse(stepImage(t, 10, 10, 5), 0.04)
	require.NoError(t, err)
	assert.Less(t, resp.At(5, 5), 0.0)
	assert.Equal(t, 0.0, resp.At(1, 5))
	assert.Equal(t, 0.0, resp.At(0, 0))

	_, err = HarrisResponse(stepImage(t, 10, 10, 5), -1)
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
}

func TestHoughIsCannyEdgeMap(t *testing.T) {
	src := stepImage(t, 16, 16, 8)
	a, err := Hough(src)
	require.NoError(t, err)
	b, err := Canny(src, 50, 150, 1.4)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestHoughLinesVerticalStep(t *testing.T) {
	src := stepImage(t, 32, 32, 16)
	lines, err := HoughLines(src, DefaultHoughOptions())
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	top := lines[0]
	assert.Equal(t, 0.0, top.Theta)
	assert.Contains(t, []float64{15, 16}, top.Rho)
	assert.GreaterOrEqual(t, top.Votes, 20)
	for i := 1; i < len(lines); i++ {
		assert.LessOrEqual(t, lines[i].Votes, lines[i-1].Votes)
	}

	_, err = HoughLines(src, HoughOptions{ThetaSteps: 0, MaxLines: 1})
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)
}

func TestDrawLines(t *testing.T) {
	src := pixbuf.Uniform(10, 10, 0, 0, 0, 255)
	out, err := DrawLines(src, []Line{{Rho: 5, Theta: 0}}, color.RGBA{255, 0, 0, 255}, 2)
	require.NoError(t, err)
	assert.True(t, out.SameSize(src))

	r, _, _, _ := out.RGBA(5, 5)
	assert.Greater(t, r, uint8(0))
	r, _, _, _ = out.RGBA(0, 5)
	assert.Equal(t, uint8(0), r)
	// The source is untouched.
	r, _, _, _ = src.RGBA(5, 5)
	assert.Equal(t, uint8(0), r)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
