package pipeline

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelforge/internal/algorithms"
	"pixelforge/internal/config"
	"pixelforge/internal/logger"
	"pixelforge/internal/pixbuf"
)

func gradient(t *testing.T, w, h int) *pixbuf.Buffer {
	t.Helper()
	pix := make([]uint8, 0, w*h*pixbuf.Channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix = append(pix, uint8(x*16), uint8(y*16), 90, 255)
		}
	}
	b, err := pixbuf.FromPix(w, h, pix)
	require.NoError(t, err)
	return b
}

func newCoordinator(opts Options) *Coordinator {
	return NewCoordinator(algorithms.NewManager(logger.Nop{}, 1), logger.Nop{}, opts)
}

func TestLoadProcessSave(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	src := gradient(t, 8, 6)
	require.NoError(t, imaging.Save(src.ToImage(), in))

	c := newCoordinator(Options{})
	r, err := OpenFile(in)
	require.NoError(t, err)
	loaded, err := c.LoadImage(r)
	require.NoError(t, r.Close())
	require.NoError(t, err)
	assert.Equal(t, "png", loaded.Format)
	assert.True(t, src.Equal(loaded.Buffer))

	rec, err := config.ParseRecipe(strings.NewReader("steps:\n  - op: invert\n"))
	require.NoError(t, err)
	out, pm, err := c.ProcessRecipe(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, 1, pm.Steps)
	require.NotNil(t, pm.Quality)
	assert.Greater(t, pm.Quality.MSE, 0.0)
	assert.Same(t, out, c.GetProcessedImage())
	r0, _, _, a0 := out.Buffer.RGBA(0, 0)
	assert.Equal(t, uint8(255), r0)
	assert.Equal(t, uint8(255), a0)

	outPath := filepath.Join(dir, "out.png")
	w, err := CreateFile(outPath)
	require.NoError(t, err)
	require.NoError(t, c.SaveImage(w, out))
	require.NoError(t, w.Close())

	r, err = OpenFile(outPath)
	require.NoError(t, err)
	defer r.Close()
	again, err := c.loader.LoadFromReader(r)
	require.NoError(t, err)
	assert.True(t, out.Buffer.Equal(again.Buffer))
	assert.Equal(t, "out.png", again.OriginalURI.Name())
}

func TestSaveFormatFromURI(t *testing.T) {
	c := newCoordinator(Options{Quality: 90})
	require.NoError(t, c.SetImage(gradient(t, 4, 4)))

	path := filepath.Join(t.TempDir(), "out.jpg")
	w, err := CreateFile(path)
	require.NoError(t, err)
	require.NoError(t, c.SaveImage(w, c.GetOriginalImage()))
	require.NoError(t, w.Close())

	r, err := OpenFile(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := c.LoadImage(r)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", got.Format)
	assert.Equal(t, 4, got.Width())
}

func TestRawRoundTrip(t *testing.T) {
	c := newCoordinator(Options{})
	src, err := pixbuf.FromPix(2, 1, []uint8{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.SaveImageToWriter(&out, &ImageData{Buffer: src}, "PFR"))
	got, err := c.loader.LoadFromBytes(out.Bytes(), ".pfr")
	require.NoError(t, err)
	assert.True(t, src.Equal(got.Buffer))
	assert.Equal(t, "pfr", got.Format)
}

func TestSaveRejectsUnknownFormat(t *testing.T) {
	c := newCoordinator(Options{})
	err := c.SaveImageToWriter(&bytes.Buffer{}, &ImageData{Buffer: gradient(t, 2, 2)}, "xcf")
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	err = c.SaveImageToWriter(&bytes.Buffer{}, nil, "png")
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
}

func TestFallbackDecoder(t *testing.T) {
	garbage := []byte("not an image")

	_, err := newCoordinator(Options{}).loader.LoadFromBytes(garbage, ".png")
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	calls := 0
	c := newCoordinator(Options{Fallback: func(data []byte) (*pixbuf.Buffer, error) {
		calls++
		return pixbuf.Uniform(1, 1, 9, 9, 9, 255), nil
	}})
	got, err := c.loader.LoadFromBytes(garbage, ".exr")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "exr", got.Format)

	failing := errors.New("opencv: no codec")
	c = newCoordinator(Options{Fallback: func([]byte) (*pixbuf.Buffer, error) { return nil, failing }})
	_, err = c.loader.LoadFromBytes(garbage, "")
	assert.ErrorIs(t, err, failing)
}

func TestProcessSizeChangeHasNoQuality(t *testing.T) {
	c := newCoordinator(Options{})
	require.NoError(t, c.SetImage(gradient(t, 8, 8)))

	out, pm, err := c.ProcessImage(context.Background(), "scale", map[string]interface{}{"factor": 0.5})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Width())
	assert.Nil(t, pm.Quality)
	assert.Equal(t, 8, c.GetOriginalImage().Width())
}

func TestProcessErrors(t *testing.T) {
	c := newCoordinator(Options{})
	_, _, err := c.ProcessImage(context.Background(), "invert", nil)
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	require.NoError(t, c.SetImage(gradient(t, 4, 4)))
	_, _, err = c.ProcessImage(context.Background(), "median", map[string]interface{}{"size": 2})
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)

	_, _, err = c.Process(context.Background(), nil)
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	c.Cancel()
	_, _, err = c.ProcessImage(c.Context(), "invert", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, c.GetProcessedImage())

	assert.Error(t, c.SetImage(nil))
}
