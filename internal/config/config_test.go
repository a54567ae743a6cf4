package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelforge/internal/algorithms"
	"pixelforge/internal/pixbuf"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte("log_level: debug\nquality: 80\nseed: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 80, cfg.Quality)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "png", cfg.Format)
	assert.Equal(t, Default().Workers, cfg.Workers)

	cfg, err = Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte("qualty: 80\n"))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	_, err = Parse([]byte("quality: 0\n"))
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)

	_, err = Parse([]byte("workers: 0\n"))
	assert.ErrorIs(t, err, pixbuf.ErrParameterOutOfRange)

	_, err = Parse([]byte("format: gif\n"))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixelforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: tiff\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiff", cfg.Format)
}

const recipeDoc = `
name: edges
steps:
  - op: grayscale
  - op: gaussian_blur
    params:
      sigma: 2
  - op: canny
    params:
      low: 20
      high: 60
`

func TestRecipeOperations(t *testing.T) {
	rec, err := ParseRecipe(strings.NewReader(recipeDoc))
	require.NoError(t, err)
	assert.Equal(t, "edges", rec.Name)
	require.Len(t, rec.Steps, 3)

	ops, err := rec.Operations(algorithms.NewManager(nil, 1))
	require.NoError(t, err)
	assert.Equal(t, []algorithms.Operation{
		algorithms.Grayscale{},
		algorithms.GaussianBlur{Sigma: 2},
		algorithms.Canny{Low: 20, High: 60, Sigma: 1.4},
	}, ops)
}

func TestRecipeRejects(t *testing.T) {
	_, err := ParseRecipe(strings.NewReader("steps: []\n"))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	_, err = ParseRecipe(strings.NewReader("steps:\n  - params: {sigma: 1}\n"))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	_, err = ParseRecipe(strings.NewReader("stages:\n  - op: invert\n"))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	rec, err := ParseRecipe(strings.NewReader("steps:\n  - op: median\n    params: {radius: 3}\n"))
	require.NoError(t, err)
	_, err = rec.Operations(algorithms.NewManager(nil, 1))
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
	assert.Contains(t, err.Error(), "step 1")
}
