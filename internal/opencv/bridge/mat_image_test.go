package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"pixelforge/internal/pixbuf"
)

func TestBufferMatRoundTrip(t *testing.T) {
	src, err := pixbuf.FromPix(2, 1, []uint8{10, 20, 30, 255, 200, 150, 100, 50})
	require.NoError(t, err)

	mat, err := BufferToMat(src)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, gocv.MatTypeCV8UC4, mat.Type())
	assert.Equal(t, uint8(30), mat.GetUCharAt(0, 0))
	assert.Equal(t, uint8(10), mat.GetUCharAt(0, 2))

	back, err := MatToBuffer(mat)
	require.NoError(t, err)
	assert.True(t, src.Equal(back))
}

func TestMatToBufferGray(t *testing.T) {
	mat := gocv.NewMatWithSize(1, 2, gocv.MatTypeCV8UC1)
	defer mat.Close()
	mat.SetUCharAt(0, 0, 0)
	mat.SetUCharAt(0, 1, 77)

	buf, err := MatToBuffer(mat)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 255, 77, 77, 77, 255}, buf.Raw())
}

func TestEncodeDecode(t *testing.T) {
	src := pixbuf.Uniform(3, 2, 40, 80, 120, 255)
	mat, err := BufferToMat(src)
	require.NoError(t, err)
	defer mat.Close()

	png, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	require.NoError(t, err)
	defer png.Close()

	got, err := Decode(png.GetBytes())
	require.NoError(t, err)
	assert.True(t, src.Equal(got))
}

func TestRejects(t *testing.T) {
	_, err := MatToBuffer(gocv.NewMat())
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)

	_, err = BufferToMat(nil)
	assert.ErrorIs(t, err, pixbuf.ErrInvalidInput)
}
