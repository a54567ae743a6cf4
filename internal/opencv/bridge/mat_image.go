// Package bridge converts between OpenCV matrices and pixel buffers.
package bridge

import (
	"fmt"

	"gocv.io/x/gocv"

	"pixelforge/internal/pixbuf"
)

// MatToBuffer copies an 8-bit gray, BGR or BGRA Mat into an RGBA buffer.
func MatToBuffer(mat gocv.Mat) (*pixbuf.Buffer, error) {
	if mat.Empty() {
		return nil, pixbuf.Invalid("MatToBuffer", "mat", nil, "Mat is empty")
	}
	rows, cols := mat.Rows(), mat.Cols()

	var code gocv.ColorConversionCode
	switch mat.Type() {
	case gocv.MatTypeCV8UC1:
		code = gocv.ColorGrayToRGBA
	case gocv.MatTypeCV8UC3:
		code = gocv.ColorBGRToRGBA
	case gocv.MatTypeCV8UC4:
		code = gocv.ColorBGRAToRGBA
	default:
		return nil, pixbuf.Invalid("MatToBuffer", "type", int(mat.Type()), "unsupported Mat type")
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(mat, &rgba, code)
	if rgba.Empty() {
		return nil, fmt.Errorf("convert Mat to RGBA: %w", pixbuf.ErrInvalidInput)
	}
	return pixbuf.FromPix(cols, rows, rgba.ToBytes())
}

// BufferToMat returns a BGRA Mat. The caller owns it and must Close it.
func BufferToMat(buf *pixbuf.Buffer) (gocv.Mat, error) {
	if err := pixbuf.RequireBuffer("BufferToMat", buf); err != nil {
		return gocv.Mat{}, err
	}
	rgba, err := gocv.NewMatFromBytes(buf.Height(), buf.Width(), gocv.MatTypeCV8UC4, buf.Pix())
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("create Mat: %w", err)
	}
	defer rgba.Close()

	bgra := gocv.NewMat()
	gocv.CvtColor(rgba, &bgra, gocv.ColorRGBAToBGRA)
	if bgra.Empty() {
		bgra.Close()
		return gocv.Mat{}, fmt.Errorf("convert buffer to BGRA: %w", pixbuf.ErrInvalidInput)
	}
	return bgra, nil
}

// Decode decodes an encoded image with OpenCV, keeping any alpha channel.
func Decode(data []byte) (*pixbuf.Buffer, error) {
	if len(data) == 0 {
		return nil, pixbuf.Invalid("Decode", "data", 0, "no image data")
	}
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return nil, fmt.Errorf("decode image with OpenCV: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, pixbuf.Invalid("Decode", "data", len(data), "OpenCV could not decode image")
	}
	return MatToBuffer(mat)
}
