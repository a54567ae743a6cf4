package pixbuf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/draw"
)

var rawMagic = [4]byte{'P', 'F', 'R', 'B'}

// maxRawSide bounds decoded dimensions so a corrupt header cannot trigger a
// huge allocation.
const maxRawSide = 1 << 15

// WriteRaw stores the buffer as a zstd stream of magic, width, height and the
// RGBA samples.
func WriteRaw(w io.Writer, b *Buffer) error {
	if b == nil {
		return Invalid("WriteRaw", "buffer", nil, "buffer is nil")
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}

	var header [12]byte
	copy(header[:4], rawMagic[:])
	binary.LittleEndian.PutUint32(header[4:8], uint32(b.width))
	binary.LittleEndian.PutUint32(header[8:12], uint32(b.height))

	if _, err := enc.Write(header[:]); err != nil {
		enc.Close()
		return fmt.Errorf("write raw header: %w", err)
	}
	if _, err := enc.Write(b.pix); err != nil {
		enc.Close()
		return fmt.Errorf("write raw samples: %w", err)
	}
	return enc.Close()
}

// ReadRaw decodes a stream produced by WriteRaw.
func ReadRaw(r io.Reader) (*Buffer, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	var header [12]byte
	if _, err := io.ReadFull(dec, header[:]); err != nil {
		return nil, fmt.Errorf("read raw header: %w", err)
	}
	if [4]byte(header[:4]) != rawMagic {
		return nil, Invalid("ReadRaw", "magic", string(header[:4]), "not a raw pixel buffer")
	}
	width := int(binary.LittleEndian.Uint32(header[4:8]))
	height := int(binary.LittleEndian.Uint32(header[8:12]))
	if width > maxRawSide || height > maxRawSide {
		return nil, Invalid("ReadRaw", "dimensions", fmt.Sprintf("%dx%d", width, height), "exceeds maximum side")
	}

	pix := make([]uint8, width*height*Channels)
	if _, err := io.ReadFull(dec, pix); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, Invalid("ReadRaw", "samples", width*height, "stream truncated")
		}
		return nil, fmt.Errorf("read raw samples: %w", err)
	}
	return Wrap(width, height, pix), nil
}

// FromImage converts any image.Image to a Buffer. Sources are normalised to
// non-premultiplied RGBA.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != bounds.Dx()*Channels {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}
	pix := make([]uint8, len(nrgba.Pix))
	copy(pix, nrgba.Pix)
	return Wrap(bounds.Dx(), bounds.Dy(), pix)
}

// ToImage returns a copy of the buffer as an *image.NRGBA.
func (b *Buffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.pix)
	return img
}
