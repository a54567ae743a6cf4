package pipeline

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"pixelforge/internal/logger"
	"pixelforge/internal/pixbuf"
)

type imageLoader struct {
	logger   logger.Logger
	fallback Decoder
}

func (l *imageLoader) LoadFromReader(reader fyne.URIReadCloser) (*ImageData, error) {
	originalURI := reader.URI()

	data, err := io.ReadAll(bufio.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	imageData, err := l.LoadFromBytes(data, originalURI.Extension())
	if err != nil {
		return nil, err
	}
	imageData.OriginalURI = originalURI
	return imageData, nil
}

// LoadFromBytes decodes data. format is a file extension hint and only
// matters for raw buffers and for naming fallback-decoded images.
func (l *imageLoader) LoadFromBytes(data []byte, format string) (*ImageData, error) {
	hint := strings.TrimPrefix(strings.ToLower(format), ".")
	if hint == "pfr" {
		buf, err := pixbuf.ReadRaw(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode raw buffer: %w", err)
		}
		return &ImageData{Buffer: buf, Format: "pfr"}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		_, detected, cfgErr := image.DecodeConfig(bytes.NewReader(data))
		if cfgErr != nil {
			detected = hint
		}
		return &ImageData{Buffer: pixbuf.FromImage(img), Format: detected}, nil
	}
	if l.fallback == nil {
		return nil, fmt.Errorf("failed to decode image: %v: %w", err, pixbuf.ErrInvalidInput)
	}

	l.logger.Warning("ImageLoader", "standard decoders failed, trying fallback", map[string]interface{}{
		"error":  err.Error(),
		"format": hint,
	})
	buf, fbErr := l.fallback(data)
	if fbErr != nil {
		return nil, fmt.Errorf("failed to decode image: %v; fallback: %w", err, fbErr)
	}
	return &ImageData{Buffer: buf, Format: hint}, nil
}
