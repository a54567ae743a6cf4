package pipeline

import (
	"fmt"
	"io"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/disintegration/imaging"

	"pixelforge/internal/logger"
	"pixelforge/internal/pixbuf"
)

type imageSaver struct {
	logger  logger.Logger
	quality int
}

// SaveToWriter encodes imageData. An empty format is taken from the URI
// extension when writer is a fyne.URIWriteCloser, then from the image's
// source format, then defaults to PNG.
func (s *imageSaver) SaveToWriter(writer io.Writer, imageData *ImageData, format string) error {
	if imageData == nil || imageData.Buffer == nil {
		return fmt.Errorf("no image data to save: %w", pixbuf.ErrInvalidInput)
	}

	saveFormat := strings.TrimPrefix(strings.ToLower(format), ".")
	if saveFormat == "" {
		if uriWriter, ok := writer.(fyne.URIWriteCloser); ok {
			saveFormat = strings.TrimPrefix(strings.ToLower(uriWriter.URI().Extension()), ".")
		}
	}
	if saveFormat == "" {
		saveFormat = imageData.Format
	}
	if saveFormat == "" {
		saveFormat = "png"
	}

	var err error
	if saveFormat == "pfr" {
		err = pixbuf.WriteRaw(writer, imageData.Buffer)
	} else {
		var f imaging.Format
		f, err = imaging.FormatFromExtension(saveFormat)
		if err != nil {
			return fmt.Errorf("unsupported output format %q: %w", saveFormat, pixbuf.ErrInvalidInput)
		}
		err = imaging.Encode(writer, imageData.Buffer.ToImage(), f, imaging.JPEGQuality(s.quality))
	}
	if err != nil {
		s.logger.Error("ImageSaver", err, map[string]interface{}{
			"format": saveFormat,
		})
		return err
	}

	s.logger.Debug("ImageSaver", "image saved", map[string]interface{}{
		"format": saveFormat,
		"width":  imageData.Width(),
		"height": imageData.Height(),
	})
	return nil
}
