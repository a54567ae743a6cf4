// Package pipeline loads images, runs operation chains on them and saves the
// results.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"pixelforge/internal/algorithms"
	"pixelforge/internal/config"
	"pixelforge/internal/logger"
	"pixelforge/internal/metrics"
	"pixelforge/internal/pixbuf"
)

type ImageProcessor interface {
	ProcessWithContext(ctx context.Context, input *ImageData, ops []algorithms.Operation) (*ImageData, error)
}

type ImageLoader interface {
	LoadFromReader(reader fyne.URIReadCloser) (*ImageData, error)
	LoadFromBytes(data []byte, format string) (*ImageData, error)
}

type ImageSaver interface {
	SaveToWriter(writer io.Writer, imageData *ImageData, format string) error
}

// Decoder turns encoded bytes into a buffer. It backs up the built-in
// decoders for formats they cannot read.
type Decoder func(data []byte) (*pixbuf.Buffer, error)

type ImageData struct {
	Buffer      *pixbuf.Buffer
	Format      string
	OriginalURI fyne.URI
}

func (d *ImageData) Width() int  { return d.Buffer.Width() }
func (d *ImageData) Height() int { return d.Buffer.Height() }

// ProcessingMetrics describes one processing run. Quality is nil when the
// chain changed the image size.
type ProcessingMetrics struct {
	Steps          int
	ProcessingTime time.Duration
	Quality        *metrics.Report
}

type Options struct {
	// Quality is the JPEG encoder quality.
	Quality int
	// Fallback is tried when the built-in decoders fail.
	Fallback Decoder
}

type Coordinator struct {
	mu               sync.RWMutex
	originalImage    *ImageData
	processedImage   *ImageData
	logger           logger.Logger
	algorithmManager *algorithms.Manager
	loader           ImageLoader
	processor        ImageProcessor
	saver            ImageSaver
	ctx              context.Context
	cancel           context.CancelFunc
}

func NewCoordinator(mgr *algorithms.Manager, log logger.Logger, opts Options) *Coordinator {
	if log == nil {
		log = logger.Nop{}
	}
	if opts.Quality == 0 {
		opts.Quality = 95
	}
	ctx, cancel := context.WithCancel(context.Background())

	coord := &Coordinator{
		logger:           log,
		algorithmManager: mgr,
		ctx:              ctx,
		cancel:           cancel,
	}
	coord.loader = &imageLoader{logger: log, fallback: opts.Fallback}
	coord.processor = &imageProcessor{logger: log, algorithmManager: mgr}
	coord.saver = &imageSaver{logger: log, quality: opts.Quality}

	log.Debug("PipelineCoordinator", "initialized", map[string]interface{}{
		"quality":  opts.Quality,
		"fallback": opts.Fallback != nil,
	})
	return coord
}

func (c *Coordinator) LoadImage(reader fyne.URIReadCloser) (*ImageData, error) {
	start := time.Now()
	imageData, err := c.loader.LoadFromReader(reader)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "load_image",
			"uri":       reader.URI().String(),
		})
		return nil, err
	}
	c.setLoaded(imageData)

	c.logger.Info("PipelineCoordinator", "image loaded", map[string]interface{}{
		"width":     imageData.Width(),
		"height":    imageData.Height(),
		"format":    imageData.Format,
		"load_time": time.Since(start),
	})
	return imageData, nil
}

// SetImage installs an already decoded buffer as the original image.
func (c *Coordinator) SetImage(buf *pixbuf.Buffer) error {
	if err := pixbuf.RequireBuffer("SetImage", buf); err != nil {
		return err
	}
	c.setLoaded(&ImageData{Buffer: buf, Format: "pfr"})
	return nil
}

func (c *Coordinator) setLoaded(d *ImageData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.originalImage = d
	c.processedImage = nil
}

// Process runs ops in order on the original image.
func (c *Coordinator) Process(ctx context.Context, ops []algorithms.Operation) (*ImageData, *ProcessingMetrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.originalImage == nil {
		return nil, nil, fmt.Errorf("no image loaded: %w", pixbuf.ErrInvalidInput)
	}
	if len(ops) == 0 {
		return nil, nil, fmt.Errorf("no operations: %w", pixbuf.ErrInvalidInput)
	}

	start := time.Now()
	processed, err := c.processor.ProcessWithContext(ctx, c.originalImage, ops)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"steps": len(ops),
		})
		return nil, nil, err
	}
	c.processedImage = processed

	pm := &ProcessingMetrics{Steps: len(ops), ProcessingTime: time.Since(start)}
	if c.originalImage.Buffer.SameSize(processed.Buffer) {
		report, err := metrics.Compare(c.originalImage.Buffer, processed.Buffer)
		if err != nil {
			return nil, nil, err
		}
		pm.Quality = report
	}

	fields := map[string]interface{}{
		"steps":           pm.Steps,
		"width":           processed.Width(),
		"height":          processed.Height(),
		"processing_time": pm.ProcessingTime,
	}
	if pm.Quality != nil {
		fields["psnr"] = pm.Quality.PSNR
		fields["ssim"] = pm.Quality.SSIM
	}
	c.logger.Info("PipelineCoordinator", "image processed", fields)
	return processed, pm, nil
}

func (c *Coordinator) ProcessImage(ctx context.Context, algorithmName string, params map[string]interface{}) (*ImageData, *ProcessingMetrics, error) {
	op, err := c.algorithmManager.Decode(algorithmName, params)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"algorithm": algorithmName,
		})
		return nil, nil, err
	}
	return c.Process(ctx, []algorithms.Operation{op})
}

func (c *Coordinator) ProcessRecipe(ctx context.Context, recipe *config.Recipe) (*ImageData, *ProcessingMetrics, error) {
	ops, err := recipe.Operations(c.algorithmManager)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"recipe": recipe.Name,
		})
		return nil, nil, err
	}
	return c.Process(ctx, ops)
}

func (c *Coordinator) SaveImage(writer fyne.URIWriteCloser, imageData *ImageData) error {
	start := time.Now()
	if err := c.saver.SaveToWriter(writer, imageData, ""); err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "save_image",
		})
		return err
	}
	c.logger.Info("PipelineCoordinator", "image saved", map[string]interface{}{
		"path":      writer.URI().Path(),
		"save_time": time.Since(start),
	})
	return nil
}

func (c *Coordinator) SaveImageToWriter(writer io.Writer, imageData *ImageData, format string) error {
	if err := c.saver.SaveToWriter(writer, imageData, strings.ToLower(format)); err != nil {
		c.logger.Error("PipelineCoordinator", err, map[string]interface{}{
			"operation": "save_image_with_format",
			"format":    format,
		})
		return err
	}
	return nil
}

func (c *Coordinator) GetOriginalImage() *ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.originalImage
}

func (c *Coordinator) GetProcessedImage() *ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processedImage
}

func (c *Coordinator) Context() context.Context {
	return c.ctx
}

func (c *Coordinator) Cancel() {
	c.cancel()
}

func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	c.originalImage = nil
	c.processedImage = nil
	c.logger.Debug("PipelineCoordinator", "shutdown completed", nil)
}
