package pipeline

import (
	"context"
	"fmt"
	"time"

	"pixelforge/internal/algorithms"
	"pixelforge/internal/logger"
)

type imageProcessor struct {
	logger           logger.Logger
	algorithmManager *algorithms.Manager
}

// ProcessWithContext threads the image through ops, checking ctx before
// every step.
func (p *imageProcessor) ProcessWithContext(ctx context.Context, input *ImageData, ops []algorithms.Operation) (*ImageData, error) {
	if input == nil || input.Buffer == nil {
		return nil, fmt.Errorf("no input image")
	}

	cur := input.Buffer
	for i, op := range ops {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		start := time.Now()
		next, err := p.algorithmManager.Process(ctx, op, cur)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		p.logger.Debug("ImageProcessor", "step completed", map[string]interface{}{
			"step":        i + 1,
			"operation":   op.Name(),
			"input_size":  fmt.Sprintf("%dx%d", cur.Width(), cur.Height()),
			"output_size": fmt.Sprintf("%dx%d", next.Width(), next.Height()),
			"duration":    time.Since(start),
		})
		cur = next
	}

	return &ImageData{
		Buffer:      cur,
		Format:      input.Format,
		OriginalURI: input.OriginalURI,
	}, nil
}
