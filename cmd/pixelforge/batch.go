package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"pixelforge/internal/algorithms"
	"pixelforge/internal/pipeline"
)

type batchOptions struct {
	output string
	outDir string
	format string
	jobs   int
}

// outputPath names the result for input. A single input may use an explicit
// output path; batches write into outDir keeping the base name.
func (o batchOptions) outputPath(input string, single bool) (string, error) {
	if o.output != "" {
		if !single {
			return "", fmt.Errorf("--output takes a single input; use --out-dir for batches")
		}
		return o.output, nil
	}
	dir := o.outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	ext := o.format
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(input), ".")
	}
	name := base + ".out." + ext
	return filepath.Join(dir, name), nil
}

// processFiles runs ops on every input concurrently. Each input gets its own
// coordinator and registry, so seeded results do not depend on scheduling.
func processFiles(ctx context.Context, e *env, inputs []string, ops []algorithms.Operation, opts batchOptions) error {
	if opts.format == "" {
		opts.format = e.cfg.Format
	}
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for _, input := range inputs {
		out, err := opts.outputPath(input, len(inputs) == 1)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return processFile(ctx, e, input, out, ops)
		})
	}
	return g.Wait()
}

func processFile(ctx context.Context, e *env, input, output string, ops []algorithms.Operation) error {
	coord := e.coordinator()
	defer coord.Shutdown()

	r, err := pipeline.OpenFile(input)
	if err != nil {
		return err
	}
	_, err = coord.LoadImage(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	result, pm, err := coord.Process(ctx, ops)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	w, err := pipeline.CreateFile(output)
	if err != nil {
		return err
	}
	if err := coord.SaveImage(w, result); err != nil {
		w.Close()
		return fmt.Errorf("%s: %w", output, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}

	fields := map[string]interface{}{
		"input":    input,
		"output":   output,
		"steps":    pm.Steps,
		"duration": pm.ProcessingTime,
	}
	if pm.Quality != nil {
		fields["psnr"] = pm.Quality.PSNR
		fields["ssim"] = pm.Quality.SSIM
	}
	e.log.Info("cli", "image written", fields)
	return nil
}

func addBatchFlags(fs *pflag.FlagSet, opts *batchOptions) {
	fs.StringVarP(&opts.output, "output", "o", "", "output file (single input only)")
	fs.StringVar(&opts.outDir, "out-dir", "", "output directory for batches")
	fs.StringVarP(&opts.format, "format", "f", "", "output format extension (png, jpeg, tiff, bmp, pfr)")
	fs.IntVarP(&opts.jobs, "jobs", "j", 0, "images processed concurrently (0 = unlimited)")
}
