package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pixelforge/internal/metrics"
	"pixelforge/internal/pipeline"
	"pixelforge/internal/pixbuf"
)

func loadBuffer(e *env, path string) (*pixbuf.Buffer, error) {
	coord := e.coordinator()
	defer coord.Shutdown()
	r, err := pipeline.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := coord.LoadImage(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data.Buffer, nil
}

func newMetricsCmd(e *env) *cobra.Command {
	var binary bool
	cmd := &cobra.Command{
		Use:   "metrics <reference> <candidate>",
		Short: "Compare two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := loadBuffer(e, args[0])
			if err != nil {
				return err
			}
			cand, err := loadBuffer(e, args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if binary {
				return printBinary(out, ref, cand)
			}
			return printQuality(out, ref, cand)
		},
	}
	cmd.Flags().BoolVar(&binary, "binary", false, "score the candidate as a thresholded result against a ground truth")
	return cmd
}

func printQuality(w io.Writer, ref, cand *pixbuf.Buffer) error {
	report, err := metrics.Compare(ref, cand)
	if err != nil {
		return err
	}
	entropy, err := metrics.Entropy(cand)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "MSE:     %.4f\n", report.MSE)
	fmt.Fprintf(w, "PSNR:    %.4f dB\n", report.PSNR)
	fmt.Fprintf(w, "SSIM:    %.6f\n", report.SSIM)
	fmt.Fprintf(w, "Entropy: %.4f bits\n", entropy)
	return nil
}

func printBinary(w io.Writer, gt, res *pixbuf.Buffer) error {
	m, err := metrics.CompareBinary(gt, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "TP/TN/FP/FN:      %d/%d/%d/%d\n", m.TruePositives, m.TrueNegatives, m.FalsePositives, m.FalseNegatives)
	fmt.Fprintf(w, "Precision:        %.4f\n", m.Precision())
	fmt.Fprintf(w, "Recall:           %.4f\n", m.Recall())
	fmt.Fprintf(w, "F-measure:        %.4f\n", m.FMeasure())
	fmt.Fprintf(w, "Pseudo F-measure: %.4f\n", m.PseudoFMeasure())
	fmt.Fprintf(w, "NRM:              %.4f\n", m.NRM())
	fmt.Fprintf(w, "DRD:              %.4f\n", m.DRD())
	fmt.Fprintf(w, "PBC:              %.4f\n", m.BackgroundForegroundContrast())
	return nil
}
