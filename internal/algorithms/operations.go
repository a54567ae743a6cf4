package algorithms

import (
	"image/color"
	"math/rand/v2"

	"pixelforge/internal/colorspace"
	"pixelforge/internal/compression"
	"pixelforge/internal/convolve"
	"pixelforge/internal/enhance"
	"pixelforge/internal/features"
	"pixelforge/internal/frequency"
	"pixelforge/internal/pixbuf"
	"pixelforge/internal/pyramid"
	"pixelforge/internal/segment"
	"pixelforge/internal/spatial"
	"pixelforge/internal/spectral"
)

// Operation is one variant of the closed operation set. Each variant carries
// its own typed parameters; the unexported apply method keeps the set closed
// to this package.
type Operation interface {
	Name() string
	apply(buf *pixbuf.Buffer, rng *rand.Rand) (*pixbuf.Buffer, error)
}

// Spatial filters.

type GaussianBlur struct {
	Sigma float64 `yaml:"sigma"`
}

func (GaussianBlur) Name() string { return "gaussian_blur" }
func (o GaussianBlur) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.GaussianBlur(b, o.Sigma)
}

type Median struct {
	Size int `yaml:"size"`
}

func (Median) Name() string { return "median" }
func (o Median) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.Median(b, o.Size)
}

type Bilateral struct {
	SigmaSpace float64 `yaml:"sigma_space"`
	SigmaColor float64 `yaml:"sigma_color"`
}

func (Bilateral) Name() string { return "bilateral" }
func (o Bilateral) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.Bilateral(b, o.SigmaSpace, o.SigmaColor)
}

type Sobel struct{}

func (Sobel) Name() string { return "sobel" }
func (Sobel) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.Sobel(b)
}

type LaplacianOfGaussian struct {
	Sigma float64 `yaml:"sigma"`
}

func (LaplacianOfGaussian) Name() string { return "laplacian_of_gaussian" }
func (o LaplacianOfGaussian) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.LaplacianOfGaussian(b, o.Sigma)
}

type DifferenceOfGaussians struct {
	Sigma1 float64 `yaml:"sigma1"`
	Sigma2 float64 `yaml:"sigma2"`
}

func (DifferenceOfGaussians) Name() string { return "difference_of_gaussians" }
func (o DifferenceOfGaussians) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.DifferenceOfGaussians(b, o.Sigma1, o.Sigma2)
}

type Sharpen struct {
	Amount float64 `yaml:"amount"`
}

func (Sharpen) Name() string { return "sharpen" }
func (o Sharpen) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.Sharpen(b, o.Amount)
}

type Emboss struct{}

func (Emboss) Name() string { return "emboss" }
func (Emboss) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.Emboss(b)
}

type EdgeEnhance struct{}

func (EdgeEnhance) Name() string { return "edge_enhance" }
func (EdgeEnhance) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spatial.EdgeEnhance(b)
}

// Convolve applies a caller-supplied kernel.
type Convolve struct {
	Kernel  [][]float64 `yaml:"kernel"`
	Channel string      `yaml:"channel"`
}

func (Convolve) Name() string { return "convolve" }
func (o Convolve) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	k, err := convolve.NewKernel(o.Kernel)
	if err != nil {
		return nil, err
	}
	ch, err := convolve.ParseChannel(o.Channel)
	if err != nil {
		return nil, err
	}
	return convolve.Convolve2D(b, k, ch)
}

// Frequency filters.

type LowPass struct {
	Cutoff float64 `yaml:"cutoff"`
}

func (LowPass) Name() string { return "low_pass" }
func (o LowPass) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return frequency.LowPass(b, o.Cutoff)
}

type HighPass struct {
	Cutoff float64 `yaml:"cutoff"`
}

func (HighPass) Name() string { return "high_pass" }
func (o HighPass) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return frequency.HighPass(b, o.Cutoff)
}

type BandPass struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

func (BandPass) Name() string { return "band_pass" }
func (o BandPass) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return frequency.BandPass(b, o.Low, o.High)
}

type BandStop struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

func (BandStop) Name() string { return "band_stop" }
func (o BandStop) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return frequency.BandStop(b, o.Low, o.High)
}

type GaussianLowPass struct {
	Sigma float64 `yaml:"sigma"`
}

func (GaussianLowPass) Name() string { return "gaussian_low_pass" }
func (o GaussianLowPass) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return frequency.GaussianLowPass(b, o.Sigma)
}

type GaussianHighPass struct {
	Sigma float64 `yaml:"sigma"`
}

func (GaussianHighPass) Name() string { return "gaussian_high_pass" }
func (o GaussianHighPass) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return frequency.GaussianHighPass(b, o.Sigma)
}

type ButterworthLowPass struct {
	Cutoff float64 `yaml:"cutoff"`
	Order  int     `yaml:"order"`
}

func (ButterworthLowPass) Name() string { return "butterworth_low_pass" }
func (o ButterworthLowPass) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return frequency.ButterworthLowPass(b, o.Cutoff, o.Order)
}

type ButterworthHighPass struct {
	Cutoff float64 `yaml:"cutoff"`
	Order  int     `yaml:"order"`
}

func (ButterworthHighPass) Name() string { return "butterworth_high_pass" }
func (o ButterworthHighPass) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return frequency.ButterworthHighPass(b, o.Cutoff, o.Order)
}

type Spectrum struct{}

func (Spectrum) Name() string { return "spectrum" }
func (Spectrum) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return spectral.Spectrum(b)
}

// Colour transforms.

type Grayscale struct{}

func (Grayscale) Name() string { return "grayscale" }
func (Grayscale) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.Grayscale(b)
}

type ToHSV struct{}

func (ToHSV) Name() string { return "to_hsv" }
func (ToHSV) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.ToHSV(b)
}

type FromHSV struct{}

func (FromHSV) Name() string { return "from_hsv" }
func (FromHSV) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.FromHSV(b)
}

type ToXYZ struct{}

func (ToXYZ) Name() string { return "to_xyz" }
func (ToXYZ) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.ToXYZ(b)
}

type ToLAB struct{}

func (ToLAB) Name() string { return "to_lab" }
func (ToLAB) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.ToLAB(b)
}

type Brightness struct {
	Amount float64 `yaml:"amount"`
}

func (Brightness) Name() string { return "brightness" }
func (o Brightness) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.Brightness(b, o.Amount)
}

type Contrast struct {
	Factor float64 `yaml:"factor"`
}

func (Contrast) Name() string { return "contrast" }
func (o Contrast) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.Contrast(b, o.Factor)
}

type Saturation struct {
	Amount float64 `yaml:"amount"`
}

func (Saturation) Name() string { return "saturation" }
func (o Saturation) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.Saturation(b, o.Amount)
}

type Hue struct {
	Degrees float64 `yaml:"degrees"`
}

func (Hue) Name() string { return "hue" }
func (o Hue) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.Hue(b, o.Degrees)
}

type Invert struct{}

func (Invert) Name() string { return "invert" }
func (Invert) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.Invert(b)
}

type Sepia struct{}

func (Sepia) Name() string { return "sepia" }
func (Sepia) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return colorspace.Sepia(b)
}

// Enhancement.

type Equalize struct{}

func (Equalize) Name() string { return "equalize" }
func (Equalize) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return enhance.HistogramEqualize(b)
}

type CLAHE struct {
	ClipLimit float64 `yaml:"clip_limit"`
	TileSize  int     `yaml:"tile_size"`
}

func (CLAHE) Name() string { return "clahe" }
func (o CLAHE) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return enhance.CLAHE(b, o.ClipLimit, o.TileSize)
}

type Window struct {
	Center float64 `yaml:"center"`
	Width  float64 `yaml:"width"`
}

func (Window) Name() string { return "window" }
func (o Window) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return enhance.Window(b, o.Center, o.Width)
}

type UnsharpMask struct {
	Amount float64 `yaml:"amount"`
	Radius float64 `yaml:"radius"`
}

func (UnsharpMask) Name() string { return "unsharp_mask" }
func (o UnsharpMask) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return enhance.UnsharpMask(b, o.Amount, o.Radius)
}

type Morphology struct {
	Op   string `yaml:"op"`
	Size int    `yaml:"size"`
}

func (Morphology) Name() string { return "morphology" }
func (o Morphology) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	op, err := enhance.ParseMorphOp(o.Op)
	if err != nil {
		return nil, err
	}
	return enhance.Morphology(b, op, o.Size)
}

// Segmentation.

type Threshold struct {
	Threshold float64 `yaml:"threshold"`
}

func (Threshold) Name() string { return "threshold" }
func (o Threshold) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return segment.Threshold(b, o.Threshold)
}

type Otsu struct{}

func (Otsu) Name() string { return "otsu" }
func (Otsu) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return segment.Otsu(b)
}

type AdaptiveThreshold struct {
	BlockSize int     `yaml:"block_size"`
	C         float64 `yaml:"c"`
}

func (AdaptiveThreshold) Name() string { return "adaptive_threshold" }
func (o AdaptiveThreshold) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return segment.Adaptive(b, o.BlockSize, o.C)
}

type KMeans struct {
	K          int `yaml:"k"`
	Iterations int `yaml:"iterations"`
}

func (KMeans) Name() string { return "kmeans" }
func (o KMeans) apply(b *pixbuf.Buffer, rng *rand.Rand) (*pixbuf.Buffer, error) {
	return segment.KMeans(b, o.K, o.Iterations, rng)
}

type RegionGrow struct {
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	Threshold float64 `yaml:"threshold"`
}

func (RegionGrow) Name() string { return "region_grow" }
func (o RegionGrow) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return segment.RegionGrow(b, o.X, o.Y, o.Threshold)
}

type ConnectedComponents struct{}

func (ConnectedComponents) Name() string { return "connected_components" }
func (ConnectedComponents) apply(b *pixbuf.Buffer, rng *rand.Rand) (*pixbuf.Buffer, error) {
	return segment.ConnectedComponents(b, rng)
}

type Watershed struct{}

func (Watershed) Name() string { return "watershed" }
func (Watershed) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return segment.Watershed(b)
}

// Feature detection.

type Canny struct {
	Low   float64 `yaml:"low"`
	High  float64 `yaml:"high"`
	Sigma float64 `yaml:"sigma"`
}

func (Canny) Name() string { return "canny" }
func (o Canny) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return features.Canny(b, o.Low, o.High, o.Sigma)
}

type Harris struct {
	Threshold float64 `yaml:"threshold"`
	K         float64 `yaml:"k"`
}

func (Harris) Name() string { return "harris" }
func (o Harris) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return features.Harris(b, o.Threshold, o.K)
}

type Hough struct{}

func (Hough) Name() string { return "hough" }
func (Hough) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return features.Hough(b)
}

// HoughLines draws the strongest detected lines over the image.
type HoughLines struct {
	ThetaSteps int     `yaml:"theta_steps"`
	MinVotes   int     `yaml:"min_votes"`
	MaxLines   int     `yaml:"max_lines"`
	LineWidth  float64 `yaml:"line_width"`
}

func (HoughLines) Name() string { return "hough_lines" }
func (o HoughLines) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	lines, err := features.HoughLines(b, features.HoughOptions{
		ThetaSteps: o.ThetaSteps,
		MinVotes:   o.MinVotes,
		MaxLines:   o.MaxLines,
	})
	if err != nil {
		return nil, err
	}
	return features.DrawLines(b, lines, color.NRGBA{R: 255, A: 255}, o.LineWidth)
}

// Pyramid and geometry.

type GaussianPyramid struct {
	Levels int `yaml:"levels"`
}

func (GaussianPyramid) Name() string { return "gaussian_pyramid" }

// apply returns the coarsest level.
func (o GaussianPyramid) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	pyr, err := pyramid.GaussianPyramid(b, o.Levels)
	if err != nil {
		return nil, err
	}
	return pyr[len(pyr)-1], nil
}

type LaplacianPyramid struct {
	Levels int `yaml:"levels"`
	Level  int `yaml:"level"`
}

func (LaplacianPyramid) Name() string { return "laplacian_pyramid" }
func (o LaplacianPyramid) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	if o.Level < 0 || o.Level >= o.Levels {
		return nil, pixbuf.OutOfRange("LaplacianPyramid", "level", o.Level, "must be within [0, levels)")
	}
	pyr, err := pyramid.LaplacianPyramid(b, o.Levels)
	if err != nil {
		return nil, err
	}
	return pyr[o.Level], nil
}

// LaplacianRoundTrip decomposes and reconstructs the image.
type LaplacianRoundTrip struct {
	Levels int `yaml:"levels"`
}

func (LaplacianRoundTrip) Name() string { return "laplacian_roundtrip" }
func (o LaplacianRoundTrip) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	pyr, err := pyramid.LaplacianPyramid(b, o.Levels)
	if err != nil {
		return nil, err
	}
	return pyramid.Reconstruct(pyr)
}

type Scale struct {
	Factor        float64 `yaml:"factor"`
	Interpolation string  `yaml:"interpolation"`
}

func (Scale) Name() string { return "scale" }
func (o Scale) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	interp, err := pyramid.ParseInterpolation(o.Interpolation)
	if err != nil {
		return nil, err
	}
	return pyramid.Scale(b, o.Factor, interp)
}

type Rotate struct {
	Degrees float64 `yaml:"degrees"`
}

func (Rotate) Name() string { return "rotate" }
func (o Rotate) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return pyramid.Rotate(b, o.Degrees)
}

type BoxDownsample struct {
	Factor int `yaml:"factor"`
}

func (BoxDownsample) Name() string { return "box_downsample" }
func (o BoxDownsample) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return pyramid.BoxDownsample(b, o.Factor)
}

// Compression.

type JPEG struct {
	Quality float64 `yaml:"quality"`
}

func (JPEG) Name() string { return "jpeg" }
func (o JPEG) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	return compression.JPEGStyle(b, o.Quality)
}

// RunLength encodes and decodes the grey levels, yielding the opaque grey
// image the code represents.
type RunLength struct{}

func (RunLength) Name() string { return "run_length" }
func (RunLength) apply(b *pixbuf.Buffer, _ *rand.Rand) (*pixbuf.Buffer, error) {
	rl, err := compression.RunLengthEncode(b)
	if err != nil {
		return nil, err
	}
	return compression.RunLengthDecode(rl)
}
