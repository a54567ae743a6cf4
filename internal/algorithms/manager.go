// Package algorithms exposes every image operation as a named variant with a
// typed parameter record, and runs them on pixel buffers.
package algorithms

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"pixelforge/internal/logger"
	"pixelforge/internal/pixbuf"
)

// defaults is the closed operation set with the parameters used when a
// recipe leaves them out.
var defaults = []Operation{
	GaussianBlur{Sigma: 1.5},
	Median{Size: 3},
	Bilateral{SigmaSpace: 5, SigmaColor: 50},
	Sobel{},
	LaplacianOfGaussian{Sigma: 1.5},
	DifferenceOfGaussians{Sigma1: 1, Sigma2: 2},
	Sharpen{Amount: 1},
	Emboss{},
	EdgeEnhance{},
	Convolve{Kernel: [][]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}}, Channel: "all"},

	LowPass{Cutoff: 30},
	HighPass{Cutoff: 30},
	BandPass{Low: 20, High: 80},
	BandStop{Low: 20, High: 80},
	GaussianLowPass{Sigma: 30},
	GaussianHighPass{Sigma: 30},
	ButterworthLowPass{Cutoff: 30, Order: 2},
	ButterworthHighPass{Cutoff: 30, Order: 2},
	Spectrum{},

	Grayscale{},
	ToHSV{},
	FromHSV{},
	ToXYZ{},
	ToLAB{},
	Brightness{Amount: 0},
	Contrast{Factor: 0},
	Saturation{Amount: 1},
	Hue{Degrees: 0},
	Invert{},
	Sepia{},

	Equalize{},
	CLAHE{ClipLimit: 2, TileSize: 8},
	Window{Center: 128, Width: 256},
	UnsharpMask{Amount: 1.5, Radius: 1},
	Morphology{Op: "erode", Size: 3},

	Threshold{Threshold: 128},
	Otsu{},
	AdaptiveThreshold{BlockSize: 11, C: 2},
	KMeans{K: 3, Iterations: 10},
	RegionGrow{X: 0, Y: 0, Threshold: 20},
	ConnectedComponents{},
	Watershed{},

	Canny{Low: 50, High: 100, Sigma: 1.4},
	Harris{Threshold: 0.01, K: 0.04},
	Hough{},
	HoughLines{ThetaSteps: 180, MinVotes: 20, MaxLines: 10, LineWidth: 1},

	GaussianPyramid{Levels: 4},
	LaplacianPyramid{Levels: 4, Level: 0},
	LaplacianRoundTrip{Levels: 4},
	Scale{Factor: 0.5, Interpolation: "bilinear"},
	Rotate{Degrees: 0},
	BoxDownsample{Factor: 2},

	JPEG{Quality: 50},
	RunLength{},
}

type Manager struct {
	algorithms map[string]Operation
	log        logger.Logger
	seed       uint64
	runs       uint64
	mu         sync.Mutex
}

// NewManager builds the registry. Random-dependent operations draw from a
// PCG stream keyed by seed and the run number, so a fixed seed and call
// order reproduce results.
func NewManager(log logger.Logger, seed uint64) *Manager {
	if log == nil {
		log = logger.Nop{}
	}
	m := &Manager{
		algorithms: make(map[string]Operation, len(defaults)),
		log:        log,
		seed:       seed,
	}
	for _, op := range defaults {
		m.algorithms[op.Name()] = op
	}
	return m
}

// GetAvailableAlgorithms returns the operation names in sorted order.
func (m *Manager) GetAvailableAlgorithms() []string {
	names := lo.Keys(m.algorithms)
	slices.Sort(names)
	return names
}

func (m *Manager) GetAlgorithm(name string) (Operation, error) {
	if op, ok := m.algorithms[name]; ok {
		return op, nil
	}
	return nil, fmt.Errorf("unknown algorithm: %s: %w", name, pixbuf.ErrInvalidInput)
}

// GetDefaultParameters renders an operation's default record as a plain map
// keyed by its YAML field names.
func (m *Manager) GetDefaultParameters(name string) (map[string]interface{}, error) {
	op, err := m.GetAlgorithm(name)
	if err != nil {
		return nil, err
	}
	raw, err := yaml.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("marshal %s defaults: %w", name, err)
	}
	params := make(map[string]interface{})
	if err := yaml.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("unmarshal %s defaults: %w", name, err)
	}
	return params, nil
}

// Decode overlays params on the named operation's defaults. Unknown or
// mistyped parameters are rejected.
func (m *Manager) Decode(name string, params map[string]interface{}) (Operation, error) {
	if len(params) == 0 {
		return m.GetAlgorithm(name)
	}
	raw, err := yaml.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%s: encode parameters: %w", name, err)
	}
	return m.decode(name, raw)
}

// DecodeNode is Decode for a parameter mapping taken straight from a YAML
// document.
func (m *Manager) DecodeNode(name string, node *yaml.Node) (Operation, error) {
	if node == nil || node.Kind == 0 {
		return m.GetAlgorithm(name)
	}
	raw, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("%s: encode parameters: %w", name, err)
	}
	return m.decode(name, raw)
}

func (m *Manager) decode(name string, raw []byte) (Operation, error) {
	def, err := m.GetAlgorithm(name)
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(reflect.TypeOf(def))
	ptr.Elem().Set(reflect.ValueOf(def))

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(ptr.Interface()); err != nil {
		return nil, fmt.Errorf("%s: invalid parameters: %v: %w", name, err, pixbuf.ErrInvalidInput)
	}
	return ptr.Elem().Interface().(Operation), nil
}

func (m *Manager) nextRand() *rand.Rand {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	return rand.New(rand.NewPCG(m.seed, m.runs))
}

// Process runs op on input. The input is never modified.
func (m *Manager) Process(ctx context.Context, op Operation, input *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if op == nil {
		return nil, fmt.Errorf("no operation: %w", pixbuf.ErrInvalidInput)
	}
	if err := pixbuf.RequireBuffer(op.Name(), input); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := op.apply(input, m.nextRand())
	fields := map[string]interface{}{
		"operation": op.Name(),
		"width":     input.Width(),
		"height":    input.Height(),
		"duration":  time.Since(start),
	}
	if err != nil {
		m.log.Error("algorithms", err, fields)
		return nil, fmt.Errorf("%s: %w", op.Name(), err)
	}
	m.log.Debug("algorithms", "operation complete", fields)
	return out, nil
}

// ProcessNamed decodes and runs one operation.
func (m *Manager) ProcessNamed(ctx context.Context, name string, params map[string]interface{}, input *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	op, err := m.Decode(name, params)
	if err != nil {
		return nil, err
	}
	return m.Process(ctx, op, input)
}
