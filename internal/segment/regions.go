package segment

import (
	"math"
	"math/rand/v2"

	"pixelforge/internal/convolve"
	"pixelforge/internal/pixbuf"
)

// Region returns the 4-connected set of pixels reachable from (seedX, seedY)
// whose RGB distance to the seed colour is <= threshold.
func Region(buf *pixbuf.Buffer, seedX, seedY int, threshold float64) ([]bool, error) {
	if err := pixbuf.RequireBuffer("RegionGrow", buf); err != nil {
		return nil, err
	}
	w, h := buf.Width(), buf.Height()
	if seedX < 0 || seedX >= w || seedY < 0 || seedY >= h {
		return nil, pixbuf.OutOfRange("RegionGrow", "seed", [2]int{seedX, seedY}, "must lie inside the image")
	}
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, pixbuf.OutOfRange("RegionGrow", "threshold", threshold, "must be >= 0")
	}

	src := buf.Raw()
	s := buf.Offset(seedX, seedY)
	sr, sg, sb := float64(src[s]), float64(src[s+1]), float64(src[s+2])
	limit := threshold * threshold

	in := make([]bool, w*h)
	queued := make([]bool, w*h)
	queue := []int{seedY*w + seedX}
	queued[queue[0]] = true
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		i := p * pixbuf.Channels
		dr, dg, db := float64(src[i])-sr, float64(src[i+1])-sg, float64(src[i+2])-sb
		if dr*dr+dg*dg+db*db > limit {
			continue
		}
		in[p] = true
		x, y := p%w, p/w
		for _, q := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
			if q[0] < 0 || q[0] >= w || q[1] < 0 || q[1] >= h {
				continue
			}
			if n := q[1]*w + q[0]; !queued[n] {
				queued[n] = true
				queue = append(queue, n)
			}
		}
	}
	return in, nil
}

// RegionGrow paints the grown region pure red over a copy of the image.
func RegionGrow(buf *pixbuf.Buffer, seedX, seedY int, threshold float64) (*pixbuf.Buffer, error) {
	in, err := Region(buf, seedX, seedY, threshold)
	if err != nil {
		return nil, err
	}
	out := buf.Pix()
	for p, ok := range in {
		if ok {
			i := p * pixbuf.Channels
			out[i], out[i+1], out[i+2] = 255, 0, 0
		}
	}
	return pixbuf.Wrap(buf.Width(), buf.Height(), out), nil
}

// LabelMap assigns every pixel a component label; 0 is background and
// components are numbered 1..Count in raster order of first appearance.
type LabelMap struct {
	Width  int
	Height int
	Labels []int
	Count  int
}

func (m *LabelMap) At(x, y int) int { return m.Labels[y*m.Width+x] }

// Sizes returns the pixel count of each component, indexed by label.
func (m *LabelMap) Sizes() []int {
	sizes := make([]int, m.Count+1)
	for _, l := range m.Labels {
		sizes[l]++
	}
	return sizes
}

// Label finds the 4-connected components of pixels with intensity > 128
// using two-pass union-find labelling.
func Label(buf *pixbuf.Buffer) (*LabelMap, error) {
	if err := pixbuf.RequireBuffer("ConnectedComponents", buf); err != nil {
		return nil, err
	}
	w, h := buf.Width(), buf.Height()
	labels := make([]int, w*h)
	parent := []int{0}

	find := func(a int) int {
		for parent[a] != a {
			parent[a] = parent[parent[a]]
			a = parent[a]
		}
		return a
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra < rb {
			parent[rb] = ra
		} else if rb < ra {
			parent[ra] = rb
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*w + x
			if buf.Intensity(p*pixbuf.Channels) <= 128 {
				continue
			}
			left, up := 0, 0
			if x > 0 {
				left = labels[p-1]
			}
			if y > 0 {
				up = labels[p-w]
			}
			switch {
			case left == 0 && up == 0:
				parent = append(parent, len(parent))
				labels[p] = len(parent) - 1
			case left != 0 && up != 0:
				labels[p] = min(left, up)
				union(left, up)
			default:
				labels[p] = max(left, up)
			}
		}
	}

	compact := make([]int, len(parent))
	count := 0
	for p, l := range labels {
		if l == 0 {
			continue
		}
		root := find(l)
		if compact[root] == 0 {
			count++
			compact[root] = count
		}
		labels[p] = compact[root]
	}
	return &LabelMap{Width: w, Height: h, Labels: labels, Count: count}, nil
}

// ConnectedComponents paints each component with a random colour drawn from
// rng, in label order. Background is black; alpha is opaque.
func ConnectedComponents(buf *pixbuf.Buffer, rng *rand.Rand) (*pixbuf.Buffer, error) {
	if rng == nil {
		return nil, pixbuf.Invalid("ConnectedComponents", "rng", nil, "random source is required")
	}
	m, err := Label(buf)
	if err != nil {
		return nil, err
	}
	colors := make([][3]uint8, m.Count+1)
	for l := 1; l <= m.Count; l++ {
		colors[l] = [3]uint8{
			pixbuf.Quantize(rng.Float64() * 255),
			pixbuf.Quantize(rng.Float64() * 255),
			pixbuf.Quantize(rng.Float64() * 255),
		}
	}
	out := make([]uint8, len(m.Labels)*pixbuf.Channels)
	for p, l := range m.Labels {
		i := p * pixbuf.Channels
		c := colors[l]
		out[i], out[i+1], out[i+2], out[i+3] = c[0], c[1], c[2], 255
	}
	return pixbuf.Wrap(m.Width, m.Height, out), nil
}

// Watershed approximates watershed boundaries by the Sobel magnitude of the
// channel sum divided by 3, with clamp-to-edge borders and opaque alpha.
func Watershed(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Watershed", buf); err != nil {
		return nil, err
	}
	src := buf.Raw()
	sum := pixbuf.NewPlane(buf.Width(), buf.Height())
	for p := range sum.Data {
		i := p * pixbuf.Channels
		sum.Data[p] = float64(src[i]) + float64(src[i+1]) + float64(src[i+2])
	}
	gx := convolve.ConvolvePlane(sum, convolve.SobelX)
	gy := convolve.ConvolvePlane(sum, convolve.SobelY)
	mag := pixbuf.NewPlane(sum.Width, sum.Height)
	for i := range mag.Data {
		mag.Data[i] = math.Hypot(gx.Data[i], gy.Data[i]) / 3
	}
	return mag.Gray(255), nil
}
