package segment

import (
	"math"
	"math/rand/v2"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// Clusters is the outcome of K-means: one label per pixel and the final
// RGB centroid of every cluster.
type Clusters struct {
	Labels    []int
	Centroids [][3]float64
}

// Cluster runs exactly iterations rounds of Lloyd's algorithm in RGB space.
// Centroids start at k pixels drawn uniformly by rng; a cluster that loses
// all its pixels keeps its previous centroid.
func Cluster(buf *pixbuf.Buffer, k, iterations int, rng *rand.Rand) (*Clusters, error) {
	if err := pixbuf.RequireBuffer("KMeans", buf); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, pixbuf.OutOfRange("KMeans", "k", k, "must be >= 1")
	}
	if iterations < 1 {
		return nil, pixbuf.OutOfRange("KMeans", "iterations", iterations, "must be >= 1")
	}
	if rng == nil {
		return nil, pixbuf.Invalid("KMeans", "rng", nil, "random source is required")
	}

	src := buf.Raw()
	n := buf.Pixels()
	centroids := make([][3]float64, k)
	for j := range centroids {
		i := rng.IntN(n) * pixbuf.Channels
		centroids[j] = [3]float64{float64(src[i]), float64(src[i+1]), float64(src[i+2])}
	}

	labels := make([]int, n)
	w := buf.Width()
	for iter := 0; iter < iterations; iter++ {
		parallel.Rows(buf.Height(), func(start, end int) {
			for p := start * w; p < end*w; p++ {
				i := p * pixbuf.Channels
				r, g, b := float64(src[i]), float64(src[i+1]), float64(src[i+2])
				best, bestDist := 0, math.Inf(1)
				for j, c := range centroids {
					dr, dg, db := r-c[0], g-c[1], b-c[2]
					if d := dr*dr + dg*dg + db*db; d < bestDist {
						best, bestDist = j, d
					}
				}
				labels[p] = best
			}
		})

		sums := make([][3]float64, k)
		counts := make([]int, k)
		for p, l := range labels {
			i := p * pixbuf.Channels
			sums[l][0] += float64(src[i])
			sums[l][1] += float64(src[i+1])
			sums[l][2] += float64(src[i+2])
			counts[l]++
		}
		for j := range centroids {
			if counts[j] == 0 {
				continue
			}
			cnt := float64(counts[j])
			centroids[j] = [3]float64{sums[j][0] / cnt, sums[j][1] / cnt, sums[j][2] / cnt}
		}
	}
	return &Clusters{Labels: labels, Centroids: centroids}, nil
}

// KMeans paints every pixel with its cluster centroid.
func KMeans(buf *pixbuf.Buffer, k, iterations int, rng *rand.Rand) (*pixbuf.Buffer, error) {
	cl, err := Cluster(buf, k, iterations, rng)
	if err != nil {
		return nil, err
	}
	src := buf.Raw()
	out := make([]uint8, len(src))
	for p, l := range cl.Labels {
		i := p * pixbuf.Channels
		c := cl.Centroids[l]
		out[i] = pixbuf.Quantize(c[0])
		out[i+1] = pixbuf.Quantize(c[1])
		out[i+2] = pixbuf.Quantize(c[2])
		out[i+3] = src[i+3]
	}
	return pixbuf.Wrap(buf.Width(), buf.Height(), out), nil
}
