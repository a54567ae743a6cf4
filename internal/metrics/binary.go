package metrics

import (
	"math"

	"pixelforge/internal/pixbuf"
)

// BinaryMetrics scores a thresholded result against a ground truth. A pixel
// is foreground when its RGB mean exceeds 127.
type BinaryMetrics struct {
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int
	TotalPixels    int

	drd float64
	pbc float64
}

// drdWeights[i][j] is 1/distance from the centre of a 5x5 window, 1 at the
// centre.
var drdWeights = func() [5][5]float64 {
	var w [5][5]float64
	for i := range w {
		for j := range w[i] {
			d := math.Hypot(float64(i-2), float64(j-2))
			if d == 0 {
				w[i][j] = 1
			} else {
				w[i][j] = 1 / d
			}
		}
	}
	return w
}()

func foreground(buf *pixbuf.Buffer) []bool {
	fg := make([]bool, buf.Pixels())
	for p := range fg {
		fg[p] = buf.Intensity(p*pixbuf.Channels) > 127
	}
	return fg
}

func CompareBinary(groundTruth, result *pixbuf.Buffer) (*BinaryMetrics, error) {
	if err := checkPair("CompareBinary", groundTruth, result); err != nil {
		return nil, err
	}
	gt, res := foreground(groundTruth), foreground(result)
	m := &BinaryMetrics{TotalPixels: len(gt)}
	m.confusion(gt, res)
	m.drd = distortion(gt, res, groundTruth.Width(), groundTruth.Height())
	m.pbc = contrast(gt, res)
	return m, nil
}

func (m *BinaryMetrics) confusion(gt, res []bool) {
	for p := range gt {
		switch {
		case gt[p] && res[p]:
			m.TruePositives++
		case !gt[p] && !res[p]:
			m.TrueNegatives++
		case res[p]:
			m.FalsePositives++
		default:
			m.FalseNegatives++
		}
	}
}

func (m *BinaryMetrics) Precision() float64 {
	if m.TruePositives+m.FalsePositives == 0 {
		return 0
	}
	return float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
}

func (m *BinaryMetrics) Recall() float64 {
	if m.TruePositives+m.FalseNegatives == 0 {
		return 0
	}
	return float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
}

func (m *BinaryMetrics) FMeasure() float64 {
	return m.fBeta(1)
}

// PseudoFMeasure weights precision with β = 0.5.
func (m *BinaryMetrics) PseudoFMeasure() float64 {
	return m.fBeta(0.5)
}

func (m *BinaryMetrics) fBeta(beta float64) float64 {
	p, r := m.Precision(), m.Recall()
	b2 := beta * beta
	if b2*p+r == 0 {
		return 0
	}
	return (1 + b2) * p * r / (b2*p + r)
}

// NRM is the negative rate metric, the mean of the false negative and false
// positive rates.
func (m *BinaryMetrics) NRM() float64 {
	var fnr, fpr float64
	if n := m.FalseNegatives + m.TruePositives; n > 0 {
		fnr = float64(m.FalseNegatives) / float64(n)
	}
	if n := m.FalsePositives + m.TrueNegatives; n > 0 {
		fpr = float64(m.FalsePositives) / float64(n)
	}
	return (fnr + fpr) / 2
}

// DRD is the distance-reciprocal distortion: each misclassified pixel
// contributes the inverse-distance-weighted share of ground-truth foreground
// in its 5x5 neighbourhood, normalised by the foreground pixel count.
func (m *BinaryMetrics) DRD() float64 { return m.drd }

// BackgroundForegroundContrast averages the background clutter and
// foreground speckle rates.
func (m *BinaryMetrics) BackgroundForegroundContrast() float64 { return m.pbc }

func distortion(gt, res []bool, w, h int) float64 {
	var total float64
	fgCount := 0
	for p := range gt {
		if gt[p] {
			fgCount++
		}
		if gt[p] == res[p] {
			continue
		}
		x, y := p%w, p/w
		var sum, weight float64
		for i := 0; i < 5; i++ {
			for j := 0; j < 5; j++ {
				nx, ny := x+i-2, y+j-2
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				weight += drdWeights[i][j]
				if gt[ny*w+nx] {
					sum += drdWeights[i][j]
				}
			}
		}
		total += sum / weight
	}
	if fgCount == 0 {
		return 0
	}
	return total / float64(fgCount)
}

func contrast(gt, res []bool) float64 {
	var bgErr, fgErr, bg, fg int
	for p := range gt {
		if gt[p] {
			fg++
			if !res[p] {
				fgErr++
			}
		} else {
			bg++
			if res[p] {
				bgErr++
			}
		}
	}
	var clutter, speckle float64
	if bg > 0 {
		clutter = float64(bgErr) / float64(bg)
	}
	if fg > 0 {
		speckle = float64(fgErr) / float64(fg)
	}
	return (clutter + speckle) / 2
}
