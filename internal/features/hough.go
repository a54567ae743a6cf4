package features

import (
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"

	"pixelforge/internal/pixbuf"
)

// Hough returns the Canny(50, 150, σ=1.4) edge map the line transform votes
// on.
func Hough(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	return Canny(buf, 50, 150, 1.4)
}

// Line is x·cos(Theta) + y·sin(Theta) = Rho.
type Line struct {
	Rho   float64
	Theta float64
	Votes int
}

type HoughOptions struct {
	ThetaSteps int // angular bins over [0, π)
	MinVotes   int
	MaxLines   int
}

func DefaultHoughOptions() HoughOptions {
	return HoughOptions{ThetaSteps: 180, MinVotes: 20, MaxLines: 10}
}

// HoughLines votes every strong Canny edge pixel into a (rho, theta)
// accumulator and returns the local maxima with at least MinVotes, strongest
// first.
func HoughLines(buf *pixbuf.Buffer, opts HoughOptions) ([]Line, error) {
	if opts.ThetaSteps < 1 {
		return nil, pixbuf.OutOfRange("HoughLines", "ThetaSteps", opts.ThetaSteps, "must be >= 1")
	}
	if opts.MaxLines < 1 {
		return nil, pixbuf.OutOfRange("HoughLines", "MaxLines", opts.MaxLines, "must be >= 1")
	}
	edges, err := EdgeMap(buf, 50, 150, 1.4)
	if err != nil {
		return nil, err
	}
	w, h := buf.Width(), buf.Height()
	maxRho := int(math.Ceil(math.Hypot(float64(w), float64(h))))
	rhoBins := 2*maxRho + 1

	sines := make([]float64, opts.ThetaSteps)
	cosines := make([]float64, opts.ThetaSteps)
	for t := range sines {
		theta := float64(t) * math.Pi / float64(opts.ThetaSteps)
		sines[t], cosines[t] = math.Sincos(theta)
	}

	acc := make([]int, rhoBins*opts.ThetaSteps)
	for p, e := range edges {
		if e != EdgeStrong {
			continue
		}
		x, y := float64(p%w), float64(p/w)
		for t := range sines {
			r := int(math.Round(x*cosines[t]+y*sines[t])) + maxRho
			acc[r*opts.ThetaSteps+t]++
		}
	}

	var lines []Line
	for r := 0; r < rhoBins; r++ {
		for t := 0; t < opts.ThetaSteps; t++ {
			v := acc[r*opts.ThetaSteps+t]
			if v < opts.MinVotes || v == 0 || !localMax(acc, rhoBins, opts.ThetaSteps, r, t) {
				continue
			}
			lines = append(lines, Line{
				Rho:   float64(r - maxRho),
				Theta: float64(t) * math.Pi / float64(opts.ThetaSteps),
				Votes: v,
			})
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Votes > lines[j].Votes })
	if len(lines) > opts.MaxLines {
		lines = lines[:opts.MaxLines]
	}
	return lines, nil
}

// localMax treats ties in favour of the earlier cell so a plateau yields one
// peak.
func localMax(acc []int, rhoBins, thetaSteps, r, t int) bool {
	v := acc[r*thetaSteps+t]
	for dr := -1; dr <= 1; dr++ {
		for dt := -1; dt <= 1; dt++ {
			if dr == 0 && dt == 0 {
				continue
			}
			rr, tt := r+dr, t+dt
			if rr < 0 || rr >= rhoBins || tt < 0 || tt >= thetaSteps {
				continue
			}
			n := acc[rr*thetaSteps+tt]
			if n > v || (n == v && (dr < 0 || (dr == 0 && dt < 0))) {
				return false
			}
		}
	}
	return true
}

// DrawLines overlays lines on a copy of buf.
func DrawLines(buf *pixbuf.Buffer, lines []Line, c color.Color, width float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("DrawLines", buf); err != nil {
		return nil, err
	}
	dc := gg.NewContextForImage(buf.ToImage())
	dc.SetColor(c)
	dc.SetLineWidth(width)

	w, h := float64(buf.Width()), float64(buf.Height())
	for _, l := range lines {
		sin, cos := math.Sincos(l.Theta)
		if math.Abs(sin) > 1e-9 {
			// y = (rho - x·cos) / sin
			dc.DrawLine(0, l.Rho/sin, w, (l.Rho-w*cos)/sin)
		} else {
			x := l.Rho / cos
			dc.DrawLine(x, 0, x, h)
		}
	}
	dc.Stroke()
	return pixbuf.FromImage(dc.Image()), nil
}
