package enhance

import (
	"fmt"
	"math"
	"strings"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

type MorphOp int

const (
	Erode MorphOp = iota
	Dilate
	Open
	Close
)

var morphNames = [...]string{"erode", "dilate", "open", "close"}

func (op MorphOp) String() string {
	if op < 0 || int(op) >= len(morphNames) {
		return fmt.Sprintf("MorphOp(%d)", int(op))
	}
	return morphNames[op]
}

func ParseMorphOp(s string) (MorphOp, error) {
	for i, name := range morphNames {
		if strings.EqualFold(s, name) {
			return MorphOp(i), nil
		}
	}
	return 0, pixbuf.Invalid("ParseMorphOp", "operation", s, "must be erode, dilate, open or close")
}

// Morphology applies a square size x size min (erode) or max (dilate) filter
// to the intensity plane; open is erode then dilate, close the reverse.
// Borders clamp to the edge.
func Morphology(buf *pixbuf.Buffer, op MorphOp, size int) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Morphology", buf); err != nil {
		return nil, err
	}
	if err := pixbuf.RequireOddSize("Morphology", "size", size); err != nil {
		return nil, err
	}
	half := size / 2
	p := buf.IntensityPlane()
	switch op {
	case Erode:
		p = extremum(p, half, math.Min)
	case Dilate:
		p = extremum(p, half, math.Max)
	case Open:
		p = extremum(extremum(p, half, math.Min), half, math.Max)
	case Close:
		p = extremum(extremum(p, half, math.Max), half, math.Min)
	default:
		return nil, pixbuf.OutOfRange("Morphology", "operation", int(op), "unknown operation")
	}
	return p.GrayWithAlpha(buf), nil
}

func extremum(src *pixbuf.Plane, half int, pick func(a, b float64) float64) *pixbuf.Plane {
	out := pixbuf.NewPlane(src.Width, src.Height)
	parallel.Rows(src.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < src.Width; x++ {
				v := src.At(x, y)
				for dy := -half; dy <= half; dy++ {
					for dx := -half; dx <= half; dx++ {
						v = pick(v, src.AtClamped(x+dx, y+dy))
					}
				}
				out.Data[y*src.Width+x] = v
			}
		}
	})
	return out
}
