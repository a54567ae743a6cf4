// Package enhance contains contrast and shape enhancement operations:
// histogram equalisation, CLAHE, intensity windowing, unsharp masking and
// grey-level morphology. All of them work on the mean of R, G and B.
package enhance

import (
	"math"

	"pixelforge/internal/convolve"
	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// level is the intensity of the pixel at sample offset i rounded to 0..255.
func level(src []uint8, i int) int {
	return int(math.Round((float64(src[i]) + float64(src[i+1]) + float64(src[i+2])) / 3))
}

// equalizeTable maps each level through the normalised CDF of hist.
// A histogram with a single populated level maps every level to itself.
func equalizeTable(hist *[256]float64, total float64) [256]float64 {
	var table [256]float64
	var cdf [256]float64
	run := 0.0
	for i, h := range hist {
		run += h
		cdf[i] = run
	}
	cdfMin := 0.0
	for _, c := range cdf {
		if c > 0 {
			cdfMin = c
			break
		}
	}
	den := total - cdfMin
	for i := range table {
		if den <= 0 {
			table[i] = float64(i)
			continue
		}
		table[i] = (cdf[i] - cdfMin) / den * 255
	}
	return table
}

// HistogramEqualize spreads the intensity histogram over 0..255 and writes
// the mapped level to R, G and B.
func HistogramEqualize(buf *pixbuf.Buffer) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("HistogramEqualize", buf); err != nil {
		return nil, err
	}
	src := buf.Raw()
	var hist [256]float64
	for i := 0; i < len(src); i += pixbuf.Channels {
		hist[level(src, i)]++
	}
	table := equalizeTable(&hist, float64(buf.Pixels()))

	out := make([]uint8, len(src))
	for i := 0; i < len(src); i += pixbuf.Channels {
		v := pixbuf.Quantize(table[level(src, i)])
		out[i], out[i+1], out[i+2], out[i+3] = v, v, v, src[i+3]
	}
	return pixbuf.Wrap(buf.Width(), buf.Height(), out), nil
}

// CLAHE equalises each tileSize x tileSize tile independently after clipping
// its histogram at clipLimit·pixels/256 and spreading the excess evenly.
func CLAHE(buf *pixbuf.Buffer, clipLimit float64, tileSize int) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("CLAHE", buf); err != nil {
		return nil, err
	}
	if err := pixbuf.RequirePositive("CLAHE", "clipLimit", clipLimit); err != nil {
		return nil, err
	}
	if tileSize < 1 {
		return nil, pixbuf.OutOfRange("CLAHE", "tileSize", tileSize, "must be >= 1")
	}

	w, h := buf.Width(), buf.Height()
	src := buf.Raw()
	out := make([]uint8, len(src))
	tilesX := (w + tileSize - 1) / tileSize
	tilesY := (h + tileSize - 1) / tileSize

	parallel.Rows(tilesY, func(start, end int) {
		for ty := start; ty < end; ty++ {
			y0, y1 := ty*tileSize, min((ty+1)*tileSize, h)
			for tx := 0; tx < tilesX; tx++ {
				x0, x1 := tx*tileSize, min((tx+1)*tileSize, w)

				var hist [256]float64
				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						hist[level(src, (y*w+x)*pixbuf.Channels)]++
					}
				}
				count := float64((y1 - y0) * (x1 - x0))
				clip := clipLimit * count / 256
				excess := 0.0
				for i, v := range hist {
					if v > clip {
						excess += v - clip
						hist[i] = clip
					}
				}
				for i := range hist {
					hist[i] += excess / 256
				}
				table := equalizeTable(&hist, count)

				for y := y0; y < y1; y++ {
					for x := x0; x < x1; x++ {
						i := (y*w + x) * pixbuf.Channels
						v := pixbuf.Quantize(table[level(src, i)])
						out[i], out[i+1], out[i+2], out[i+3] = v, v, v, src[i+3]
					}
				}
			}
		}
	})
	return pixbuf.Wrap(w, h, out), nil
}

// Window maps intensities in [center-width/2, center+width/2] linearly onto
// 0..255 and saturates outside it.
func Window(buf *pixbuf.Buffer, center, width float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("Window", buf); err != nil {
		return nil, err
	}
	if err := pixbuf.RequirePositive("Window", "width", width); err != nil {
		return nil, err
	}
	lo, hi := center-width/2, center+width/2
	p := buf.IntensityPlane()
	for i, g := range p.Data {
		switch {
		case g <= lo:
			p.Data[i] = 0
		case g >= hi:
			p.Data[i] = 255
		default:
			p.Data[i] = (g - lo) / width * 255
		}
	}
	return p.GrayWithAlpha(buf), nil
}

// UnsharpMask adds amount·(original − blur(radius)) to every colour channel.
func UnsharpMask(buf *pixbuf.Buffer, amount, radius float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("UnsharpMask", buf); err != nil {
		return nil, err
	}
	if math.IsNaN(amount) || amount < 0 {
		return nil, pixbuf.OutOfRange("UnsharpMask", "amount", amount, "must be >= 0")
	}
	f := buf.Floats()
	blurred, err := convolve.GaussianFloats(f, radius)
	if err != nil {
		return nil, err
	}
	out := pixbuf.NewFloats(f.Width, f.Height)
	for i := 0; i < len(f.Data); i += pixbuf.Channels {
		for c := 0; c < 3; c++ {
			o := f.Data[i+c]
			out.Data[i+c] = o + amount*(o-blurred.Data[i+c])
		}
		out.Data[i+3] = f.Data[i+3]
	}
	return out.Quantize(), nil
}
