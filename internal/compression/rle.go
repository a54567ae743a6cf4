package compression

import (
	"math"

	"pixelforge/internal/pixbuf"
)

type Run struct {
	Value uint8
	Count int
}

// RunLength is the grey-level run-length coding of an image.
type RunLength struct {
	Width  int
	Height int
	Runs   []Run
}

// Len returns the number of pixels the runs cover.
func (rl *RunLength) Len() int {
	n := 0
	for _, r := range rl.Runs {
		n += r.Count
	}
	return n
}

// RunLengthEncode codes the rounded RGB average of each pixel in raster
// order.
func RunLengthEncode(buf *pixbuf.Buffer) (*RunLength, error) {
	if err := pixbuf.RequireBuffer("RunLengthEncode", buf); err != nil {
		return nil, err
	}
	rl := &RunLength{Width: buf.Width(), Height: buf.Height()}
	src := buf.Raw()
	for i := 0; i < len(src); i += pixbuf.Channels {
		// round half up like the histogram level rule
		g := uint8(math.Floor(buf.Intensity(i) + 0.5))
		if n := len(rl.Runs); n > 0 && rl.Runs[n-1].Value == g {
			rl.Runs[n-1].Count++
			continue
		}
		rl.Runs = append(rl.Runs, Run{Value: g, Count: 1})
	}
	return rl, nil
}

// RunLengthDecode expands runs into an opaque grey image. The runs must
// cover exactly Width·Height pixels.
func RunLengthDecode(rl *RunLength) (*pixbuf.Buffer, error) {
	if rl == nil || rl.Width < 1 || rl.Height < 1 {
		return nil, pixbuf.Invalid("RunLengthDecode", "size", rl, "empty image")
	}
	for _, r := range rl.Runs {
		if r.Count < 1 {
			return nil, pixbuf.Invalid("RunLengthDecode", "count", r.Count, "runs must be non-empty")
		}
	}
	if n := rl.Len(); n != rl.Width*rl.Height {
		return nil, pixbuf.Invalid("RunLengthDecode", "runs", n, "do not cover the image")
	}
	out := make([]uint8, 0, rl.Width*rl.Height*pixbuf.Channels)
	for _, r := range rl.Runs {
		for k := 0; k < r.Count; k++ {
			out = append(out, r.Value, r.Value, r.Value, 255)
		}
	}
	return pixbuf.Wrap(rl.Width, rl.Height, out), nil
}
