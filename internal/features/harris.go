package features

import (
	"math"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// HarrisResponse computes det(M) − k·trace(M)² where M is the structure
// tensor of central-difference derivatives summed over a 3x3 window.
// Derivatives exist on the interior only, and the response is zero within
// one pixel of the border.
func HarrisResponse(buf *pixbuf.Buffer, k float64) (*pixbuf.Plane, error) {
	if err := pixbuf.RequireBuffer("Harris", buf); err != nil {
		return nil, err
	}
	if math.IsNaN(k) || k < 0 {
		return nil, pixbuf.OutOfRange("Harris", "k", k, "must be >= 0")
	}
	gray := buf.IntensityPlane()
	w, h := gray.Width, gray.Height

	ixx := pixbuf.NewPlane(w, h)
	iyy := pixbuf.NewPlane(w, h)
	ixy := pixbuf.NewPlane(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			ix := (gray.At(x+1, y) - gray.At(x-1, y)) / 2
			iy := (gray.At(x, y+1) - gray.At(x, y-1)) / 2
			i := y*w + x
			ixx.Data[i] = ix * ix
			iyy.Data[i] = iy * iy
			ixy.Data[i] = ix * iy
		}
	}

	resp := pixbuf.NewPlane(w, h)
	parallel.Rows(h, func(start, end int) {
		for y := max(start, 1); y < min(end, h-1); y++ {
			for x := 1; x < w-1; x++ {
				var sxx, syy, sxy float64
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						j := (y+dy)*w + x + dx
						sxx += ixx.Data[j]
						syy += iyy.Data[j]
						sxy += ixy.Data[j]
					}
				}
				tr := sxx + syy
				resp.Data[y*w+x] = sxx*syy - sxy*sxy - k*tr*tr
			}
		}
	})
	return resp, nil
}

// Harris paints pixels whose response exceeds threshold·max(response) pure
// red on an opaque copy of the image.
func Harris(buf *pixbuf.Buffer, threshold, k float64) (*pixbuf.Buffer, error) {
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, pixbuf.OutOfRange("Harris", "threshold", threshold, "must be >= 0")
	}
	resp, err := HarrisResponse(buf, k)
	if err != nil {
		return nil, err
	}
	peak := math.Inf(-1)
	for _, r := range resp.Data {
		peak = math.Max(peak, r)
	}
	cut := peak * threshold

	out := buf.Pix()
	for p, r := range resp.Data {
		i := p * pixbuf.Channels
		out[i+3] = 255
		if r > cut {
			out[i], out[i+1], out[i+2] = 255, 0, 0
		}
	}
	return pixbuf.Wrap(buf.Width(), buf.Height(), out), nil
}

// Corners lists the interior pixels whose response exceeds
// threshold·max(response).
func Corners(buf *pixbuf.Buffer, threshold, k float64) ([][2]int, error) {
	resp, err := HarrisResponse(buf, k)
	if err != nil {
		return nil, err
	}
	peak := math.Inf(-1)
	for _, r := range resp.Data {
		peak = math.Max(peak, r)
	}
	var pts [][2]int
	for p, r := range resp.Data {
		if r > peak*threshold {
			pts = append(pts, [2]int{p % resp.Width, p / resp.Width})
		}
	}
	return pts, nil
}
