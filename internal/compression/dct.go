// Package compression implements lossy and lossless coding demonstrations.
package compression

import (
	"math"

	"pixelforge/internal/parallel"
	"pixelforge/internal/pixbuf"
)

// BlockSize is the DCT block edge.
const BlockSize = 8

// basis[u][x] = c(u)·cos((2x+1)uπ/2N) with the orthonormal 2/N split across
// both passes.
var basis = func() [BlockSize][BlockSize]float64 {
	var b [BlockSize][BlockSize]float64
	for u := 0; u < BlockSize; u++ {
		cu := 1.0
		if u == 0 {
			cu = 1 / math.Sqrt2
		}
		for x := 0; x < BlockSize; x++ {
			b[u][x] = math.Sqrt(2.0/BlockSize) * cu * math.Cos(float64(2*x+1)*float64(u)*math.Pi/(2*BlockSize))
		}
	}
	return b
}()

// Block is an 8x8 sample or coefficient grid indexed [row][col].
type Block [BlockSize][BlockSize]float64

// DCT is the 2D type-II DCT of an 8x8 block.
func DCT(in Block) Block {
	var tmp, out Block
	for u := 0; u < BlockSize; u++ {
		for y := 0; y < BlockSize; y++ {
			var s float64
			for x := 0; x < BlockSize; x++ {
				s += basis[u][x] * in[x][y]
			}
			tmp[u][y] = s
		}
	}
	for u := 0; u < BlockSize; u++ {
		for v := 0; v < BlockSize; v++ {
			var s float64
			for y := 0; y < BlockSize; y++ {
				s += basis[v][y] * tmp[u][y]
			}
			out[u][v] = s
		}
	}
	return out
}

// IDCT inverts DCT.
func IDCT(in Block) Block {
	var tmp, out Block
	for x := 0; x < BlockSize; x++ {
		for v := 0; v < BlockSize; v++ {
			var s float64
			for u := 0; u < BlockSize; u++ {
				s += basis[u][x] * in[u][v]
			}
			tmp[x][v] = s
		}
	}
	for x := 0; x < BlockSize; x++ {
		for y := 0; y < BlockSize; y++ {
			var s float64
			for v := 0; v < BlockSize; v++ {
				s += basis[v][y] * tmp[x][v]
			}
			out[x][y] = s
		}
	}
	return out
}

// quantStep is (1+i+j)·max(1, (100−quality)/10). Coefficients round half up.
func quantStep(i, j int, quality float64) float64 {
	return float64(1+i+j) * math.Max(1, (100-quality)/10)
}

// JPEGStyle runs each RGB channel through an 8x8 DCT, uniform quantisation
// and inverse DCT. Partial blocks read clamp-to-edge samples and write only
// the in-image part. Alpha is copied.
func JPEGStyle(buf *pixbuf.Buffer, quality float64) (*pixbuf.Buffer, error) {
	if err := pixbuf.RequireBuffer("JPEGStyle", buf); err != nil {
		return nil, err
	}
	if math.IsNaN(quality) || quality < 0 || quality > 100 {
		return nil, pixbuf.OutOfRange("JPEGStyle", "quality", quality, "must be within [0, 100]")
	}
	w, h := buf.Width(), buf.Height()
	src := buf.Raw()
	out := buf.Pix()
	blocksY := (h + BlockSize - 1) / BlockSize

	parallel.Rows(blocksY, func(start, end int) {
		for by := start * BlockSize; by < end*BlockSize; by += BlockSize {
			for bx := 0; bx < w; bx += BlockSize {
				for c := 0; c < 3; c++ {
					var in Block
					for j := 0; j < BlockSize; j++ {
						for i := 0; i < BlockSize; i++ {
							px, py := min(bx+i, w-1), min(by+j, h-1)
							in[j][i] = float64(src[buf.Offset(px, py)+c]) - 128
						}
					}
					coef := DCT(in)
					for i := 0; i < BlockSize; i++ {
						for j := 0; j < BlockSize; j++ {
							q := quantStep(i, j, quality)
							coef[i][j] = math.Floor(coef[i][j]/q+0.5) * q
						}
					}
					rec := IDCT(coef)
					for j := 0; j < BlockSize && by+j < h; j++ {
						for i := 0; i < BlockSize && bx+i < w; i++ {
							out[buf.Offset(bx+i, by+j)+c] = pixbuf.Quantize(rec[j][i] + 128)
						}
					}
				}
			}
		}
	})
	return pixbuf.Wrap(w, h, out), nil
}
