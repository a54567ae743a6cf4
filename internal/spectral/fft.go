// Package spectral provides the radix-2 Fourier transforms used by the
// frequency-domain filters, together with the grid conversions to and from
// pixel buffers.
package spectral

import (
	"math"
	"math/bits"
	"math/cmplx"

	"pixelforge/internal/pixbuf"
)

func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// FFT returns the forward transform X[k] = Σ x[j]·exp(-2πijk/n). len(x) must
// be a power of two; lengths 0 and 1 are returned as a copy.
func FFT(x []complex128) ([]complex128, error) {
	if len(x) > 1 && !IsPowerOfTwo(len(x)) {
		return nil, pixbuf.Invalid("FFT", "length", len(x), "must be a power of two")
	}
	out := make([]complex128, len(x))
	copy(out, x)
	transform(out, twiddles(len(out)))
	return out, nil
}

// IFFT inverts FFT by conjugating, transforming forward, then conjugating
// and dividing by n.
func IFFT(x []complex128) ([]complex128, error) {
	if len(x) > 1 && !IsPowerOfTwo(len(x)) {
		return nil, pixbuf.Invalid("IFFT", "length", len(x), "must be a power of two")
	}
	out := make([]complex128, len(x))
	copy(out, x)
	inverse(out, twiddles(len(out)))
	return out, nil
}

// twiddles returns exp(-2πik/n) for k in [0, n/2).
func twiddles(n int) []complex128 {
	tw := make([]complex128, n/2)
	for k := range tw {
		tw[k] = cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n))
	}
	return tw
}

// transform is an in-place iterative Cooley-Tukey: bit-reversal permutation
// followed by log2(n) butterfly stages.
func transform(a []complex128, tw []complex128) {
	n := len(a)
	if n <= 1 {
		return
	}
	shift := bits.UintSize - bits.Len(uint(n-1))
	for i := 0; i < n; i++ {
		j := int(bits.Reverse(uint(i)) >> shift)
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := n / size
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				t := tw[k*step] * a[start+k+half]
				e := a[start+k]
				a[start+k] = e + t
				a[start+k+half] = e - t
			}
		}
	}
}

func inverse(a []complex128, tw []complex128) {
	for i, v := range a {
		a[i] = cmplx.Conj(v)
	}
	transform(a, tw)
	n := float64(len(a))
	for i, v := range a {
		a[i] = complex(real(v)/n, -imag(v)/n)
	}
}
