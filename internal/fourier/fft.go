// Package fourier implements the recursive radix-2 transform used by the
// Fourier analysis tool.
//
// Every recursion level scales its butterfly by 0.5, so a forward transform
// of length n equals the textbook DFT divided by n, and the inverse carries
// the same 1/n factor. A forward/inverse round trip therefore returns x/n.
package fourier

import (
	"math"
	"math/cmplx"

	"statkit/domain/core"
)

// FFT transforms in, whose length must be a power of two. The input is not
// modified.
func FFT(in []complex128, inverse bool) ([]complex128, error) {
	n := len(in)
	if n == 0 {
		return nil, core.ErrEmptySequence
	}
	if !IsPowerOfTwo(n) {
		return nil, core.ErrNotPowerOfTwo
	}
	return fft(in, inverse), nil
}

func fft(in []complex128, inverse bool) []complex128 {
	n := len(in)
	if n == 1 {
		return []complex128{in[0]}
	}

	half := n / 2
	even := make([]complex128, half)
	odd := make([]complex128, half)
	for i := 0; i < half; i++ {
		even[i] = in[2*i]
		odd[i] = in[2*i+1]
	}
	e := fft(even, inverse)
	o := fft(odd, inverse)

	step := -math.Pi / float64(half)
	if inverse {
		step = -step
	}

	out := make([]complex128, n)
	for i := 0; i < half; i++ {
		t := o[i] * cmplx.Rect(1, step*float64(i))
		out[i] = complex(0.5, 0) * (e[i] + t)
		out[i+half] = complex(0.5, 0) * (e[i] - t)
	}
	return out
}

// IsPowerOfTwo reports whether n is a positive power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo returns the smallest power of two >= n
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PadToPowerOfTwo copies real samples into a zero-padded complex sequence
func PadToPowerOfTwo(samples []float64) []complex128 {
	out := make([]complex128, NextPowerOfTwo(len(samples)))
	for i, v := range samples {
		out[i] = complex(v, 0)
	}
	return out
}

// Transform pads real samples, transforms them and truncates the result
// back to len(samples)
func Transform(samples []float64, inverse bool) ([]complex128, error) {
	if len(samples) == 0 {
		return nil, core.ErrEmptySequence
	}
	out, err := FFT(PadToPowerOfTwo(samples), inverse)
	if err != nil {
		return nil, err
	}
	return out[:len(samples)], nil
}

// TransformComplex is Transform for complex input given as separate parts.
// im may be nil or shorter than re; missing entries are zero.
func TransformComplex(re, im []float64, inverse bool) ([]complex128, error) {
	n := len(re)
	if len(im) > n {
		n = len(im)
	}
	if n == 0 {
		return nil, core.ErrEmptySequence
	}
	in := make([]complex128, NextPowerOfTwo(n))
	for i := 0; i < n; i++ {
		var r, c float64
		if i < len(re) {
			r = re[i]
		}
		if i < len(im) {
			c = im[i]
		}
		in[i] = complex(r, c)
	}
	out, err := FFT(in, inverse)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}
