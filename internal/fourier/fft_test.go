package fourier

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"

	"statkit/domain/core"
)

// dft is the O(n^2) textbook transform without normalisation
func dft(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		for j := 0; j < n; j++ {
			sum += x[j] * cmplx.Rect(1, -2*math.Pi*float64(k*j)/float64(n))
		}
		out[k] = sum
	}
	return out
}

func assertClose(t *testing.T, want, got []complex128, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		scale := math.Max(1, cmplx.Abs(want[i]))
		assert.LessOrEqual(t, cmplx.Abs(want[i]-got[i])/scale, tol, "index %d: want %v got %v", i, want[i], got[i])
	}
}

func TestTwoPointCase(t *testing.T) {
	fwd, err := FFT([]complex128{1, 1}, false)
	require.NoError(t, err)
	assert.Equal(t, []complex128{1, 0}, fwd)

	back, err := FFT(fwd, true)
	require.NoError(t, err)
	// round trip scales by 1/n
	assert.Equal(t, []complex128{0.5, 0.5}, back)
}

func TestRoundTripScalesByOneOverN(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for _, n := range []int{1, 2, 8, 64, 256} {
		x := make([]complex128, n)
		for i := range x {
			x[i] = complex(rng.NormFloat64(), 0)
		}
		fwd, err := FFT(x, false)
		require.NoError(t, err)
		back, err := FFT(fwd, true)
		require.NoError(t, err)

		want := make([]complex128, n)
		for i := range x {
			want[i] = x[i] / complex(float64(n), 0)
		}
		assertClose(t, want, back, 1e-12)
	}
}

func TestForwardIsDFTOverN(t *testing.T) {
	x := []complex128{1, 2, 3, 4, 0, -1, 2.5, 7}
	got, err := FFT(x, false)
	require.NoError(t, err)

	ref := dft(x)
	for i := range ref {
		ref[i] /= complex(float64(len(x)), 0)
	}
	assertClose(t, ref, got, 1e-12)
}

func TestZeroPaddingMatchesDirectDFT(t *testing.T) {
	samples := []float64{3, -1, 4}
	padded := PadToPowerOfTwo(samples)
	require.Len(t, padded, 4)
	assert.Equal(t, complex128(0), padded[3])

	got, err := FFT(padded, false)
	require.NoError(t, err)

	ref := dft([]complex128{3, -1, 4, 0})
	for i := range ref {
		ref[i] /= 4
	}
	assertClose(t, ref, got, 1e-9)

	truncated, err := Transform(samples, false)
	require.NoError(t, err)
	assertClose(t, ref[:3], truncated, 1e-9)
}

func TestAgreesWithGonumReference(t *testing.T) {
	samples := []float64{0.5, 1.5, -2, 4, 9, -3, 0, 1}
	got, err := Transform(samples, false)
	require.NoError(t, err)

	coeff := fourier.NewFFT(len(samples)).Coefficients(nil, samples)
	n := complex(float64(len(samples)), 0)
	// gonum returns the n/2+1 non-redundant unnormalised coefficients
	for k := range coeff {
		assert.InDelta(t, real(coeff[k]/n), real(got[k]), 1e-12, "re %d", k)
		assert.InDelta(t, imag(coeff[k]/n), imag(got[k]), 1e-12, "im %d", k)
	}
}

func TestInvalidLengths(t *testing.T) {
	_, err := FFT(make([]complex128, 3), false)
	assert.ErrorIs(t, err, core.ErrNotPowerOfTwo)
	_, err = FFT(nil, false)
	assert.ErrorIs(t, err, core.ErrEmptySequence)
	_, err = Transform(nil, true)
	assert.ErrorIs(t, err, core.ErrEmptySequence)
}

func TestPowersOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(1024))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(6))
	assert.Equal(t, 8, NextPowerOfTwo(5))
	assert.Equal(t, 1, NextPowerOfTwo(0))
}

func TestTransformComplexPadsImaginaryPart(t *testing.T) {
	got, err := TransformComplex([]float64{1, 0}, []float64{0, 1, 0}, false)
	require.NoError(t, err)
	ref := dft([]complex128{1, 1i, 0, 0})
	for i := range ref {
		ref[i] /= 4
	}
	assertClose(t, ref[:3], got, 1e-12)
}
