package audiofx

import "math"

// magnitudeSpectrum returns the magnitudes of the first WindowSize/2+1 bins
// of a Hann-windowed FFT of frame. frame length must equal WindowSize.
func magnitudeSpectrum(frame []float64) []float64 {
	re := make([]float64, WindowSize)
	im := make([]float64, WindowSize)
	for i, s := range frame {
		// Hann window tapers frame edges to reduce spectral leakage.
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(WindowSize-1))
		re[i] = s * w
	}
	fft(re, im)

	mag := make([]float64, WindowSize/2+1)
	for k := range mag {
		mag[k] = math.Hypot(re[k], im[k])
	}
	return mag
}

// fft computes an in-place iterative radix-2 FFT. len(re) == len(im) must be
// a power of two.
func fft(re, im []float64) {
	n := len(re)
	if n < 2 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			half := length / 2
			for k := 0; k < half; k++ {
				evenRe, evenIm := re[start+k], im[start+k]
				oddRe := re[start+k+half]*curRe - im[start+k+half]*curIm
				oddIm := re[start+k+half]*curIm + im[start+k+half]*curRe
				re[start+k], im[start+k] = evenRe+oddRe, evenIm+oddIm
				re[start+k+half], im[start+k+half] = evenRe-oddRe, evenIm-oddIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}
