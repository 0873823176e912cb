package audiofx

import (
	"errors"
	"fmt"
	"math"

	"clipforge/pipeline-go/internal/utils"
)

// ErrAudioRead is returned when the source audio cannot be decoded or
// contains zero samples. It aborts the whole assembly.
var ErrAudioRead = errors.New("audio unreadable or empty")

const (
	// Analysis window and hop in samples, applied at the file's native rate.
	WindowSize = 2048
	HopSize    = 512

	// durationEpsilon keeps downstream time/duration divisions safe.
	durationEpsilon = 1e-6
)

// Features holds the per-window descriptors driving lip motion. All
// time-indexed slices are ordered by increasing time at a fixed hop.
type Features struct {
	Duration   float64
	SampleRate int

	// RMS is min-max normalized to [0,1]; constant input maps to all zeros.
	RMS []float64

	// OnsetTimes are detected speech-onset timestamps in seconds.
	OnsetTimes []float64

	// Informational descriptors, not needed for motion decisions.
	SpectralCentroid []float64
	ZeroCrossingRate []float64

	meanRMS float64
}

// Analyze decodes the audio file at path and derives motion features.
func Analyze(path string) (Features, error) {
	samples, sampleRate, err := decodeSamples(path)
	if err != nil {
		return Features{}, fmt.Errorf("%w: %v", ErrAudioRead, err)
	}
	if len(samples) == 0 {
		return Features{}, fmt.Errorf("%w: %s has no samples", ErrAudioRead, path)
	}
	feats := analyzeSamples(samples, sampleRate)
	utils.Info(
		"audio analyzed",
		"path", path,
		"duration_s", fmt.Sprintf("%.2f", feats.Duration),
		"windows", len(feats.RMS),
		"onsets", len(feats.OnsetTimes),
	)
	return feats, nil
}

func analyzeSamples(samples []float64, sampleRate int) Features {
	duration := float64(len(samples)) / float64(sampleRate)
	if duration < durationEpsilon {
		duration = durationEpsilon
	}

	windows := windowCount(len(samples))
	rms := make([]float64, windows)
	zcr := make([]float64, windows)
	centroid := make([]float64, windows)
	flux := make([]float64, windows)

	var prevMag []float64
	for w := 0; w < windows; w++ {
		start := w * HopSize
		frame := frameAt(samples, start)

		rms[w] = frameRMS(frame)
		zcr[w] = frameZCR(frame)

		mag := magnitudeSpectrum(frame)
		centroid[w] = spectralCentroid(mag, sampleRate)
		flux[w] = spectralFlux(mag, prevMag)
		prevMag = mag
	}

	feats := Features{
		Duration:         duration,
		SampleRate:       sampleRate,
		RMS:              normalize(rms),
		OnsetTimes:       pickOnsets(flux, sampleRate),
		SpectralCentroid: centroid,
		ZeroCrossingRate: zcr,
	}
	feats.meanRMS = mean(feats.RMS)
	return feats
}

// RMSAt linearly interpolates the normalized RMS at timestamp t seconds.
// Out-of-range timestamps clamp to the first/last window.
func (f Features) RMSAt(t float64) float64 {
	if len(f.RMS) == 0 {
		return 0
	}
	duration := f.Duration
	if duration < durationEpsilon {
		duration = durationEpsilon
	}
	pos := t / duration * float64(len(f.RMS)-1)
	if pos <= 0 {
		return f.RMS[0]
	}
	if pos >= float64(len(f.RMS)-1) {
		return f.RMS[len(f.RMS)-1]
	}
	lo := int(pos)
	frac := pos - float64(lo)
	return f.RMS[lo]*(1-frac) + f.RMS[lo+1]*frac
}

// MeanRMS is the mean of the normalized RMS sequence over the whole clip.
// Analyze caches it; a Features assembled from its exported fields derives
// it from RMS directly, so the speaking ratio never compares against zero.
func (f Features) MeanRMS() float64 {
	if f.meanRMS > 0 {
		return f.meanRMS
	}
	return mean(f.RMS)
}

// HasOnsetWithin reports whether any onset lies within tol seconds of t.
func (f Features) HasOnsetWithin(t, tol float64) bool {
	for _, onset := range f.OnsetTimes {
		if math.Abs(onset-t) < tol {
			return true
		}
	}
	return false
}

func windowCount(sampleLen int) int {
	if sampleLen <= 0 {
		return 0
	}
	return 1 + (sampleLen-1)/HopSize
}

func frameAt(samples []float64, start int) []float64 {
	frame := make([]float64, WindowSize)
	end := start + WindowSize
	if end > len(samples) {
		end = len(samples)
	}
	copy(frame, samples[start:end])
	return frame
}

func frameRMS(frame []float64) float64 {
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

func frameZCR(frame []float64) float64 {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}

func spectralCentroid(mag []float64, sampleRate int) float64 {
	var weighted, total float64
	binHz := float64(sampleRate) / float64(WindowSize)
	for k, m := range mag {
		weighted += float64(k) * binHz * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

func spectralFlux(mag, prev []float64) float64 {
	if prev == nil {
		return 0
	}
	var flux float64
	for k := range mag {
		if d := mag[k] - prev[k]; d > 0 {
			flux += d
		}
	}
	return flux
}

// pickOnsets runs a simple peak picker over the spectral flux envelope:
// local maxima above mean + 1.5*stddev, at least minGap windows apart.
func pickOnsets(flux []float64, sampleRate int) []float64 {
	if len(flux) < 3 {
		return nil
	}
	m := mean(flux)
	sd := stddev(flux, m)
	if sd == 0 {
		return nil
	}
	threshold := m + 1.5*sd
	const minGap = 3

	var onsets []float64
	lastPick := -minGap
	for i := 1; i < len(flux)-1; i++ {
		if flux[i] < threshold || flux[i] < flux[i-1] || flux[i] <= flux[i+1] {
			continue
		}
		if i-lastPick < minGap {
			continue
		}
		onsets = append(onsets, float64(i*HopSize)/float64(sampleRate))
		lastPick = i
	}
	return onsets
}

// normalize maps values to [0,1] via (v-min)/(max-min). A constant sequence
// (silence) maps to all zeros.
func normalize(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	out := make([]float64, len(values))
	if span < 1e-12 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
