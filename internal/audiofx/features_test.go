package audiofx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, sampleRate, n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestAnalyzeSamplesSilence(t *testing.T) {
	samples := make([]float64, 16000)
	feats := analyzeSamples(samples, 16000)

	assert.Empty(t, feats.OnsetTimes, "silence should produce no onsets")
	assert.Zero(t, feats.MeanRMS())
	for _, v := range feats.RMS {
		assert.Zero(t, v, "constant input should normalize to all zeros")
	}
	assert.InDelta(t, 1.0, feats.Duration, 1e-9)
}

func TestAnalyzeSamplesNormalizationRange(t *testing.T) {
	// Quiet tone with a loud burst in the middle.
	samples := sine(220, 16000, 32000, 0.05)
	burst := sine(220, 16000, 4000, 0.9)
	copy(samples[14000:], burst)

	feats := analyzeSamples(samples, 16000)

	lo, hi := 1.0, 0.0
	for _, v := range feats.RMS {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	assert.Zero(t, lo, "min window should normalize to 0")
	assert.Equal(t, 1.0, hi, "max window should normalize to 1")
	assert.Greater(t, feats.MeanRMS(), 0.0)
}

func TestAnalyzeSamplesOnsetNearBurst(t *testing.T) {
	samples := make([]float64, 48000)
	burst := sine(440, 16000, 8000, 0.9)
	copy(samples[24000:], burst)

	feats := analyzeSamples(samples, 16000)

	require.NotEmpty(t, feats.OnsetTimes)
	burstAt := 24000.0 / 16000.0
	assert.True(t, feats.HasOnsetWithin(burstAt, 0.2),
		"expected an onset near the burst at %.2fs, got %v", burstAt, feats.OnsetTimes)
}

func TestRMSAtInterpolatesAndClamps(t *testing.T) {
	feats := Features{
		Duration: 1.0,
		RMS:      []float64{0, 1, 0},
	}

	assert.Equal(t, 0.0, feats.RMSAt(-5))
	assert.Equal(t, 0.0, feats.RMSAt(0))
	assert.InDelta(t, 1.0, feats.RMSAt(0.5), 1e-9)
	assert.InDelta(t, 0.5, feats.RMSAt(0.25), 1e-9)
	assert.Equal(t, 0.0, feats.RMSAt(1))
	assert.Equal(t, 0.0, feats.RMSAt(99))
}

func TestMeanRMSFromAssembledFeatures(t *testing.T) {
	// Features built field-by-field (no Analyze call) must still report the
	// true mean, not an unset cache.
	feats := Features{RMS: []float64{0.05, 0.05, 0.95, 0.05}}
	assert.InDelta(t, 0.275, feats.MeanRMS(), 1e-9)
	assert.Zero(t, Features{}.MeanRMS())
}

func TestHasOnsetWithin(t *testing.T) {
	feats := Features{OnsetTimes: []float64{1.0, 2.5}}

	assert.True(t, feats.HasOnsetWithin(1.05, 0.08))
	assert.False(t, feats.HasOnsetWithin(1.2, 0.08))
	assert.True(t, feats.HasOnsetWithin(2.45, 0.08))
	assert.False(t, Features{}.HasOnsetWithin(1.0, 0.08))
}

func TestWindowCount(t *testing.T) {
	assert.Equal(t, 0, windowCount(0))
	assert.Equal(t, 1, windowCount(1))
	assert.Equal(t, 1, windowCount(HopSize))
	assert.Equal(t, 2, windowCount(HopSize+1))
}

type sliceStreamer struct {
	samples []float64
	pos     int
}

func (s *sliceStreamer) Stream(out [][2]float64) (int, bool) {
	if s.pos >= len(s.samples) {
		return 0, false
	}
	n := 0
	for ; n < len(out) && s.pos < len(s.samples); n++ {
		v := s.samples[s.pos]
		out[n] = [2]float64{v, v}
		s.pos++
	}
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

func TestAnalyzeWavFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: beep.SampleRate(16000), NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, &sliceStreamer{samples: sine(440, 16000, 16000, 0.5)}, format))
	require.NoError(t, f.Close())

	feats, err := Analyze(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, feats.Duration, 0.05)
	assert.Equal(t, 16000, feats.SampleRate)
	assert.NotEmpty(t, feats.RMS)
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := Analyze(filepath.Join(t.TempDir(), "nope.wav"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAudioRead)
}
