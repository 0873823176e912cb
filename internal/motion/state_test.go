package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clipforge/pipeline-go/internal/audiofx"
)

func TestStateAtOnsetWindow(t *testing.T) {
	feats := audiofx.Features{
		Duration:   2.0,
		RMS:        []float64{0, 0, 0, 0},
		OnsetTimes: []float64{1.0},
	}
	p := DefaultParams()

	assert.True(t, StateAt(feats, 1.05, p).Speaking, "inside onset tolerance")
	assert.False(t, StateAt(feats, 1.2, p).Speaking, "outside onset tolerance")
}

func TestStateAtRMSRatio(t *testing.T) {
	// Mean is 0.25, so the speaking cutoff is 0.4*0.25 = 0.1.
	feats := audiofx.Features{
		Duration: 1.0,
		RMS:      []float64{0.0, 0.05, 0.95, 0.0},
	}
	p := DefaultParams()

	loud := StateAt(feats, 2.0/3.0, p)
	assert.True(t, loud.Speaking, "rms 0.95 is well above the cutoff")

	murmur := StateAt(feats, 1.0/3.0, p)
	assert.False(t, murmur.Speaking, "rms 0.05 is audible but below the cutoff")

	quiet := StateAt(feats, 0, p)
	assert.False(t, quiet.Speaking)
}

func TestStateAtIntensityClamped(t *testing.T) {
	feats := audiofx.Features{
		Duration: 1.0,
		RMS:      []float64{1, 1},
	}
	p := DefaultParams()

	st := StateAt(feats, 0.5, p)
	assert.Equal(t, 1.0, st.Intensity, "gain of 5 over rms 1 must clamp to 1")

	silent := StateAt(audiofx.Features{Duration: 1, RMS: []float64{0, 0}}, 0.5, p)
	assert.Equal(t, 0.0, silent.Intensity)
}

func TestStateAtSilenceNotSpeaking(t *testing.T) {
	feats := audiofx.Features{
		Duration: 1.0,
		RMS:      []float64{0, 0, 0},
	}
	st := StateAt(feats, 0.5, DefaultParams())
	assert.False(t, st.Speaking)
	assert.Zero(t, st.Intensity)
}
