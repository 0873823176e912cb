package motion

import (
	"clipforge/pipeline-go/internal/audiofx"
)

// State is the per-output-frame motion decision. It is derived, never stored.
type State struct {
	Timestamp float64
	Speaking  bool
	Intensity float64 // always within [0,1]
}

// StateAt computes the motion state for timestamp t from the audio features.
// The computation is deterministic: identical features and timestamp always
// yield the identical state.
func StateAt(f audiofx.Features, t float64, p Params) State {
	rms := f.RMSAt(t)
	speaking := f.HasOnsetWithin(t, p.OnsetTolerance) || rms > p.SpeakingRMSRatio*f.MeanRMS()

	intensity := rms * p.Gain
	if intensity > 1 {
		intensity = 1
	}
	if intensity < 0 {
		intensity = 0
	}

	return State{
		Timestamp: t,
		Speaking:  speaking,
		Intensity: intensity,
	}
}
