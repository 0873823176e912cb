package motion

// Params collects the empirical knobs of the lip-motion heuristic. The
// defaults are inherited tuning values; they have no derivation and should be
// changed from config rather than edited here.
type Params struct {
	// Gain multiplies normalized RMS into motion intensity before clamping.
	Gain float64

	// OnsetTolerance is the window (seconds) around a timestamp within which
	// an onset counts as speech.
	OnsetTolerance float64

	// SpeakingRMSRatio marks a timestamp as speaking when its interpolated
	// RMS exceeds this fraction of the clip mean.
	SpeakingRMSRatio float64

	// Activation is the minimum intensity for any mouth transform.
	Activation float64
	// ColorBoost is the intensity above which the oral-cavity color shift
	// applies.
	ColorBoost float64
	// JawDrop is the intensity above which the jaw-band shift applies.
	JawDrop float64

	// Idle animation.
	BobAmplitude  float64 // pixels
	BlinkPeriod   float64 // seconds
	BlinkDuration float64 // seconds
}

func DefaultParams() Params {
	return Params{
		Gain:             5.0,
		OnsetTolerance:   0.08,
		SpeakingRMSRatio: 0.4,
		Activation:       0.02,
		ColorBoost:       0.05,
		JawDrop:          0.1,
		BobAmplitude:     2,
		BlinkPeriod:      2.5,
		BlinkDuration:    0.12,
	}
}

// Fixed geometry of the heuristic regions, as fractions of the frame. These
// stand in for real face tracking and are deliberately not configurable.
const (
	mouthTop    = 0.55
	mouthBottom = 0.75
	mouthLeft   = 0.25
	mouthRight  = 0.75

	jawTop    = 0.70
	jawBottom = 0.90
	jawLeft   = 0.20
	jawRight  = 0.80

	eyeTop    = 0.35
	eyeHeight = 0.08

	openingScale    = 30  // intensity → ellipse radius in pixels
	stretchScale    = 0.5 // vertical stretch inside the ellipse
	compressScale   = 0.2 // horizontal compression over the mouth region
	blendScale      = 0.6 // speaking blend alpha per unit intensity
	saturationScale = 0.3
	hueShiftScale   = 5
	valueScale      = 0.1
	jawShiftScale   = 3
	jawBlendScale   = 0.3
	bobRate         = 2.0 // radians per second
)
