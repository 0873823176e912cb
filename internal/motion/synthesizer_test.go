package motion

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 13) % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return img
}

func TestApplyDeterministic(t *testing.T) {
	synth := NewSynthesizer(DefaultParams())
	src := testFrame(64, 64)
	st := State{Timestamp: 1.25, Speaking: true, Intensity: 0.7}

	a := synth.Apply(src, st)
	b := synth.Apply(src, st)
	assert.Equal(t, a.Pix, b.Pix, "identical inputs must render byte-identical frames")

	idleA := synth.Apply(src, State{Timestamp: 0.5})
	idleB := synth.Apply(src, State{Timestamp: 0.5})
	assert.Equal(t, idleA.Pix, idleB.Pix)
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	synth := NewSynthesizer(DefaultParams())
	src := testFrame(48, 48)
	before := make([]uint8, len(src.Pix))
	copy(before, src.Pix)

	synth.Apply(src, State{Timestamp: 0.3, Speaking: true, Intensity: 0.9})
	synth.Apply(src, State{Timestamp: 0.3})

	assert.Equal(t, before, src.Pix, "source frame must stay untouched")
}

func TestSpeakingDiffersFromIdle(t *testing.T) {
	synth := NewSynthesizer(DefaultParams())
	src := testFrame(64, 64)

	speaking := synth.Apply(src, State{Timestamp: 1.0, Speaking: true, Intensity: 0.8})
	idle := synth.Apply(src, State{Timestamp: 1.0})

	assert.NotEqual(t, speaking.Pix, idle.Pix)
}

func TestLowIntensitySpeakingHoldsFrame(t *testing.T) {
	p := DefaultParams()
	synth := NewSynthesizer(p)
	src := testFrame(32, 32)

	// Speech below the activation threshold leaves the frame untouched,
	// rather than falling through to the idle bob and blink.
	below := synth.Apply(src, State{Timestamp: 0.7, Speaking: true, Intensity: p.Activation / 2})
	assert.Equal(t, src.Pix, below.Pix)

	// An idle frame at the same timestamp bobs, so it must differ.
	idle := synth.Apply(src, State{Timestamp: 0.7})
	assert.NotEqual(t, idle.Pix, below.Pix)
}

func TestApplyPreservesBounds(t *testing.T) {
	synth := NewSynthesizer(DefaultParams())
	for _, size := range [][2]int{{16, 16}, {64, 48}, {33, 77}} {
		src := testFrame(size[0], size[1])
		out := synth.Apply(src, State{Timestamp: 2.0, Speaking: true, Intensity: 1.0})
		require.Equal(t, src.Bounds(), out.Bounds())
	}
}

func TestApplyTinyFrameDoesNotPanic(t *testing.T) {
	synth := NewSynthesizer(DefaultParams())
	src := testFrame(2, 2)

	assert.NotPanics(t, func() {
		synth.Apply(src, State{Timestamp: 0.1, Speaking: true, Intensity: 1.0})
		synth.Apply(src, State{Timestamp: 0.1})
	})
}

func TestBlinkChangesEyeBand(t *testing.T) {
	p := DefaultParams()
	synth := NewSynthesizer(p)
	src := testFrame(64, 64)

	// t=0.05 is inside the blink window and the bob offset rounds to zero,
	// so any difference from the source comes from the blink blur alone.
	require.Less(t, 0.05, p.BlinkDuration)
	blink := synth.Apply(src, State{Timestamp: 0.05})

	// The eye band of a blinking frame is blurred relative to the source row.
	eyeFrac := 0.35
	eyeY := int(64 * eyeFrac)
	same := true
	for x := 0; x < 64 && same; x++ {
		r0, g0, b0, _ := src.At(x, eyeY).RGBA()
		r1, g1, b1, _ := blink.At(x, eyeY).RGBA()
		if r0 != r1 || g0 != g1 || b0 != b1 {
			same = false
		}
	}
	assert.False(t, same, "blink should alter the eye band")
}
