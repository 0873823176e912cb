package motion

import (
	"image"
	"math"

	"clipforge/pipeline-go/internal/utils"
)

// Synthesizer turns one source frame plus a motion state into one output
// frame. It holds no mutable state: identical (frame, state) inputs produce
// byte-identical output, which the tests rely on.
type Synthesizer struct {
	Params Params
}

func NewSynthesizer(p Params) *Synthesizer {
	return &Synthesizer{Params: p}
}

// Apply renders the frame for the given state. A cosmetic transform must
// never abort an assembly run: any internal panic is recovered and the
// unmodified source frame is returned instead (fail-open).
func (s *Synthesizer) Apply(src *image.RGBA, st State) (out *image.RGBA) {
	defer func() {
		if r := recover(); r != nil {
			utils.Warn("frame synthesis fault; passing source frame through", "timestamp", st.Timestamp, "cause", r)
			out = cloneRGBA(src)
		}
	}()

	if st.Speaking {
		if st.Intensity > s.Params.Activation {
			return s.speakingFrame(src, st.Intensity)
		}
		// Speech too faint to animate holds the frame still; the idle
		// bob and blink only run between utterances.
		return cloneRGBA(src)
	}
	return s.idleFrame(src, st.Timestamp)
}

// speakingFrame warps the mouth region open proportionally to intensity:
// an elliptical vertical stretch, a horizontal compression pass, a partial
// blend back over the source, then optional color and jaw treatments at the
// higher intensity thresholds.
func (s *Synthesizer) speakingFrame(src *image.RGBA, intensity float64) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	y0, y1 := int(float64(h)*mouthTop), int(float64(h)*mouthBottom)
	x0, x1 := int(float64(w)*mouthLeft), int(float64(w)*mouthRight)
	cy := (y0 + y1) / 2
	cx := w / 2

	opening := int(intensity * openingScale)
	if opening < 1 {
		opening = 1
	}
	semiY := opening / 2
	if semiY < 1 {
		semiY = 1
	}

	// Pass 1: stretch pixels inside the ellipse away from the mouth center.
	stretched := cloneRGBA(src)
	stretch := 1 + intensity*stretchScale
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx, dy := x-cx, y-cy
			ex := float64(dx*dx) / float64(opening*opening)
			ey := float64(dy*dy) / float64(semiY*semiY)
			if ex+ey > 1 {
				continue
			}
			ny := cy + int(float64(dy)*stretch)
			if ny >= 0 && ny < h {
				r, g, b := pixAt(src, x, y)
				setPix(stretched, x, ny, r, g, b)
			}
		}
	}

	// Pass 2: compress the region horizontally toward the center line.
	compressed := cloneRGBA(stretched)
	compress := 1 - intensity*compressScale
	if compress < 0.1 {
		compress = 0.1
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			nx := cx + int(float64(x-cx)*compress)
			if nx >= 0 && nx < w {
				r, g, b := pixAt(stretched, x, y)
				setPix(compressed, nx, y, r, g, b)
			}
		}
	}

	// Partial blend keeps original texture to reduce artifacting.
	out := blendFrames(src, compressed, intensity*blendScale)

	if intensity > s.Params.ColorBoost {
		boostMouthColor(out, x0, x1, y0, y1, intensity)
	}
	if intensity > s.Params.JawDrop {
		s.dropJaw(out, w, h, intensity)
	}
	return out
}

// boostMouthColor simulates a visible oral cavity: more saturation, a slight
// redward hue shift, and a small brightness lift inside the mouth region.
func boostMouthColor(img *image.RGBA, x0, x1, y0, y1 int, intensity float64) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r, g, b := pixAt(img, x, y)
			hh, ss, vv := rgbToHSV(r, g, b)

			ss = clampByte(float64(ss) * (1 + intensity*saturationScale))
			hue := float64(hh) + intensity*hueShiftScale
			if hue > 179 {
				hue = 179
			}
			hh = uint8(hue)
			vv = clampByte(float64(vv) * (1 + intensity*valueScale))

			nr, ng, nb := hsvToRGB(hh, ss, vv)
			setPix(img, x, y, nr, ng, nb)
		}
	}
}

// dropJaw shifts the jaw band downward by a few pixels and blends the shifted
// copy back in, approximating a jaw drop.
func (s *Synthesizer) dropJaw(img *image.RGBA, w, h int, intensity float64) {
	shift := int(intensity * jawShiftScale)
	if shift <= 0 {
		return
	}
	y0, y1 := int(float64(h)*jawTop), int(float64(h)*jawBottom)
	x0, x1 := int(float64(w)*jawLeft), int(float64(w)*jawRight)
	if y1 <= y0 || x1 <= x0 {
		return
	}

	rows := y1 - y0
	shifted := image.NewRGBA(image.Rect(0, 0, x1-x0, rows))
	for ry := 0; ry < rows; ry++ {
		ny := ry + shift
		if ny > rows-1 {
			ny = rows - 1
		}
		for x := x0; x < x1; x++ {
			r, g, b := pixAt(img, x, y0+ry)
			setPix(shifted, x-x0, ny, r, g, b)
		}
	}

	alpha := intensity * jawBlendScale
	for ry := 0; ry < rows; ry++ {
		for x := x0; x < x1; x++ {
			or, og, ob := pixAt(img, x, y0+ry)
			sr, sg, sb := pixAt(shifted, x-x0, ry)
			setPix(img, x, y0+ry,
				mix(or, sr, alpha),
				mix(og, sg, alpha),
				mix(ob, sb, alpha),
			)
		}
	}
}

// idleFrame applies the not-speaking animation: a slow sinusoidal vertical
// bob, and a short blur band over the eyes on a fixed blink cycle.
func (s *Synthesizer) idleFrame(src *image.RGBA, t float64) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	bob := int(s.Params.BobAmplitude * math.Sin(t*bobRate))
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := reflectIndex(y-bob, h)
		for x := 0; x < w; x++ {
			r, g, bl := pixAt(src, x, sy)
			setPix(out, x, y, r, g, bl)
		}
	}

	if math.Mod(t, s.Params.BlinkPeriod) < s.Params.BlinkDuration {
		eyeY := int(float64(h) * eyeTop)
		lid := int(float64(h) * eyeHeight)
		blurBand(out, eyeY, eyeY+lid)
	}
	return out
}

// blurBand applies a 5-tap binomial blur, horizontally then vertically, to
// the rows in [y0, y1). The band is treated as its own image: vertical taps
// reflect at the band edges.
func blurBand(img *image.RGBA, y0, y1 int) {
	b := img.Bounds()
	w := b.Dx()
	if y1 > b.Dy() {
		y1 = b.Dy()
	}
	rows := y1 - y0
	if rows <= 0 || w == 0 {
		return
	}
	kernel := [5]float64{1, 4, 6, 4, 1}
	const kernelSum = 16.0

	horiz := make([][3]float64, rows*w)
	for ry := 0; ry < rows; ry++ {
		for x := 0; x < w; x++ {
			var acc [3]float64
			for k := -2; k <= 2; k++ {
				sx := reflect101(x+k, w)
				r, g, bl := pixAt(img, sx, y0+ry)
				wgt := kernel[k+2]
				acc[0] += float64(r) * wgt
				acc[1] += float64(g) * wgt
				acc[2] += float64(bl) * wgt
			}
			horiz[ry*w+x] = [3]float64{acc[0] / kernelSum, acc[1] / kernelSum, acc[2] / kernelSum}
		}
	}
	for ry := 0; ry < rows; ry++ {
		for x := 0; x < w; x++ {
			var acc [3]float64
			for k := -2; k <= 2; k++ {
				sy := reflect101(ry+k, rows)
				px := horiz[sy*w+x]
				wgt := kernel[k+2]
				acc[0] += px[0] * wgt
				acc[1] += px[1] * wgt
				acc[2] += px[2] * wgt
			}
			setPix(img, x, y0+ry,
				clampByte(acc[0]/kernelSum),
				clampByte(acc[1]/kernelSum),
				clampByte(acc[2]/kernelSum),
			)
		}
	}
}

func blendFrames(base, overlay *image.RGBA, alpha float64) *image.RGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			br, bg, bb := pixAt(base, x, y)
			or, og, ob := pixAt(overlay, x, y)
			setPix(out, x, y, mix(br, or, alpha), mix(bg, og, alpha), mix(bb, ob, alpha))
		}
	}
	return out
}

func mix(base, overlay uint8, alpha float64) uint8 {
	return clampByte(float64(base)*(1-alpha) + float64(overlay)*alpha)
}

// reflectIndex mirrors an index into [0, n), repeating the edge sample.
func reflectIndex(i, n int) int {
	if n <= 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}

// reflect101 mirrors an index into [0, n) without repeating the edge sample.
func reflect101(i, n int) int {
	if n <= 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func pixAt(img *image.RGBA, x, y int) (r, g, b uint8) {
	min := img.Bounds().Min
	off := img.PixOffset(min.X+x, min.Y+y)
	return img.Pix[off], img.Pix[off+1], img.Pix[off+2]
}

func setPix(img *image.RGBA, x, y int, r, g, b uint8) {
	min := img.Bounds().Min
	off := img.PixOffset(min.X+x, min.Y+y)
	img.Pix[off] = r
	img.Pix[off+1] = g
	img.Pix[off+2] = b
	img.Pix[off+3] = 0xff
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}
