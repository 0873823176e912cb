package motion

// RGB<->HSV conversion in 8-bit ranges (H in [0,179], S and V in [0,255]),
// matching the conventions of common image toolkits so the inherited tuning
// constants keep their meaning.

func rgbToHSV(r, g, b uint8) (h, s, v uint8) {
	maxCh := r
	if g > maxCh {
		maxCh = g
	}
	if b > maxCh {
		maxCh = b
	}
	minCh := r
	if g < minCh {
		minCh = g
	}
	if b < minCh {
		minCh = b
	}

	v = maxCh
	delta := int(maxCh) - int(minCh)
	if maxCh == 0 || delta == 0 {
		return 0, 0, v
	}
	s = uint8((255*delta + int(maxCh)/2) / int(maxCh))

	var hue int
	switch maxCh {
	case r:
		hue = (60 * (int(g) - int(b))) / delta
	case g:
		hue = 120 + (60*(int(b)-int(r)))/delta
	default:
		hue = 240 + (60*(int(r)-int(g)))/delta
	}
	if hue < 0 {
		hue += 360
	}
	h = uint8(hue / 2)
	return h, s, v
}

func hsvToRGB(h, s, v uint8) (r, g, b uint8) {
	if s == 0 {
		return v, v, v
	}
	hue := float64(h) * 2 // back to degrees
	sector := int(hue/60) % 6
	f := hue/60 - float64(int(hue/60))

	vf := float64(v)
	sf := float64(s) / 255

	p := vf * (1 - sf)
	q := vf * (1 - sf*f)
	t := vf * (1 - sf*(1-f))

	var rf, gf, bf float64
	switch sector {
	case 0:
		rf, gf, bf = vf, t, p
	case 1:
		rf, gf, bf = q, vf, p
	case 2:
		rf, gf, bf = p, vf, t
	case 3:
		rf, gf, bf = p, q, vf
	case 4:
		rf, gf, bf = t, p, vf
	default:
		rf, gf, bf = vf, p, q
	}
	return clampByte(rf), clampByte(gf), clampByte(bf)
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
