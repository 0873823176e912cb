package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBToHSVPrimaries(t *testing.T) {
	cases := []struct {
		name    string
		r, g, b uint8
		h       uint8
	}{
		{"red", 255, 0, 0, 0},
		{"green", 0, 255, 0, 60},
		{"blue", 0, 0, 255, 120},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, s, v := rgbToHSV(tc.r, tc.g, tc.b)
			assert.Equal(t, tc.h, h)
			assert.Equal(t, uint8(255), s)
			assert.Equal(t, uint8(255), v)
		})
	}
}

func TestRGBToHSVGreyHasNoSaturation(t *testing.T) {
	h, s, v := rgbToHSV(128, 128, 128)
	assert.Equal(t, uint8(0), h)
	assert.Equal(t, uint8(0), s)
	assert.Equal(t, uint8(128), v)
}

func TestHSVRoundTripTolerance(t *testing.T) {
	colors := [][3]uint8{
		{200, 30, 60},
		{10, 240, 100},
		{90, 90, 200},
		{255, 255, 255},
		{17, 0, 255},
	}
	for _, c := range colors {
		h, s, v := rgbToHSV(c[0], c[1], c[2])
		r, g, b := hsvToRGB(h, s, v)
		// Hue is quantized to half-degrees, so allow a small error.
		assert.InDelta(t, float64(c[0]), float64(r), 6)
		assert.InDelta(t, float64(c[1]), float64(g), 6)
		assert.InDelta(t, float64(c[2]), float64(b), 6)
	}
}

func TestClampByte(t *testing.T) {
	assert.Equal(t, uint8(0), clampByte(-5))
	assert.Equal(t, uint8(255), clampByte(300))
	assert.Equal(t, uint8(128), clampByte(127.6))
}
