package subtitles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:04,500
Welcome back to the show.

2
00:00:05,000 --> 00:00:09,250
Today we talk about
something special.

3
00:01:30,000 --> 00:01:35,000
The big reveal.
`

func TestParseSRT(t *testing.T) {
	captions := ParseSRT(sampleSRT)
	require.Len(t, captions, 3)

	assert.Equal(t, "00:00:01,000", captions[0].StartTime)
	assert.Equal(t, "00:00:04,500", captions[0].EndTime)
	assert.Equal(t, "Welcome back to the show.", captions[0].Text)
	assert.Equal(t, "Today we talk about\nsomething special.", captions[1].Text)
}

func TestParseSRTEmpty(t *testing.T) {
	assert.Nil(t, ParseSRT(""))
	assert.Nil(t, ParseSRT("   \n  "))
}

func TestCaptionSeconds(t *testing.T) {
	c := Caption{StartTime: "00:01:30,500", EndTime: "01:00:00,000"}
	assert.InDelta(t, 90.5, c.StartSeconds(), 1e-9)
	assert.InDelta(t, 3600.0, c.EndSeconds(), 1e-9)

	malformed := Caption{StartTime: "bogus"}
	assert.Zero(t, malformed.StartSeconds())
}

func TestWindow(t *testing.T) {
	captions := ParseSRT(sampleSRT)

	got := Window(captions, 0, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "Welcome back to the show.", got[0].Text)

	got = Window(captions, 80, 100)
	require.Len(t, got, 1)
	assert.Equal(t, "The big reveal.", got[0].Text)

	assert.Empty(t, Window(captions, 200, 300))
}

func TestTimestampedText(t *testing.T) {
	captions := ParseSRT(sampleSRT)
	got := TimestampedText(captions)
	assert.Equal(t, "[1s] Welcome back to the show.\n[5s] Today we talk about something special.\n[90s] The big reveal.", got)
}

func TestPlainText(t *testing.T) {
	captions := ParseSRT(sampleSRT)
	assert.Equal(t, "Welcome back to the show. Today we talk about something special. The big reveal.", PlainText(captions))
}

func TestSerializeRoundTrip(t *testing.T) {
	captions := ParseSRT(sampleSRT)
	again := ParseSRT(SerializeSRT(captions))
	assert.Equal(t, captions, again)
}
