package video

import (
	"context"
	"image"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/pipeline-go/internal/motion"
)

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"24/1", 24},
		{"30000/1001", 30000.0 / 1001.0},
		{"25", 25},
		{"0/0", DefaultFPS},
		{"", DefaultFPS},
		{"garbage", DefaultFPS},
		{"-30/1", DefaultFPS},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, parseFrameRate(tc.raw), 1e-9, "raw=%q", tc.raw)
	}
}

func TestFrameCountRoundsUp(t *testing.T) {
	assert.Equal(t, 24, frameCount(1.0, 24))
	assert.Equal(t, 25, frameCount(1.01, 24))
	assert.Equal(t, 1, frameCount(0.001, 24))
	assert.Equal(t, 1, frameCount(0, 24), "zero duration still yields one frame")
	assert.Equal(t, 36, frameCount(1.5, 24))
}

func TestSourceFramesCyclicReuse(t *testing.T) {
	frames := make([]*image.RGBA, 3)
	for i := range frames {
		frames[i] = image.NewRGBA(image.Rect(0, 0, 4, 4))
		frames[i].Pix[0] = uint8(i)
	}
	src := &SourceFrames{frames: frames}

	assert.Equal(t, 3, src.Len())
	assert.Same(t, frames[0], src.At(0))
	assert.Same(t, frames[2], src.At(2))
	assert.Same(t, frames[0], src.At(3), "reads past the end wrap around")
	assert.Same(t, frames[1], src.At(7))
	assert.Equal(t, image.Rect(0, 0, 4, 4), src.Bounds())
}

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
}

func TestMuxMissingInputs(t *testing.T) {
	requireFFmpeg(t)

	out := filepath.Join(t.TempDir(), "out.mp4")
	err := Mux(context.Background(), "/nonexistent/video.mp4", "/nonexistent/audio.wav", out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMux)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "partial output must be removed")
}

func TestProbeMissingFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}
	_, err := Probe(filepath.Join(t.TempDir(), "missing.mp4"))
	assert.Error(t, err)
}

type monoStreamer struct {
	samples []float64
	pos     int
}

func (s *monoStreamer) Stream(out [][2]float64) (int, bool) {
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

func (s *monoStreamer) Err() error { return nil }

func writeWav(t *testing.T, path string, samples []float64, sampleRate int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, &monoStreamer{samples: samples}, format))
	require.NoError(t, f.Close())
}

func TestAssembleEndToEnd(t *testing.T) {
	requireFFmpeg(t)
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	dir := t.TempDir()

	// Face source: a solid saturated still. Every motion transform except the
	// mouth color boost is a no-op on a uniform frame, so only speaking frames
	// can differ from the source.
	face := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := 0; i < len(face.Pix); i += 4 {
		face.Pix[i], face.Pix[i+1], face.Pix[i+2], face.Pix[i+3] = 180, 60, 60, 255
	}
	facePath := filepath.Join(dir, "face.png")
	require.NoError(t, savePNG(facePath, face))

	// One second of silence with a loud burst from 0.5s to 0.75s.
	const sampleRate = 16000
	samples := make([]float64, sampleRate)
	for i := sampleRate / 2; i < sampleRate*3/4; i++ {
		samples[i] = 0.9 * math.Sin(2*math.Pi*440*float64(i)/sampleRate)
	}
	audioPath := filepath.Join(dir, "voice.wav")
	writeWav(t, audioPath, samples, sampleRate)

	out, err := NewAssembler(motion.DefaultParams()).Assemble(context.Background(), Request{
		FacePath:   facePath,
		AudioPath:  audioPath,
		OutputPath: filepath.Join(dir, "clip.mp4"),
		Workdir:    dir,
		FPS:        10,
	})
	require.NoError(t, err)
	require.FileExists(t, out)

	rendered, err := filepath.Glob(filepath.Join(dir, "render", "out_*.png"))
	require.NoError(t, err)
	assert.Len(t, rendered, frameCount(1.0, 10), "one frame per 100ms of audio")

	// t=0.6 sits mid-burst, t=0.9 is back in silence.
	speaking, err := loadPNG(filepath.Join(dir, "render", "out_000006.png"))
	require.NoError(t, err)
	idle, err := loadPNG(filepath.Join(dir, "render", "out_000009.png"))
	require.NoError(t, err)
	assert.Equal(t, face.Pix, idle.Pix, "idle animation is a no-op on a uniform frame")
	assert.NotEqual(t, face.Pix, speaking.Pix, "the burst must move the mouth region")

	info, err := Probe(out)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, info.Duration, 0.2, "muxed clip runs the length of the audio")
}
