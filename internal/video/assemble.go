package video

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"clipforge/pipeline-go/internal/audiofx"
	"clipforge/pipeline-go/internal/motion"
	"clipforge/pipeline-go/internal/utils"
)

// ErrMux means the final audio/video merge failed. The partial output file is
// removed before returning, so callers never see a half-written artifact.
var ErrMux = errors.New("audio/video mux failed")

// Request describes one assembly run.
type Request struct {
	FacePath   string // face video or still image to animate
	AudioPath  string // driving audio track
	OutputPath string // final mp4
	Workdir    string // scratch space for intermediate frames
	FPS        float64 // 0 means probe the face source, falling back to DefaultFPS
}

// Assembler renders a talking-head clip from a face source and an audio
// track. One output frame per timestamp: total frames is the audio duration
// times the frame rate, rounded up so the last partial frame interval is
// still covered.
type Assembler struct {
	Params motion.Params
}

func NewAssembler(p motion.Params) *Assembler {
	return &Assembler{Params: p}
}

// Assemble runs the full pipeline: analyze audio, decode the face source,
// synthesize per-frame motion, encode, then mux the audio back in. It returns
// the output path on success.
func (a *Assembler) Assemble(ctx context.Context, req Request) (string, error) {
	feats, err := audiofx.Analyze(req.AudioPath)
	if err != nil {
		return "", err
	}

	fps := req.FPS
	if fps <= 0 {
		if info, err := Probe(req.FacePath); err == nil {
			fps = info.FPS
		} else {
			fps = DefaultFPS
		}
	}

	frames, err := DecodeFrames(ctx, req.FacePath, req.Workdir)
	if err != nil {
		return "", err
	}

	renderDir := filepath.Join(req.Workdir, "render")
	if err := utils.EnsureDir(renderDir); err != nil {
		return "", err
	}

	total := frameCount(feats.Duration, fps)
	utils.Info("synthesizing frames", "total", total, "fps", fps, "duration", feats.Duration)

	synth := motion.NewSynthesizer(a.Params)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		t := float64(i) / fps
		st := motion.StateAt(feats, t, a.Params)
		frame := synth.Apply(frames.At(i), st)
		name := filepath.Join(renderDir, fmt.Sprintf("out_%06d.png", i))
		if err := savePNG(name, frame); err != nil {
			return "", fmt.Errorf("writing frame %d: %w", i, err)
		}
	}

	silent := filepath.Join(req.Workdir, "silent.mp4")
	encode := fmt.Sprintf(
		"ffmpeg -y -framerate %g -i %s -c:v libx264 -preset medium -crf 23 -pix_fmt yuv420p %s",
		fps,
		utils.ShellEscape(filepath.Join(renderDir, "out_%06d.png")),
		utils.ShellEscape(silent),
	)
	if _, err := utils.RunCommandContext(ctx, encode); err != nil {
		return "", fmt.Errorf("encoding frames: %w", err)
	}

	if err := Mux(ctx, silent, req.AudioPath, req.OutputPath); err != nil {
		return "", err
	}
	utils.Info("assembled clip", "output", req.OutputPath, "frames", total)
	return req.OutputPath, nil
}

// frameCount rounds up so the final partial frame interval is still covered.
func frameCount(duration, fps float64) int {
	total := int(math.Ceil(duration * fps))
	if total < 1 {
		total = 1
	}
	return total
}

// Mux merges a video stream and an audio track into a web-ready mp4. The
// output is trimmed to the shorter input and the moov atom is moved up front
// for streaming playback.
func Mux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return err
	}
	cmd := fmt.Sprintf(
		"ffmpeg -y -i %s -i %s -map 0:v:0 -map 1:a:0 -c:v libx264 -preset medium -crf 23 -pix_fmt yuv420p -c:a aac -ar 44100 -ac 2 -b:a 192k -shortest -movflags +faststart %s",
		utils.ShellEscape(videoPath),
		utils.ShellEscape(audioPath),
		utils.ShellEscape(outputPath),
	)
	if _, err := utils.RunCommandContext(ctx, cmd); err != nil {
		_ = os.Remove(outputPath)
		return fmt.Errorf("%w: %v", ErrMux, err)
	}
	return nil
}
