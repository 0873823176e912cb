package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	"clipforge/pipeline-go/internal/utils"
)

// ErrFrameDecode means the face source yielded no usable frames. Without at
// least one frame there is nothing to animate, so callers treat it as fatal.
var ErrFrameDecode = errors.New("no decodable frames in face source")

// SourceFrames is the decoded face footage. Reads past the end wrap around,
// so a short face loop can cover audio of any length.
type SourceFrames struct {
	frames []*image.RGBA
}

func (s *SourceFrames) Len() int { return len(s.frames) }

// At returns frame i modulo the source length.
func (s *SourceFrames) At(i int) *image.RGBA {
	return s.frames[i%len(s.frames)]
}

// Bounds reports the dimensions shared by all frames.
func (s *SourceFrames) Bounds() image.Rectangle {
	return s.frames[0].Bounds()
}

// DecodeFrames extracts every frame of the face video into workdir as PNG and
// loads them into memory. A still image source works too: ffmpeg produces a
// single frame and the cyclic reader repeats it.
func DecodeFrames(ctx context.Context, path, workdir string) (*SourceFrames, error) {
	framesDir := filepath.Join(workdir, "source_frames")
	if err := utils.EnsureDir(framesDir); err != nil {
		return nil, err
	}

	cmd := fmt.Sprintf(
		"ffmpeg -y -i %s %s",
		utils.ShellEscape(path),
		utils.ShellEscape(filepath.Join(framesDir, "frame_%06d.png")),
	)
	if _, err := utils.RunCommandContext(ctx, cmd); err != nil {
		return nil, fmt.Errorf("%w: extracting %s: %v", ErrFrameDecode, path, err)
	}

	names, err := filepath.Glob(filepath.Join(framesDir, "frame_*.png"))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	frames := make([]*image.RGBA, 0, len(names))
	for _, name := range names {
		frame, err := loadPNG(name)
		if err != nil {
			utils.Warn("skipping undecodable frame", "file", name, "error", err)
			continue
		}
		frames = append(frames, frame)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrFrameDecode, path)
	}

	utils.Info("decoded face source", "path", path, "frames", len(frames))
	return &SourceFrames{frames: frames}, nil
}

func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

func savePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
