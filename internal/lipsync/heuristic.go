package lipsync

import (
	"context"

	"clipforge/pipeline-go/internal/motion"
	"clipforge/pipeline-go/internal/video"
)

// Heuristic runs the built-in audio-driven synthesizer. It needs only ffmpeg
// and the face footage, so it serves as the default when no neural tool is
// installed.
type Heuristic struct {
	Params motion.Params
	FPS    float64
}

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) Attempt(ctx context.Context, req Request) (string, error) {
	params := h.Params
	if params == (motion.Params{}) {
		params = motion.DefaultParams()
	}
	asm := video.NewAssembler(params)
	return asm.Assemble(ctx, video.Request{
		FacePath:   req.FacePath,
		AudioPath:  req.AudioPath,
		OutputPath: req.OutputPath,
		Workdir:    req.Workdir,
		FPS:        h.FPS,
	})
}
