package lipsync

import (
	"context"
	"fmt"

	"clipforge/pipeline-go/internal/utils"
	"clipforge/pipeline-go/internal/video"
)

// PlainMux is the last resort: loop the face footage over the audio with no
// mouth animation at all. A static clip still ships; a missing clip does not.
type PlainMux struct{}

func (p *PlainMux) Name() string { return "plain-mux" }

func (p *PlainMux) Attempt(ctx context.Context, req Request) (string, error) {
	cmd := fmt.Sprintf(
		"ffmpeg -y -stream_loop -1 -i %s -i %s -map 0:v:0 -map 1:a:0 -c:v libx264 -preset medium -crf 23 -pix_fmt yuv420p -c:a aac -ar 44100 -ac 2 -b:a 192k -shortest -movflags +faststart %s",
		utils.ShellEscape(req.FacePath),
		utils.ShellEscape(req.AudioPath),
		utils.ShellEscape(req.OutputPath),
	)
	if _, err := utils.RunCommandContext(ctx, cmd); err != nil {
		return "", fmt.Errorf("%w: %v", video.ErrMux, err)
	}
	return req.OutputPath, nil
}
