package lipsync

import (
	"context"
	"fmt"

	"clipforge/pipeline-go/internal/utils"
)

// Wav2Lip shells out to an externally installed neural lip-sync tool. It is
// optional: when no command or checkpoint is configured the strategy declines
// immediately and the chain moves on.
type Wav2Lip struct {
	Command    string // e.g. "python /opt/wav2lip/inference.py"
	Checkpoint string // model weights path
}

func (w *Wav2Lip) Name() string { return "wav2lip" }

func (w *Wav2Lip) Attempt(ctx context.Context, req Request) (string, error) {
	if w.Command == "" {
		return "", fmt.Errorf("no external lip-sync command configured")
	}
	if w.Checkpoint != "" && !utils.FileExists(w.Checkpoint) {
		return "", fmt.Errorf("checkpoint not found: %s", w.Checkpoint)
	}

	cmd := fmt.Sprintf("%s --checkpoint_path %s --face %s --audio %s --outfile %s",
		w.Command,
		utils.ShellEscape(w.Checkpoint),
		utils.ShellEscape(req.FacePath),
		utils.ShellEscape(req.AudioPath),
		utils.ShellEscape(req.OutputPath),
	)
	if _, err := utils.RunCommandContext(ctx, cmd); err != nil {
		return "", err
	}
	if !utils.FileExists(req.OutputPath) {
		return "", fmt.Errorf("command reported success but wrote no output")
	}
	return req.OutputPath, nil
}
