package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"clipforge/pipeline-go/internal/tts"
	"clipforge/pipeline-go/internal/utils"
)

// GenerateVoiceoverJob renders the script's spoken audio.
type GenerateVoiceoverJob struct {
	BaseJob
}

func NewGenerateVoiceoverJob() GenerateVoiceoverJob {
	return GenerateVoiceoverJob{
		BaseJob: BaseJob{
			QueueInput:      "script_generated",
			QueueOutput:     "voiceover_generated",
			IgnoreHostCheck: true,
		},
	}
}

func (j GenerateVoiceoverJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
	if opts.Queue {
		return j.RunQueue(ctx, jctx, opts, func(ctx context.Context, clipID int64, hostname string) error {
			return j.processClip(ctx, jctx, clipID, opts.Regenerate)
		})
	}
	if opts.ClipID == 0 {
		return errors.New("a clip id is required")
	}
	return j.processClip(ctx, jctx, opts.ClipID, opts.Regenerate)
}

func (j GenerateVoiceoverJob) processClip(ctx context.Context, jctx JobContext, clipID int64, regenerate bool) error {
	utils.Logf("GenerateVoiceover: process clip_id=%d", clipID)
	clip, err := jctx.Store.GetClipByID(ctx, clipID)
	if err != nil {
		return err
	}
	meta, err := utils.DecodeMeta(clip.Meta)
	if err != nil {
		return err
	}
	if done, _ := utils.GetStatus(meta, j.QueueOutput); done && !regenerate {
		utils.Info("voiceover already generated", "clip_id", clipID)
		return j.publishNext(ctx, jctx, clipID)
	}

	text, ok := utils.GetString(meta, "script", "text")
	if !ok || text == "" {
		return errors.New("no script text in clip meta; run the script stage first")
	}

	workdir, err := clipWorkdir(jctx, clipID)
	if err != nil {
		return err
	}
	outputPath := filepath.Join(workdir, fmt.Sprintf("voiceover-%s.mp3", utils.SHA256Bytes([]byte(text))[:12]))

	chain := tts.NewChain(
		&tts.ElevenLabs{
			APIKey:  jctx.Config.ElevenLabsAPIKey,
			VoiceID: jctx.Config.ElevenLabsVoiceID,
			ModelID: jctx.Config.ElevenLabsModelID,
		},
		&tts.Command{Command: jctx.Config.TTSCommand},
	)
	if err := chain.Synthesize(ctx, text, outputPath); err != nil {
		return err
	}

	meta["voiceover"] = map[string]any{
		"audio_path": outputPath,
		"hostname":   jctx.Config.Hostname,
	}
	utils.SetStatus(meta, j.QueueOutput, true)
	if err := jctx.Store.UpdateClipMetaStatus(ctx, clipID, j.QueueOutput, meta); err != nil {
		return err
	}
	return j.publishNext(ctx, jctx, clipID)
}
