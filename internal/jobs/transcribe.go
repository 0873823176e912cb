package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"clipforge/pipeline-go/internal/subtitles"
	"clipforge/pipeline-go/internal/transcribe"
	"clipforge/pipeline-go/internal/utils"
)

// TranscribeJob produces a timestamped transcript of the downloaded audio.
type TranscribeJob struct {
	BaseJob
}

func NewTranscribeJob() TranscribeJob {
	return TranscribeJob{
		BaseJob: BaseJob{
			QueueInput:      "audio_downloaded",
			QueueOutput:     "transcript_generated",
			IgnoreHostCheck: true,
		},
	}
}

func (j TranscribeJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
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

func (j TranscribeJob) processClip(ctx context.Context, jctx JobContext, clipID int64, regenerate bool) error {
	utils.Logf("Transcribe: process clip_id=%d", clipID)
	clip, err := jctx.Store.GetClipByID(ctx, clipID)
	if err != nil {
		return err
	}
	meta, err := utils.DecodeMeta(clip.Meta)
	if err != nil {
		return err
	}
	if done, _ := utils.GetStatus(meta, j.QueueOutput); done && !regenerate {
		utils.Info("transcript already generated", "clip_id", clipID)
		return j.publishNext(ctx, jctx, clipID)
	}

	audioPath, ok := utils.GetString(meta, "source", "audio_path")
	if !ok || audioPath == "" {
		return errors.New("no audio path in clip meta; run the download stage first")
	}

	whisper, err := transcribe.NewWhisper(jctx.Config.OpenAIAPIKey, jctx.Config.WhisperModel)
	if err != nil {
		return err
	}
	srt, err := whisper.TranscribeSRT(ctx, audioPath)
	if err != nil {
		return err
	}
	captions := subtitles.ParseSRT(srt)
	if len(captions) == 0 {
		return errors.New("transcription returned no captions")
	}

	workdir, err := clipWorkdir(jctx, clipID)
	if err != nil {
		return err
	}
	srtPath := filepath.Join(workdir, "transcript.srt")
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		return err
	}

	meta["transcript"] = map[string]any{
		"srt_path": srtPath,
		"captions": len(captions),
	}
	utils.SetStatus(meta, j.QueueOutput, true)
	if err := jctx.Store.UpdateClipMetaStatus(ctx, clipID, j.QueueOutput, meta); err != nil {
		return err
	}
	return j.publishNext(ctx, jctx, clipID)
}
