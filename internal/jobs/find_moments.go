package jobs

import (
	"context"
	"errors"
	"os"

	"clipforge/pipeline-go/internal/llm"
	"clipforge/pipeline-go/internal/subtitles"
	"clipforge/pipeline-go/internal/utils"
)

// FindMomentsJob asks the model for clip-worthy spans of the transcript.
type FindMomentsJob struct {
	BaseJob
	MaxMoments int
}

func NewFindMomentsJob() FindMomentsJob {
	return FindMomentsJob{
		BaseJob: BaseJob{
			QueueInput:      "transcript_generated",
			QueueOutput:     "moments_found",
			IgnoreHostCheck: true,
		},
		MaxMoments: 3,
	}
}

func (j FindMomentsJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
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

func (j FindMomentsJob) processClip(ctx context.Context, jctx JobContext, clipID int64, regenerate bool) error {
	utils.Logf("FindMoments: process clip_id=%d", clipID)
	clip, err := jctx.Store.GetClipByID(ctx, clipID)
	if err != nil {
		return err
	}
	meta, err := utils.DecodeMeta(clip.Meta)
	if err != nil {
		return err
	}
	if done, _ := utils.GetStatus(meta, j.QueueOutput); done && !regenerate {
		utils.Info("moments already found", "clip_id", clipID)
		return j.publishNext(ctx, jctx, clipID)
	}

	srtPath, ok := utils.GetString(meta, "transcript", "srt_path")
	if !ok {
		return errors.New("no transcript in clip meta; run the transcribe stage first")
	}
	srt, err := os.ReadFile(srtPath)
	if err != nil {
		return err
	}
	captions := subtitles.ParseSRT(string(srt))
	if len(captions) == 0 {
		return errors.New("transcript file has no captions")
	}

	gemini, err := llm.NewGemini(ctx, jctx.Config.GeminiAPIKey, jctx.Config.GeminiModel)
	if err != nil {
		return err
	}
	defer gemini.Close()

	moments, err := gemini.FindKeyMoments(ctx, subtitles.TimestampedText(captions), j.MaxMoments)
	if err != nil {
		return err
	}
	if len(moments) == 0 {
		return errors.New("model found no clip-worthy moments")
	}
	utils.Info("moments found", "clip_id", clipID, "count", len(moments))

	encoded := make([]map[string]any, 0, len(moments))
	for _, m := range moments {
		encoded = append(encoded, map[string]any{
			"start":  m.Start,
			"end":    m.End,
			"reason": m.Reason,
		})
	}
	meta["moments"] = encoded
	utils.SetStatus(meta, j.QueueOutput, true)
	if err := jctx.Store.UpdateClipMetaStatus(ctx, clipID, j.QueueOutput, meta); err != nil {
		return err
	}
	return j.publishNext(ctx, jctx, clipID)
}
