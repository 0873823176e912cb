package jobs

import (
	"context"
	"errors"
	"os"

	"clipforge/pipeline-go/internal/llm"
	"clipforge/pipeline-go/internal/script"
	"clipforge/pipeline-go/internal/subtitles"
	"clipforge/pipeline-go/internal/utils"
)

// GenerateScriptJob writes the voiceover script for the first selected moment.
type GenerateScriptJob struct {
	BaseJob
}

func NewGenerateScriptJob() GenerateScriptJob {
	return GenerateScriptJob{
		BaseJob: BaseJob{
			QueueInput:      "moments_found",
			QueueOutput:     "script_generated",
			IgnoreHostCheck: true,
		},
	}
}

func (j GenerateScriptJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
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

func (j GenerateScriptJob) processClip(ctx context.Context, jctx JobContext, clipID int64, regenerate bool) error {
	utils.Logf("GenerateScript: process clip_id=%d", clipID)
	clip, err := jctx.Store.GetClipByID(ctx, clipID)
	if err != nil {
		return err
	}
	meta, err := utils.DecodeMeta(clip.Meta)
	if err != nil {
		return err
	}
	if done, _ := utils.GetStatus(meta, j.QueueOutput); done && !regenerate {
		utils.Info("script already generated", "clip_id", clipID)
		return j.publishNext(ctx, jctx, clipID)
	}

	moment, err := firstMoment(meta)
	if err != nil {
		return err
	}
	srtPath, ok := utils.GetString(meta, "transcript", "srt_path")
	if !ok {
		return errors.New("no transcript in clip meta")
	}
	srt, err := os.ReadFile(srtPath)
	if err != nil {
		return err
	}
	captions := subtitles.Window(subtitles.ParseSRT(string(srt)), moment.Start, moment.End)
	if len(captions) == 0 {
		return errors.New("no captions overlap the selected moment")
	}

	gemini, err := llm.NewGemini(ctx, jctx.Config.GeminiAPIKey, jctx.Config.GeminiModel)
	if err != nil {
		return err
	}
	defer gemini.Close()

	raw, err := gemini.GenerateShortScript(ctx, subtitles.TimestampedText(captions), moment)
	if err != nil {
		return err
	}
	segments := script.ParseSegments(raw)
	if len(segments) == 0 {
		return errors.New("model returned an empty script")
	}

	encoded := make([]map[string]any, 0, len(segments))
	for _, seg := range segments {
		encoded = append(encoded, map[string]any{
			"start": seg.Start,
			"end":   seg.End,
			"text":  seg.Text,
		})
	}
	meta["script"] = map[string]any{
		"raw":      raw,
		"text":     script.FullText(segments),
		"segments": encoded,
		"gender":   gemini.DetectSpeakerGender(ctx, subtitles.PlainText(captions)),
	}
	utils.SetStatus(meta, j.QueueOutput, true)
	if err := jctx.Store.UpdateClipMetaStatus(ctx, clipID, j.QueueOutput, meta); err != nil {
		return err
	}
	return j.publishNext(ctx, jctx, clipID)
}

func firstMoment(meta map[string]any) (llm.Moment, error) {
	start, okStart := utils.GetFloat(meta, "moments", "0", "start")
	end, okEnd := utils.GetFloat(meta, "moments", "0", "end")
	if !okStart || !okEnd {
		return llm.Moment{}, errors.New("no moments in clip meta; run the moment stage first")
	}
	reason, _ := utils.GetString(meta, "moments", "0", "reason")
	return llm.Moment{Start: start, End: end, Reason: reason}, nil
}
