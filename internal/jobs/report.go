package jobs

import (
	"context"
	"fmt"

	"clipforge/pipeline-go/internal/db"
	"clipforge/pipeline-go/internal/utils"
)

// Stage describes one pipeline stage: the status flag its job sets, the meta
// key the job writes its payload under, and the queue the job consumes from.
type Stage struct {
	Flag    string
	MetaKey string
	Queue   string
}

// Stages lists the pipeline stages in processing order.
var Stages = []Stage{
	{Flag: "audio_downloaded", MetaKey: "source", Queue: "source_ingested"},
	{Flag: "transcript_generated", MetaKey: "transcript", Queue: "audio_downloaded"},
	{Flag: "moments_found", MetaKey: "moments", Queue: "transcript_generated"},
	{Flag: "script_generated", MetaKey: "script", Queue: "moments_found"},
	{Flag: "voiceover_generated", MetaKey: "voiceover", Queue: "script_generated"},
	{Flag: "video_assembled", MetaKey: "video", Queue: "voiceover_generated"},
}

func stageByFlag(flag string) (Stage, bool) {
	for _, s := range Stages {
		if s.Flag == flag {
			return s, true
		}
	}
	return Stage{}, false
}

// StageReport is the progress of one stage across all clips.
type StageReport struct {
	Stage Stage
	Done  int
	Reset int
	// MissingPayload lists clips whose stage flag is set but whose meta
	// lacks the stage's payload key, which means a job half-completed.
	MissingPayload []db.Clip
}

// Report is a snapshot of the whole pipeline.
type Report struct {
	Total  int
	Failed []db.Clip
	Stages []StageReport
}

// BuildReport counts clip progress per stage and flags clips whose meta is
// inconsistent with their status flags.
func BuildReport(ctx context.Context, jctx JobContext) (Report, error) {
	total, err := jctx.Store.CountClips(ctx, "")
	if err != nil {
		return Report{}, err
	}
	rep := Report{Total: total}

	failed, err := jctx.Store.QueryClips(ctx, `
		SELECT id, title, status, source_url, meta, created_at, updated_at
		FROM clips
		WHERE status = 'failed'
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return Report{}, err
	}
	rep.Failed = failed

	for _, stage := range Stages {
		done, err := jctx.Store.CountClips(ctx,
			"WHERE "+db.StatusTrueCondition([]string{stage.Flag}))
		if err != nil {
			return Report{}, err
		}
		reset, err := jctx.Store.CountClips(ctx,
			"WHERE "+db.StatusFalseCondition([]string{stage.Flag}))
		if err != nil {
			return Report{}, err
		}
		missing, err := jctx.Store.QueryClips(ctx, `
			SELECT id, title, status, source_url, meta, created_at, updated_at
			FROM clips
			WHERE `+db.StatusTrueCondition([]string{stage.Flag})+`
			AND `+db.MetaKeyMissingCondition([]string{stage.MetaKey})+`
			ORDER BY id
		`)
		if err != nil {
			return Report{}, err
		}
		rep.Stages = append(rep.Stages, StageReport{
			Stage:          stage,
			Done:           done,
			Reset:          reset,
			MissingPayload: missing,
		})
	}
	return rep, nil
}

// RetryStage resets a clip's stage flag to false and re-queues the clip on
// the stage's input queue so the next worker redoes it.
func RetryStage(ctx context.Context, jctx JobContext, clipID int64, flag string) error {
	stage, ok := stageByFlag(flag)
	if !ok {
		return fmt.Errorf("unknown stage %q, valid stages: %v", flag, stageFlags())
	}

	clip, err := jctx.Store.GetClipByID(ctx, clipID)
	if err != nil {
		return err
	}
	meta, err := utils.DecodeMeta(clip.Meta)
	if err != nil {
		return err
	}
	utils.SetStatus(meta, stage.Flag, false)
	if err := jctx.Store.UpdateClipMeta(ctx, clip.ID, meta); err != nil {
		return err
	}
	utils.Info("stage reset", "clip_id", clip.ID, "stage", stage.Flag)

	base := BaseJob{QueueOutput: stage.Queue}
	return base.publishNext(ctx, jctx, clip.ID)
}

func stageFlags() []string {
	flags := make([]string, len(Stages))
	for i, s := range Stages {
		flags[i] = s.Flag
	}
	return flags
}
