package jobs

import (
	"context"
	"encoding/json"
	"errors"

	"clipforge/pipeline-go/internal/db"
	"clipforge/pipeline-go/internal/utils"
)

// SetupClipJob registers a source video and kicks off the pipeline. Running
// it again for a known source URL re-queues the existing clip instead of
// creating a duplicate row.
type SetupClipJob struct {
	BaseJob
}

func NewSetupClipJob() SetupClipJob {
	return SetupClipJob{
		BaseJob: BaseJob{
			QueueOutput: "source_ingested",
		},
	}
}

func (j SetupClipJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
	utils.Info("SetupClip process", "clip_id", opts.ClipID, "source", opts.SourceURL)

	if opts.ClipID != 0 {
		clip, err := jctx.Store.GetClipByID(ctx, opts.ClipID)
		if err != nil {
			return err
		}
		return j.publishNext(ctx, jctx, clip.ID)
	}

	if opts.SourceURL == "" {
		return errors.New("a source URL or clip id is required")
	}

	existing, err := jctx.Store.FindClipBySourceURL(ctx, opts.SourceURL)
	if err != nil {
		return err
	}
	if existing.ID != 0 {
		utils.Info("source already registered", "clip_id", existing.ID)
		return j.publishNext(ctx, jctx, existing.ID)
	}

	meta, _ := json.Marshal(map[string]any{"status": map[string]any{}})
	status := "new"
	id, err := jctx.Store.CreateClip(ctx, db.Clip{
		Status:    &status,
		SourceURL: opts.SourceURL,
		Meta:      meta,
	})
	if err != nil {
		return err
	}
	utils.Info("clip registered", "clip_id", id, "source", opts.SourceURL)
	return j.publishNext(ctx, jctx, id)
}
