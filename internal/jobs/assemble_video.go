package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"clipforge/pipeline-go/internal/lipsync"
	"clipforge/pipeline-go/internal/utils"
)

// AssembleVideoJob produces the final talking-head clip from the voiceover
// and the configured face footage.
type AssembleVideoJob struct {
	BaseJob
}

func NewAssembleVideoJob() AssembleVideoJob {
	return AssembleVideoJob{
		BaseJob: BaseJob{
			QueueInput:  "voiceover_generated",
			QueueOutput: "video_assembled",
		},
	}
}

func (j AssembleVideoJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
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

func (j AssembleVideoJob) processClip(ctx context.Context, jctx JobContext, clipID int64, regenerate bool) error {
	utils.Logf("AssembleVideo: process clip_id=%d", clipID)
	clip, err := jctx.Store.GetClipByID(ctx, clipID)
	if err != nil {
		return err
	}
	meta, err := utils.DecodeMeta(clip.Meta)
	if err != nil {
		return err
	}
	if done, _ := utils.GetStatus(meta, j.QueueOutput); done && !regenerate {
		utils.Info("video already assembled", "clip_id", clipID)
		return nil
	}

	audioPath, ok := utils.GetString(meta, "voiceover", "audio_path")
	if !ok || audioPath == "" {
		return errors.New("no voiceover in clip meta; run the voiceover stage first")
	}
	facePath := jctx.Config.FacePath
	if fromMeta, ok := utils.GetString(meta, "face_path"); ok && fromMeta != "" {
		facePath = fromMeta
	}
	if facePath == "" {
		return errors.New("no face footage configured (lipsync.face_path)")
	}

	scratch, err := runScratchDir(jctx, clipID)
	if err != nil {
		return err
	}
	outputPath := filepath.Join(jctx.Config.BaseOutputFolder, "clips", fmt.Sprintf("%010d.mp4", clipID))
	if err := utils.EnsureDir(filepath.Dir(outputPath)); err != nil {
		return err
	}

	chain := lipsync.NewChain(
		&lipsync.Wav2Lip{
			Command:    jctx.Config.LipSyncCommand,
			Checkpoint: jctx.Config.LipSyncCheckpoint,
		},
		&lipsync.Heuristic{Params: jctx.Config.MotionParams(), FPS: jctx.Config.OutputFPS},
		&lipsync.PlainMux{},
	)
	finalPath, err := chain.Attempt(ctx, lipsync.Request{
		FacePath:   facePath,
		AudioPath:  audioPath,
		OutputPath: outputPath,
		Workdir:    scratch,
	})
	if err != nil {
		return err
	}

	checksum, err := utils.SHA256File(finalPath)
	if err != nil {
		return err
	}
	meta["video"] = map[string]any{
		"output_path": finalPath,
		"sha256":      checksum,
		"hostname":    jctx.Config.Hostname,
	}
	utils.SetStatus(meta, j.QueueOutput, true)
	return jctx.Store.UpdateClipMetaStatus(ctx, clipID, j.QueueOutput, meta)
}
