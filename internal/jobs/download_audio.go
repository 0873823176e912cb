package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"clipforge/pipeline-go/internal/db"
	"clipforge/pipeline-go/internal/utils"
	"clipforge/pipeline-go/internal/ytdl"
)

// DownloadAudioJob fetches the source video and extracts its audio track.
type DownloadAudioJob struct {
	BaseJob
}

func NewDownloadAudioJob() DownloadAudioJob {
	return DownloadAudioJob{
		BaseJob: BaseJob{
			QueueInput:      "source_ingested",
			QueueOutput:     "audio_downloaded",
			IgnoreHostCheck: true,
		},
	}
}

func (j DownloadAudioJob) Run(ctx context.Context, jctx JobContext, opts JobOptions) error {
	if opts.Queue {
		return j.RunQueue(ctx, jctx, opts, func(ctx context.Context, clipID int64, hostname string) error {
			return j.processClip(ctx, jctx, clipID, opts.Regenerate)
		})
	}

	clipID := opts.ClipID
	if clipID == 0 {
		clip, err := j.selectNext(ctx, jctx)
		if err != nil {
			return err
		}
		clipID = clip.ID
	}
	return j.processClip(ctx, jctx, clipID, opts.Regenerate)
}

func (j DownloadAudioJob) selectNext(ctx context.Context, jctx JobContext) (db.Clip, error) {
	where := "WHERE " + db.StatusNotTrueCondition([]string{j.QueueOutput})
	clip, err := jctx.Store.FindFirstClip(ctx, where)
	if err != nil {
		return db.Clip{}, err
	}
	if clip.ID == 0 {
		return db.Clip{}, errors.New("no clip to process")
	}
	return clip, nil
}

func (j DownloadAudioJob) processClip(ctx context.Context, jctx JobContext, clipID int64, regenerate bool) error {
	utils.Logf("DownloadAudio: process clip_id=%d", clipID)
	clip, err := jctx.Store.GetClipByID(ctx, clipID)
	if err != nil {
		return err
	}
	meta, err := utils.DecodeMeta(clip.Meta)
	if err != nil {
		return err
	}
	if done, _ := utils.GetStatus(meta, j.QueueOutput); done && !regenerate {
		utils.Info("audio already downloaded", "clip_id", clipID)
		return j.publishNext(ctx, jctx, clipID)
	}

	workdir, err := clipWorkdir(jctx, clipID)
	if err != nil {
		return err
	}

	var videoPath, title string
	if utils.FileExists(clip.SourceURL) {
		// Local file sources skip the download.
		videoPath = filepath.Join(workdir, "source"+filepath.Ext(clip.SourceURL))
		if err := utils.CopyFile(clip.SourceURL, videoPath); err != nil {
			return err
		}
		title = strings.TrimSuffix(filepath.Base(clip.SourceURL), filepath.Ext(clip.SourceURL))
	} else {
		videoPath, title, err = ytdl.Download(ctx, clip.SourceURL, workdir)
		if err != nil {
			return err
		}
	}
	audioPath, err := ytdl.ExtractAudio(ctx, videoPath, workdir)
	if err != nil {
		return err
	}

	if clip.Title == "" && title != "" {
		if err := jctx.Store.UpdateClipTitle(ctx, clipID, title); err != nil {
			return err
		}
	}

	meta["source"] = map[string]any{
		"video_path": videoPath,
		"audio_path": audioPath,
		"title":      title,
		"hostname":   jctx.Config.Hostname,
	}
	utils.SetStatus(meta, j.QueueOutput, true)
	if err := jctx.Store.UpdateClipMetaStatus(ctx, clipID, j.QueueOutput, meta); err != nil {
		return err
	}
	return j.publishNext(ctx, jctx, clipID)
}
