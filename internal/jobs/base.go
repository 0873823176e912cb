package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clipforge/pipeline-go/internal/config"
	"clipforge/pipeline-go/internal/db"
	"clipforge/pipeline-go/internal/queue"
	"clipforge/pipeline-go/internal/utils"
)

type JobContext struct {
	Config config.Config
	Store  *db.Store
	Queue  *queue.Client
}

type JobOptions struct {
	ClipID     int64
	SourceURL  string
	Sleep      int
	Queue      bool
	Regenerate bool
	QueueOnce  bool
}

type BaseJob struct {
	QueueInput      string
	QueueOutput     string
	IgnoreHostCheck bool
}

type QueuePayload struct {
	ClipID   int64  `json:"clip_id"`
	Hostname string `json:"hostname"`
}

type QueueHandler func(ctx context.Context, clipID int64, hostname string) error

func (b BaseJob) RunQueue(ctx context.Context, jctx JobContext, opts JobOptions, handler QueueHandler) error {
	if jctx.Queue == nil {
		return fmt.Errorf("queue client is not configured")
	}

	sleep := opts.Sleep
	if sleep <= 0 {
		sleep = 30
	}

	for {
		msg, err := jctx.Queue.Pop(b.QueueInput)
		if err != nil {
			return err
		}
		if msg == nil {
			utils.Debug("queue empty", "queue", b.QueueInput, "sleep_s", sleep)
			time.Sleep(time.Duration(sleep) * time.Second)
			if opts.QueueOnce {
				return nil
			}
			continue
		}

		var payload QueuePayload
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			utils.Warn("queue payload json decode failed", "queue", b.QueueInput, "err", err)
			_ = msg.Ack()
			continue
		}
		if payload.ClipID == 0 {
			utils.Warn("queue payload invalid (missing clip_id)", "queue", b.QueueInput)
			_ = msg.Ack()
			continue
		}

		if !b.IgnoreHostCheck && payload.Hostname != "" && payload.Hostname != jctx.Config.Hostname {
			utils.Warn("queue host mismatch", "queue", b.QueueInput, "message_host", payload.Hostname, "local_host", jctx.Config.Hostname)
			_ = msg.Nack(true)
			time.Sleep(time.Duration(sleep) * time.Second)
			continue
		}

		if err := handler(ctx, payload.ClipID, payload.Hostname); err != nil {
			utils.Error("queue handler error", "queue", b.QueueInput, "clip_id", payload.ClipID, "err", err)
			if serr := jctx.Store.UpdateClipStatus(ctx, payload.ClipID, "failed"); serr != nil {
				utils.Warn("could not mark clip failed", "clip_id", payload.ClipID, "err", serr)
			}
			_ = msg.Nack(true)
			continue
		}
		_ = msg.Ack()
	}
}

// publishNext notifies the downstream stage queue about a clip, if a queue
// client is wired up. Standalone CLI runs skip this silently.
func (b BaseJob) publishNext(ctx context.Context, jctx JobContext, clipID int64) error {
	if jctx.Queue == nil || b.QueueOutput == "" {
		return nil
	}
	payload, _ := json.Marshal(QueuePayload{ClipID: clipID, Hostname: jctx.Config.Hostname})
	return jctx.Queue.Publish(ctx, b.QueueOutput, payload)
}
