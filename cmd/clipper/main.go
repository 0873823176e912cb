package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"clipforge/pipeline-go/internal/config"
	"clipforge/pipeline-go/internal/db"
	"clipforge/pipeline-go/internal/jobs"
	"clipforge/pipeline-go/internal/lipsync"
	"clipforge/pipeline-go/internal/motion"
	"clipforge/pipeline-go/internal/queue"
	"clipforge/pipeline-go/internal/utils"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := os.Args[1]
	args := os.Args[2:]

	// The standalone lip-sync command needs neither database nor queue.
	if cmd == "lipsync" {
		if err := runLipsync(ctx, args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	store, err := db.NewStore(ctx, cfg.DBConnString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "db error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	queueClient, err := queue.New(cfg.RabbitMQURL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "queue error: %v\n", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	jctx := jobs.JobContext{
		Config: cfg,
		Store:  store,
		Queue:  queueClient,
	}

	var runErr error
	switch cmd {
	case "clips:status":
		runErr = runClipsStatus(ctx, jctx, args)
	case "clips:retry":
		runErr = runClipsRetry(ctx, jctx, args)
	case "job:SetupClip":
		runErr = runSetupClip(ctx, jctx, args)
	case "job:DownloadAudio":
		runErr = runStage(ctx, jctx, "job:DownloadAudio", args, func(ctx context.Context, jctx jobs.JobContext, opts jobs.JobOptions) error {
			return jobs.NewDownloadAudioJob().Run(ctx, jctx, opts)
		})
	case "job:Transcribe":
		runErr = runStage(ctx, jctx, "job:Transcribe", args, func(ctx context.Context, jctx jobs.JobContext, opts jobs.JobOptions) error {
			return jobs.NewTranscribeJob().Run(ctx, jctx, opts)
		})
	case "job:FindMoments":
		runErr = runStage(ctx, jctx, "job:FindMoments", args, func(ctx context.Context, jctx jobs.JobContext, opts jobs.JobOptions) error {
			return jobs.NewFindMomentsJob().Run(ctx, jctx, opts)
		})
	case "job:GenerateScript":
		runErr = runStage(ctx, jctx, "job:GenerateScript", args, func(ctx context.Context, jctx jobs.JobContext, opts jobs.JobOptions) error {
			return jobs.NewGenerateScriptJob().Run(ctx, jctx, opts)
		})
	case "job:GenerateVoiceover":
		runErr = runStage(ctx, jctx, "job:GenerateVoiceover", args, func(ctx context.Context, jctx jobs.JobContext, opts jobs.JobOptions) error {
			return jobs.NewGenerateVoiceoverJob().Run(ctx, jctx, opts)
		})
	case "job:AssembleVideo":
		runErr = runStage(ctx, jctx, "job:AssembleVideo", args, func(ctx context.Context, jctx jobs.JobContext, opts jobs.JobOptions) error {
			return jobs.NewAssembleVideoJob().Run(ctx, jctx, opts)
		})
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}

func parseClipID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid clip_id: %s", args[0])
	}
	return id, nil
}

type stageFunc func(ctx context.Context, jctx jobs.JobContext, opts jobs.JobOptions) error

func runStage(ctx context.Context, jctx jobs.JobContext, name string, args []string, run stageFunc) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	sleep := fs.Int("sleep", 30, "Sleep time in seconds")
	queueFlag := fs.Bool("queue", false, "Process queue messages")
	regenerate := fs.Bool("regenerate", false, "Redo the stage even if already done")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)
	clipID, err := parseClipID(fs.Args())
	if err != nil {
		return err
	}
	opts := jobs.JobOptions{ClipID: clipID, Sleep: *sleep, Queue: *queueFlag, Regenerate: *regenerate}
	utils.Logf("start %s clip_id=%d queue=%t sleep=%d regenerate=%t", name, opts.ClipID, opts.Queue, opts.Sleep, opts.Regenerate)
	return run(ctx, jctx, opts)
}

func runSetupClip(ctx context.Context, jctx jobs.JobContext, args []string) error {
	fs := flag.NewFlagSet("job:SetupClip", flag.ContinueOnError)
	sourceURL := fs.String("source", "", "Source video URL")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)
	clipID, err := parseClipID(fs.Args())
	if err != nil {
		return err
	}
	opts := jobs.JobOptions{ClipID: clipID, SourceURL: *sourceURL}
	utils.Logf("start job:SetupClip clip_id=%d source=%s", opts.ClipID, opts.SourceURL)
	return jobs.NewSetupClipJob().Run(ctx, jctx, opts)
}

func runClipsStatus(ctx context.Context, jctx jobs.JobContext, args []string) error {
	fs := flag.NewFlagSet("clips:status", flag.ContinueOnError)
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	rep, err := jobs.BuildReport(ctx, jctx)
	if err != nil {
		return err
	}

	fmt.Printf("clips: %d total, %d failed\n", rep.Total, len(rep.Failed))
	for _, sr := range rep.Stages {
		fmt.Printf("  %-22s done=%-5d reset=%d\n", sr.Stage.Flag, sr.Done, sr.Reset)
		for _, clip := range sr.MissingPayload {
			fmt.Printf("    clip %d marked %s but meta has no %q key\n", clip.ID, sr.Stage.Flag, sr.Stage.MetaKey)
		}
	}
	for _, clip := range rep.Failed {
		fmt.Printf("  failed: clip %d (%s)\n", clip.ID, clip.SourceURL)
	}
	return nil
}

func runClipsRetry(ctx context.Context, jctx jobs.JobContext, args []string) error {
	fs := flag.NewFlagSet("clips:retry", flag.ContinueOnError)
	stage := fs.String("stage", "", "Stage flag to reset and re-run")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	clipID, err := parseClipID(fs.Args())
	if err != nil {
		return err
	}
	if clipID == 0 || *stage == "" {
		return fmt.Errorf("clips:retry needs a clip_id and --stage")
	}
	return jobs.RetryStage(ctx, jctx, clipID, *stage)
}

func runLipsync(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lipsync", flag.ContinueOnError)
	face := fs.String("face", "", "Face video or still image")
	audio := fs.String("audio", "", "Driving audio track")
	output := fs.String("output", "", "Output mp4 path")
	workdir := fs.String("workdir", "", "Scratch directory (default: a temp dir)")
	fps := fs.Float64("fps", 0, "Output frame rate (default: probe face source)")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	utils.ConfigureLogging(*verbose)

	if *face == "" || *audio == "" || *output == "" {
		return fmt.Errorf("--face, --audio and --output are required")
	}
	scratch := *workdir
	if scratch == "" {
		dir, err := os.MkdirTemp("", "clipforge-lipsync-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		scratch = dir
	}

	chain := lipsync.NewChain(
		&lipsync.Heuristic{Params: motion.DefaultParams(), FPS: *fps},
		&lipsync.PlainMux{},
	)
	out, err := chain.Attempt(ctx, lipsync.Request{
		FacePath:   *face,
		AudioPath:  *audio,
		OutputPath: *output,
		Workdir:    scratch,
	})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func printUsage() {
	fmt.Println("Usage: clipper <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  job:SetupClip [clip_id] [--source=URL] [--verbose]")
	fmt.Println("  job:DownloadAudio [clip_id] [--sleep=N] [--queue] [--regenerate] [--verbose]")
	fmt.Println("  job:Transcribe [clip_id] [--sleep=N] [--queue] [--regenerate] [--verbose]")
	fmt.Println("  job:FindMoments [clip_id] [--sleep=N] [--queue] [--regenerate] [--verbose]")
	fmt.Println("  job:GenerateScript [clip_id] [--sleep=N] [--queue] [--regenerate] [--verbose]")
	fmt.Println("  job:GenerateVoiceover [clip_id] [--sleep=N] [--queue] [--regenerate] [--verbose]")
	fmt.Println("  job:AssembleVideo [clip_id] [--sleep=N] [--queue] [--regenerate] [--verbose]")
	fmt.Println("  clips:status [--verbose]")
	fmt.Println("  clips:retry <clip_id> --stage=FLAG [--verbose]")
	fmt.Println("  lipsync --face=PATH --audio=PATH --output=PATH [--fps=N] [--workdir=DIR] [--verbose]")
}
