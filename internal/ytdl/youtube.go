// Package ytdl fetches source footage from YouTube and extracts the audio
// track the rest of the pipeline works from.
package ytdl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kkdai/youtube/v2"

	"clipforge/pipeline-go/internal/utils"
)

// Download saves the best available audio-capable stream of the given video
// URL into workdir and returns the saved path plus the video title.
func Download(ctx context.Context, videoURL, workdir string) (string, string, error) {
	client := youtube.Client{}

	video, err := client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", videoURL, err)
	}
	utils.Info("downloading source video", "title", video.Title, "duration", video.Duration)

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", "", fmt.Errorf("no audio-capable formats for %s", videoURL)
	}
	formats.Sort()

	stream, _, err := client.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return "", "", fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := utils.EnsureDir(workdir); err != nil {
		return "", "", err
	}
	outputPath := filepath.Join(workdir, "source.mp4")
	file, err := os.Create(outputPath)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, stream); err != nil {
		return "", "", fmt.Errorf("save stream: %w", err)
	}
	return outputPath, video.Title, nil
}

// ExtractAudio pulls a mono 16 kHz wav out of the downloaded video, the
// format the transcription API and the feature extractor both accept.
func ExtractAudio(ctx context.Context, videoPath, workdir string) (string, error) {
	audioPath := filepath.Join(workdir, "source_audio.wav")
	cmd := fmt.Sprintf(
		"ffmpeg -y -i %s -vn -acodec pcm_s16le -ar 16000 -ac 1 %s",
		utils.ShellEscape(videoPath),
		utils.ShellEscape(audioPath),
	)
	if _, err := utils.RunCommandContext(ctx, cmd); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	return audioPath, nil
}
