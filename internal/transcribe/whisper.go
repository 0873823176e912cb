// Package transcribe turns extracted audio into timestamped text via the
// OpenAI transcription API.
package transcribe

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"clipforge/pipeline-go/internal/utils"
)

type Whisper struct {
	client *openai.Client
	model  string
}

func NewWhisper(apiKey, model string) (*Whisper, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is not configured")
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Whisper{client: openai.NewClient(apiKey), model: model}, nil
}

// TranscribeSRT returns the transcript in SRT form, with per-cue timestamps
// the moment finder needs to anchor clip boundaries.
func (w *Whisper) TranscribeSRT(ctx context.Context, audioPath string) (string, error) {
	utils.Info("transcribing audio", "path", audioPath, "model", w.model)
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatSRT,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}
