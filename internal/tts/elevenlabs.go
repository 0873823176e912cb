package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const elevenLabsEndpoint = "https://api.elevenlabs.io/v1/text-to-speech/%s"

// ElevenLabs calls the hosted text-to-speech API and writes the returned
// mp3 audio to the output path.
type ElevenLabs struct {
	APIKey     string
	VoiceID    string
	ModelID    string
	HTTPClient *http.Client
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

type elevenLabsRequest struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsVoicing `json:"voice_settings,omitempty"`
}

type elevenLabsVoicing struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text, outputPath string) error {
	if e.APIKey == "" || e.VoiceID == "" {
		return fmt.Errorf("api key or voice id not configured")
	}

	body, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: e.ModelID,
		VoiceSettings: &elevenLabsVoicing{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf(elevenLabsEndpoint, e.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.APIKey)

	client := e.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, detail)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return nil
}
