// Package llm wraps the Gemini calls the pipeline makes: spotting clip-worthy
// moments in a transcript and writing the short-form script for one.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"clipforge/pipeline-go/internal/utils"
)

type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

func (g *Gemini) Close() {
	if g.client != nil {
		_ = g.client.Close()
	}
}

// Moment is one clip-worthy span of the source video.
type Moment struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Reason string  `json:"reason"`
}

// FindKeyMoments asks the model for up to maxMoments spans worth clipping.
// The transcript should carry timestamps so the model can anchor its answer.
func (g *Gemini) FindKeyMoments(ctx context.Context, transcript string, maxMoments int) ([]Moment, error) {
	if maxMoments <= 0 {
		maxMoments = 3
	}
	prompt := fmt.Sprintf(`You are selecting highlights from a long-form video for short-form clips.
Given the timestamped transcript below, pick up to %d moments that would work as standalone 30-60 second clips.
Respond with ONLY a JSON array, no prose, where each element is:
{"start": <seconds>, "end": <seconds>, "reason": "<one sentence>"}

Transcript:
%s`, maxMoments, transcript)

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var moments []Moment
	if err := json.Unmarshal([]byte(extractJSON(raw)), &moments); err != nil {
		return nil, fmt.Errorf("parse moments response: %w (raw: %.200s)", err, raw)
	}
	if len(moments) > maxMoments {
		moments = moments[:maxMoments]
	}
	return moments, nil
}

// GenerateShortScript writes a voiceover script for one selected moment, with
// "[0-3s]" style timing markers for the downstream segment parser.
func (g *Gemini) GenerateShortScript(ctx context.Context, transcript string, moment Moment) (string, error) {
	prompt := fmt.Sprintf(`Write a punchy voiceover script for a 30-60 second vertical video clip.
The clip covers this moment (%.0fs to %.0fs): %s

Source transcript excerpt:
%s

Rules:
- Open with a hook in the first sentence.
- Annotate timing with markers like [0-3s] at the start of each beat.
- Spoken text only: no camera directions, no hashtags, no emoji.`,
		moment.Start, moment.End, moment.Reason, transcript)

	return g.generate(ctx, prompt)
}

// DetectSpeakerGender guesses the dominant speaker's voice ("male", "female"
// or "unknown") so a matching TTS voice can be picked. Best effort only.
func (g *Gemini) DetectSpeakerGender(ctx context.Context, transcript string) string {
	prompt := "Based on names and self-references in this transcript, answer with exactly one word - male, female, or unknown - for the dominant speaker's voice:\n\n" + transcript
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		utils.Warn("speaker gender detection failed", "error", err)
		return "unknown"
	}
	answer := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(answer, "male"):
		return "male"
	case strings.HasPrefix(answer, "female"):
		return "female"
	default:
		return "unknown"
	}
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return builder.String()
}

// extractJSON strips markdown code fences the model tends to wrap JSON in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "```"); start >= 0 {
		raw = raw[start+3:]
		raw = strings.TrimPrefix(raw, "json")
		if end := strings.Index(raw, "```"); end >= 0 {
			raw = raw[:end]
		}
	}
	return strings.TrimSpace(raw)
}
