// Package tts renders voiceover audio from a cleaned script. An API-backed
// voice is preferred; a locally installed synthesizer command is the
// fallback when no key is configured or the API call fails.
package tts

import (
	"context"
	"fmt"

	"clipforge/pipeline-go/internal/utils"
)

// Synthesizer renders spoken audio for text into outputPath.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, outputPath string) error
}

// Chain tries synthesizers in order and keeps the first that delivers a file.
type Chain struct {
	synths []Synthesizer
}

func NewChain(synths ...Synthesizer) *Chain {
	return &Chain{synths: synths}
}

func (c *Chain) Synthesize(ctx context.Context, text, outputPath string) error {
	var lastErr error
	for _, s := range c.synths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Synthesize(ctx, text, outputPath); err != nil {
			utils.Warn("voice synthesizer failed, trying next", "synthesizer", s.Name(), "error", err)
			lastErr = err
			continue
		}
		if !utils.FileExists(outputPath) {
			lastErr = fmt.Errorf("%s reported success but wrote no output", s.Name())
			continue
		}
		utils.Info("voiceover rendered", "synthesizer", s.Name(), "output", outputPath)
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no synthesizers configured")
	}
	return fmt.Errorf("all voice synthesizers failed: %w", lastErr)
}
