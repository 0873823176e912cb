// Package lipsync selects how a talking-head clip gets produced. Strategies
// are tried in order until one succeeds: a configured external lip-sync
// command first, then the built-in heuristic synthesizer, and finally a plain
// mux of the looped face footage over the audio.
package lipsync

import (
	"context"
	"errors"
	"fmt"

	"clipforge/pipeline-go/internal/utils"
)

// Request carries the inputs every strategy needs.
type Request struct {
	FacePath   string
	AudioPath  string
	OutputPath string
	Workdir    string
}

// Strategy is one way of producing the output clip. Attempt returns the path
// of the finished file, or an error when this strategy cannot deliver.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req Request) (string, error)
}

// ErrAllFailed is returned when every strategy in the chain has failed.
var ErrAllFailed = errors.New("all lip-sync strategies failed")

// Chain tries each strategy in order and returns the first success. Failures
// short of the last are logged and swallowed; only when the whole chain is
// exhausted does the caller see an error, wrapping the last failure.
type Chain struct {
	strategies []Strategy
}

func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

func (c *Chain) Attempt(ctx context.Context, req Request) (string, error) {
	if len(c.strategies) == 0 {
		return "", ErrAllFailed
	}
	var lastErr error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := s.Attempt(ctx, req)
		if err == nil {
			utils.Info("lip-sync strategy succeeded", "strategy", s.Name(), "output", out)
			return out, nil
		}
		utils.Warn("lip-sync strategy failed, trying next", "strategy", s.Name(), "error", err)
		lastErr = err
	}
	return "", fmt.Errorf("%w: last: %v", ErrAllFailed, lastErr)
}
