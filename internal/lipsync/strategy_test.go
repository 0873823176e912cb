package lipsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStrategy struct {
	name   string
	out    string
	err    error
	called *[]string
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(ctx context.Context, req Request) (string, error) {
	*f.called = append(*f.called, f.name)
	return f.out, f.err
}

func TestChainFirstSuccessWins(t *testing.T) {
	var called []string
	chain := NewChain(
		&fakeStrategy{name: "a", out: "/out/a.mp4", called: &called},
		&fakeStrategy{name: "b", out: "/out/b.mp4", called: &called},
	)

	out, err := chain.Attempt(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "/out/a.mp4", out)
	assert.Equal(t, []string{"a"}, called, "later strategies must not run")
}

func TestChainFallsThroughFailures(t *testing.T) {
	var called []string
	chain := NewChain(
		&fakeStrategy{name: "a", err: errors.New("boom"), called: &called},
		&fakeStrategy{name: "b", err: errors.New("kaput"), called: &called},
		&fakeStrategy{name: "c", out: "/out/c.mp4", called: &called},
	)

	out, err := chain.Attempt(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "/out/c.mp4", out)
	assert.Equal(t, []string{"a", "b", "c"}, called)
}

func TestChainAllFail(t *testing.T) {
	var called []string
	lastErr := errors.New("kaput")
	chain := NewChain(
		&fakeStrategy{name: "a", err: errors.New("boom"), called: &called},
		&fakeStrategy{name: "b", err: lastErr, called: &called},
	)

	_, err := chain.Attempt(context.Background(), Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllFailed)
	assert.Contains(t, err.Error(), "kaput", "the last failure should be reported")
}

func TestChainEmpty(t *testing.T) {
	_, err := NewChain().Attempt(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrAllFailed)
}

func TestChainHonorsCancellation(t *testing.T) {
	var called []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := NewChain(&fakeStrategy{name: "a", out: "/out/a.mp4", called: &called})
	_, err := chain.Attempt(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, called)
}

func TestWav2LipDeclinesWhenUnconfigured(t *testing.T) {
	w := &Wav2Lip{}
	_, err := w.Attempt(context.Background(), Request{})
	assert.Error(t, err)
}
