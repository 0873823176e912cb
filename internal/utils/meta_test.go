package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMeta(t *testing.T) {
	meta, err := DecodeMeta([]byte(`{"status":{"audio_downloaded":true},"source":{"title":"x"}}`))
	require.NoError(t, err)
	assert.Contains(t, meta, "status")

	empty, err := DecodeMeta(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = DecodeMeta([]byte("{broken"))
	assert.Error(t, err)
}

func TestStatusHelpers(t *testing.T) {
	meta := map[string]any{}

	_, found := GetStatus(meta, "audio_downloaded")
	assert.False(t, found)

	SetStatus(meta, "audio_downloaded", true)
	value, found := GetStatus(meta, "audio_downloaded")
	assert.True(t, found)
	assert.True(t, value)

	// JSON round-trips can stringify booleans; both spellings must read back.
	EnsureStatusMap(meta)["transcript_generated"] = "true"
	value, found = GetStatus(meta, "transcript_generated")
	assert.True(t, found)
	assert.True(t, value)

	SetStatus(meta, "audio_downloaded", false)
	value, _ = GetStatus(meta, "audio_downloaded")
	assert.False(t, value)
}

func TestGetValuePathTraversal(t *testing.T) {
	meta := map[string]any{
		"moments": []any{
			map[string]any{"start": 12.5, "reason": "hook"},
			map[string]any{"start": 80.0},
		},
		"script": map[string]any{"text": "hello"},
	}

	text, ok := GetString(meta, "script", "text")
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	start, ok := GetFloat(meta, "moments", "0", "start")
	assert.True(t, ok)
	assert.Equal(t, 12.5, start)

	_, ok = GetFloat(meta, "moments", "9", "start")
	assert.False(t, ok)

	_, ok = GetString(meta, "script", "missing")
	assert.False(t, ok)

	m, ok := GetMap(meta, "script")
	assert.True(t, ok)
	assert.Equal(t, "hello", m["text"])
}

func TestShellEscape(t *testing.T) {
	assert.Equal(t, "''", ShellEscape(""))
	assert.Equal(t, "'plain'", ShellEscape("plain"))
	assert.Equal(t, `'it'"'"'s'`, ShellEscape("it's"))
	assert.Equal(t, "'a b;rm -rf /'", ShellEscape("a b;rm -rf /"))
}

func TestSHA256Bytes(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		SHA256Bytes(nil))
	assert.Len(t, SHA256Bytes([]byte("abc")), 64)
}
