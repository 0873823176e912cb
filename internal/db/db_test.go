package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTrueCondition(t *testing.T) {
	assert.Equal(t,
		"meta->'status'->>'audio_downloaded' = 'true'",
		StatusTrueCondition([]string{"audio_downloaded"}))
	assert.Equal(t,
		"meta->'status'->>'a' = 'true' AND meta->'status'->>'b' = 'true'",
		StatusTrueCondition([]string{"a", "b"}))
}

func TestStatusNotTrueCondition(t *testing.T) {
	got := StatusNotTrueCondition([]string{"video_assembled"})
	assert.Equal(t,
		"(meta->'status'->>'video_assembled' IS NULL OR meta->'status'->>'video_assembled' <> 'true')",
		got)
}

func TestStatusFalseCondition(t *testing.T) {
	// A flag set to explicit false marks a reset stage awaiting a redo.
	assert.Equal(t,
		"meta->'status'->>'transcript_generated' = 'false'",
		StatusFalseCondition([]string{"transcript_generated"}))
}

func TestMetaKeyMissingCondition(t *testing.T) {
	assert.Equal(t, "NOT (meta ? 'transcript')", MetaKeyMissingCondition([]string{"transcript"}))
	assert.Equal(t,
		"NOT (meta ? 'source') AND NOT (meta ? 'video')",
		MetaKeyMissingCondition([]string{"source", "video"}))
}

func TestConditionsEmptyFlags(t *testing.T) {
	assert.Empty(t, StatusTrueCondition(nil))
	assert.Empty(t, MetaKeyMissingCondition(nil))
}
