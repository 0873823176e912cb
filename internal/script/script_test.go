package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanStripsMarkdownAndHeaders(t *testing.T) {
	raw := "**TITLE:** Big Reveal\nCONTENT: Here is the *amazing* thing.\nAnd more."
	got := Clean(raw)
	assert.Equal(t, "Here is the amazing thing.\nAnd more.", got)
}

func TestCleanDropsStageDirections(t *testing.T) {
	raw := "So I opened the door (pauses dramatically) and there it was."
	got := Clean(raw)
	assert.Equal(t, "So I opened the door and there it was.", got)
}

func TestCleanEmptyInput(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("   \n\n  "))
	assert.Equal(t, "", Clean("TITLE: only a title"))
}

func TestParseSegmentsTimed(t *testing.T) {
	raw := "[0-3s] The hook line!\n[3-10s] The middle part.\n[10-15s] The payoff."
	segments := ParseSegments(raw)
	require.Len(t, segments, 3)

	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 3.0, segments[0].End)
	assert.Equal(t, "The hook line!", segments[0].Text)

	assert.Equal(t, 3.0, segments[1].Start)
	assert.Equal(t, 10.0, segments[1].End)

	assert.Equal(t, "The payoff.", segments[2].Text)
}

func TestParseSegmentsFractionalAndSpacing(t *testing.T) {
	raw := "[0.5 - 4.25s] Something quick."
	segments := ParseSegments(raw)
	require.Len(t, segments, 1)
	assert.Equal(t, 0.5, segments[0].Start)
	assert.Equal(t, 4.25, segments[0].End)
}

func TestParseSegmentsNoMarkers(t *testing.T) {
	segments := ParseSegments("Just a plain script with no timing.")
	require.Len(t, segments, 1)
	assert.Zero(t, segments[0].Start)
	assert.Zero(t, segments[0].End)
	assert.Equal(t, "Just a plain script with no timing.", segments[0].Text)
}

func TestParseSegmentsSkipsEmptyBeats(t *testing.T) {
	raw := "[0-3s]\n[3-6s] Actual content."
	segments := ParseSegments(raw)
	require.Len(t, segments, 1)
	assert.Equal(t, "Actual content.", segments[0].Text)
}

func TestFullText(t *testing.T) {
	segments := []Segment{
		{Text: "First."},
		{Text: "Second."},
	}
	assert.Equal(t, "First. Second.", FullText(segments))
	assert.Equal(t, "", FullText(nil))
}
