package script

import (
	"regexp"
	"strconv"
	"strings"
)

// Segment is one timed beat of a short-form script.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Matches "[0-3s]", "[3.5 - 10s]" and similar timing markers.
var segmentMarker = regexp.MustCompile(`\[(\d+(?:\.\d+)?)s?\s*-\s*(\d+(?:\.\d+)?)s?\]`)

// ParseSegments splits a script annotated with "[0-3s]" timing markers into
// timed beats, cleaning each beat's text for speech. A script with no markers
// comes back as a single untimed segment.
func ParseSegments(raw string) []Segment {
	locs := segmentMarker.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		text := Clean(raw)
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}

	segments := make([]Segment, 0, len(locs))
	for i, loc := range locs {
		start, _ := strconv.ParseFloat(raw[loc[2]:loc[3]], 64)
		end, _ := strconv.ParseFloat(raw[loc[4]:loc[5]], 64)

		textEnd := len(raw)
		if i+1 < len(locs) {
			textEnd = locs[i+1][0]
		}
		text := Clean(raw[loc[1]:textEnd])
		if text == "" {
			continue
		}
		segments = append(segments, Segment{Start: start, End: end, Text: text})
	}
	return segments
}

// FullText joins the spoken text of all segments in order.
func FullText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
