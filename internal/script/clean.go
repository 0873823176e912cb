// Package script prepares model-generated scripts for text-to-speech and
// on-screen captions.
package script

import (
	"regexp"
	"strings"
)

var (
	stageDirection = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	multiSpace     = regexp.MustCompile(`[ \t]{2,}`)
)

// Clean strips formatting that a TTS voice would otherwise read out loud:
// markdown emphasis markers, TITLE: header lines, CONTENT: prefixes, and
// parenthesized stage directions like "(pauses)".
func Clean(raw string) string {
	// "**TITLE:** Foo" would otherwise be spoken as "asterisk asterisk title...".
	raw = strings.ReplaceAll(raw, "*", "")
	raw = strings.ReplaceAll(raw, "#", "")

	lines := strings.Split(raw, "\n")
	var builder strings.Builder
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "TITLE:") {
			continue
		}
		line = strings.TrimPrefix(line, "CONTENT:")
		line = stageDirection.ReplaceAllString(line, "")
		line = multiSpace.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	return strings.TrimSpace(builder.String())
}
