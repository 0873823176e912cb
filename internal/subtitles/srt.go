package subtitles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Caption struct {
	StartTime string
	EndTime   string
	Text      string
}

var timeRegex = regexp.MustCompile(`(\d\d:\d\d:\d\d,\d\d\d)\s-->\s(\d\d:\d\d:\d\d,\d\d\d)`)

func ParseSRT(input string) []Caption {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	blocks := splitBlocks(trimmed)
	captions := make([]Caption, 0, len(blocks))
	for _, block := range blocks {
		lines := splitLines(block)
		if len(lines) < 2 {
			continue
		}
		// First line is index; second line is time range.
		matches := timeRegex.FindStringSubmatch(lines[1])
		if len(matches) < 3 {
			continue
		}
		text := ""
		if len(lines) > 2 {
			text = strings.Join(lines[2:], "\n")
		}
		captions = append(captions, Caption{
			StartTime: matches[1],
			EndTime:   matches[2],
			Text:      strings.TrimRight(text, "\n"),
		})
	}
	return captions
}

func SerializeSRT(captions []Caption) string {
	var builder strings.Builder
	for idx, caption := range captions {
		builder.WriteString(strconv.Itoa(idx + 1))
		builder.WriteString("\n")
		builder.WriteString(caption.StartTime)
		builder.WriteString(" --> ")
		builder.WriteString(caption.EndTime)
		builder.WriteString("\n")
		builder.WriteString(caption.Text)
		builder.WriteString("\n\n")
	}
	return builder.String()
}

// StartSeconds converts the caption's start timestamp to seconds.
func (c Caption) StartSeconds() float64 { return timestampSeconds(c.StartTime) }

// EndSeconds converts the caption's end timestamp to seconds.
func (c Caption) EndSeconds() float64 { return timestampSeconds(c.EndTime) }

// timestampSeconds parses "HH:MM:SS,mmm". Malformed input yields 0.
func timestampSeconds(ts string) float64 {
	clock, millis, _ := strings.Cut(ts, ",")
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(millis)
	return float64(h*3600+m*60+s) + float64(ms)/1000
}

// Window returns the captions overlapping [start, end] seconds.
func Window(captions []Caption, start, end float64) []Caption {
	var out []Caption
	for _, c := range captions {
		if c.EndSeconds() < start || c.StartSeconds() > end {
			continue
		}
		out = append(out, c)
	}
	return out
}

// TimestampedText flattens captions into "[12s] text" lines, the compact form
// the moment-finding prompt consumes.
func TimestampedText(captions []Caption) string {
	var builder strings.Builder
	for _, c := range captions {
		text := strings.TrimSpace(strings.ReplaceAll(c.Text, "\n", " "))
		if text == "" {
			continue
		}
		fmt.Fprintf(&builder, "[%.0fs] %s\n", c.StartSeconds(), text)
	}
	return strings.TrimRight(builder.String(), "\n")
}

// PlainText joins all caption text with spaces.
func PlainText(captions []Caption) string {
	parts := make([]string, 0, len(captions))
	for _, c := range captions {
		text := strings.TrimSpace(strings.ReplaceAll(c.Text, "\n", " "))
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func NormalizeText(input string) string {
	text := strings.ReplaceAll(input, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimRight(text, "\n")
}

func splitBlocks(input string) []string {
	re := regexp.MustCompile(`\r?\n\r?\n+`)
	return re.Split(input, -1)
}

func splitLines(input string) []string {
	text := NormalizeText(input)
	return strings.Split(text, "\n")
}
