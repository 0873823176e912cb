package video

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"clipforge/pipeline-go/internal/utils"
)

// DefaultFPS is used when the container does not declare a usable frame rate.
const DefaultFPS = 24.0

// Info holds the stream properties the assembler needs.
type Info struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
}

type probeOutput struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe inspects the first video stream of the file at path.
func Probe(path string) (Info, error) {
	cmd := fmt.Sprintf(
		"ffprobe -v error -select_streams v:0 -show_entries stream=width,height,r_frame_rate -show_entries format=duration -of json %s",
		utils.ShellEscape(path),
	)
	out, err := utils.RunCommand(cmd)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}

	var probed probeOutput
	if err := json.Unmarshal([]byte(out), &probed); err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}
	if len(probed.Streams) == 0 {
		return Info{}, fmt.Errorf("probe %s: no video stream", path)
	}

	stream := probed.Streams[0]
	info := Info{
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    parseFrameRate(stream.RFrameRate),
	}
	if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	return info, nil
}

// parseFrameRate handles ffprobe's rational form ("30000/1001"). Anything
// unparseable or non-positive falls back to DefaultFPS.
func parseFrameRate(raw string) float64 {
	num, den, found := strings.Cut(raw, "/")
	if !found {
		den = "1"
	}
	n, errN := strconv.ParseFloat(num, 64)
	d, errD := strconv.ParseFloat(den, 64)
	if errN != nil || errD != nil || d == 0 || n <= 0 {
		return DefaultFPS
	}
	fps := n / d
	if fps <= 0 {
		return DefaultFPS
	}
	return fps
}
