package audiofx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"

	"clipforge/pipeline-go/internal/utils"
)

// decodeSamples loads path as a mono waveform. WAV and MP3 decode natively;
// any other container is converted to WAV through ffmpeg first.
func decodeSamples(path string) ([]float64, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeFile(path, func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
			return wav.Decode(f)
		})
	case ".mp3":
		return decodeFile(path, func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
			return mp3.Decode(f)
		})
	default:
		converted, err := convertToWav(path)
		if err != nil {
			return nil, 0, err
		}
		defer os.Remove(converted)
		return decodeFile(converted, func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
			return wav.Decode(f)
		})
	}
}

func decodeFile(path string, decode func(*os.File) (beep.StreamSeekCloser, beep.Format, error)) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	streamer, format, err := decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	var samples []float64
	buf := make([][2]float64, 512)
	for {
		n, ok := streamer.Stream(buf)
		for _, frame := range buf[:n] {
			// Downmix to mono.
			samples = append(samples, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, 0, err
	}
	return samples, int(format.SampleRate), nil
}

func convertToWav(path string) (string, error) {
	out := filepath.Join(os.TempDir(), fmt.Sprintf("audiofx-%s.wav", utils.SHA256Bytes([]byte(path))[:12]))
	cmd := fmt.Sprintf(
		"ffmpeg -y -i %s -vn -acodec pcm_s16le -ac 1 %s",
		utils.ShellEscape(path),
		utils.ShellEscape(out),
	)
	if _, err := utils.RunCommand(cmd); err != nil {
		return "", fmt.Errorf("convert %s to wav: %w", path, err)
	}
	return out, nil
}
