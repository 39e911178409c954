package audio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober измеряет битрейт закодированного файла.
type Prober interface {
	Bitrate(path string) (int, error)
}

type probeData struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

// FFProbe читает format.bit_rate через ffprobe.
type FFProbe struct{}

func (FFProbe) Bitrate(path string) (int, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseBitrate(out)
}

func parseBitrate(out string) (int, error) {
	var pd probeData
	if err := json.Unmarshal([]byte(out), &pd); err != nil {
		return 0, fmt.Errorf("ffprobe: decode output: %w", err)
	}
	raw := strings.TrimSpace(pd.Format.BitRate)
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("ffprobe: no bit_rate for %s", pd.Format.FormatName)
	}
	br, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: bit_rate %q: %w", raw, err)
	}
	if br <= 0 {
		return 0, fmt.Errorf("ffprobe: bit_rate %q is not positive", raw)
	}
	return int(br), nil
}
