package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// Exporter сохраняет буфер таймлайна в итоговый файл.
// wav пишется напрямую, остальные форматы кодирует ffmpeg с заданным битрейтом.
type Exporter struct {
	logger *zap.SugaredLogger
}

func NewExporter(logger *zap.SugaredLogger) *Exporter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Exporter{logger: logger}
}

// codecs — кодек ffmpeg по расширению итогового файла.
var codecs = map[string]string{
	"mp3":  "libmp3lame",
	"m4a":  "aac",
	"aac":  "aac",
	"ogg":  "libvorbis",
	"opus": "libopus",
}

// Export пишет buf в path. bitrate — бит/с, игнорируется для wav.
func (e *Exporter) Export(ctx context.Context, buf *beep.Buffer, path string, bitrate int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "wav" {
		return writeWAV(buf, path)
	}
	codec, ok := codecs[ext]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if bitrate <= 0 {
		return fmt.Errorf("audio: export %s: bitrate must be positive, got %d", path, bitrate)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".srt2audio-*.wav")
	if err != nil {
		return fmt.Errorf("audio: export temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if err := writeWAV(buf, tmpPath); err != nil {
		return err
	}

	err = ffmpeg.Input(tmpPath).
		Output(path, ffmpeg.KwArgs{
			"c:a": codec,
			"b:a": strconv.Itoa(bitrate),
			"ar":  int(buf.Format().SampleRate),
		}).
		OverWriteOutput().
		Silent(true).
		Run()
	if err != nil {
		return fmt.Errorf("audio: ffmpeg encode %s: %w", path, err)
	}
	e.logger.Infow("Audio exported", "path", path, "bitrate", bitrate, "duration", buf.Format().SampleRate.D(buf.Len()).String())
	return nil
}

func writeWAV(buf *beep.Buffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: create %s: %w", path, err)
	}
	if err := wav.Encode(f, buf.Streamer(0, buf.Len()), buf.Format()); err != nil {
		_ = f.Close()
		return fmt.Errorf("audio: encode wav %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("audio: sync %s: %w", path, err)
	}
	return f.Close()
}
