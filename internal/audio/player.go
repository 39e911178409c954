package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Player проигрывает готовый файл через системный вывод звука.
type Player struct{ volumeDB float64 }

// NewPlayer создаёт плеер с громкостью в dB (0 — без изменений, отрицательные — тише).
func NewPlayer(volumeDB float64) *Player { return &Player{volumeDB: volumeDB} }

// PlayFile блокируется до конца воспроизведения или отмены ctx.
func (p *Player) PlayFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "mp3":
		streamer, format, err = mp3.Decode(f)
	case "wav":
		streamer, format, err = wav.Decode(f)
	default:
		return fmt.Errorf("%w for direct playback: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return err
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	vol := &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   p.volumeDB,
		Silent:   false,
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() { close(done) })))
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return context.Cause(ctx)
	}
}
