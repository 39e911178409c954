package audio

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// DefaultSampleRate — частота, к которой приводятся клипы и тишина при склейке.
const DefaultSampleRate beep.SampleRate = 24000

// resampleQuality — качество beep.Resample (1..6); 4 достаточно для речи.
const resampleQuality = 4

var ErrUnsupportedFormat = errors.New("audio: unsupported format, use mp3 or wav")

// Codec декодирует клипы в общий формат буфера таймлайна.
type Codec struct {
	format beep.Format
}

func NewCodec(sampleRate int) *Codec {
	sr := beep.SampleRate(sampleRate)
	if sr <= 0 {
		sr = DefaultSampleRate
	}
	return &Codec{format: beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}}
}

func (c *Codec) Format() beep.Format { return c.format }

// Duration переводит число сэмплов буфера во время.
func (c *Codec) Duration(samples int) time.Duration { return c.format.SampleRate.D(samples) }

// Decode читает mp3 или wav целиком и возвращает буфер в частоте кодека.
// r закрывается в любом случае.
func (c *Codec) Decode(r io.ReadCloser, ext string) (*beep.Buffer, error) {
	defer r.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "mp3":
		streamer, format, err = mp3.Decode(r)
	case "wav":
		streamer, format, err = wav.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", ext, err)
	}
	defer streamer.Close()

	return c.Buffer(streamer, format), nil
}

// Buffer вычитывает s в новый буфер, пересэмплируя при расхождении частот.
func (c *Codec) Buffer(s beep.Streamer, from beep.Format) *beep.Buffer {
	buf := beep.NewBuffer(c.format)
	if from.SampleRate != c.format.SampleRate {
		s = beep.Resample(resampleQuality, from.SampleRate, c.format.SampleRate, s)
	}
	buf.Append(s)
	return buf
}
