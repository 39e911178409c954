package audio

import (
	"fmt"
	"time"

	"srt2audio/internal/timeline"

	"github.com/faiface/beep"
)

// Track — аудиобуфер таймлайна в формате кодека.
type Track struct {
	buf *beep.Buffer
	lib *Library
}

var _ timeline.Track = (*Track)(nil)

func NewTrack(codec *Codec, lib *Library) *Track {
	return &Track{buf: beep.NewBuffer(codec.Format()), lib: lib}
}

// AppendSilence дописывает тишину длительностью d.
func (t *Track) AppendSilence(d time.Duration) error {
	if n := t.buf.Format().SampleRate.N(d); n > 0 {
		t.buf.Append(beep.Silence(n))
	}
	return nil
}

// AppendClip дописывает клип, ранее выданный библиотекой через Clip.
func (t *Track) AppendClip(index int) error {
	clip, ok := t.lib.take(index)
	if !ok {
		return fmt.Errorf("%w: subtitle %d was not decoded", timeline.ErrMissingClip, index)
	}
	t.buf.Append(clip.Streamer(0, clip.Len()))
	return nil
}

// Len — длительность накопленного сигнала.
func (t *Track) Len() time.Duration { return t.buf.Format().SampleRate.D(t.buf.Len()) }

func (t *Track) Buffer() *beep.Buffer { return t.buf }
