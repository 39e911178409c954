package audio

import (
	"fmt"
	"io"

	"srt2audio/internal/timeline"

	"github.com/faiface/beep"
	"go.uber.org/zap"
)

// ClipReader — хранилище клипов по индексу реплики.
type ClipReader interface {
	Open(index int) (io.ReadCloser, error)
	Path(index int) string
	Ext() string
}

// Library отдаёт сборщику клипы из хранилища: декодирует, меряет длительность и битрейт
// и держит декодированный буфер до того, как трек его заберёт.
type Library struct {
	store   ClipReader
	codec   *Codec
	prober  Prober
	logger  *zap.SugaredLogger
	decoded map[int]*beep.Buffer
}

var _ timeline.ClipSource = (*Library)(nil)

func NewLibrary(store ClipReader, codec *Codec, prober Prober, logger *zap.SugaredLogger) *Library {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Library{store: store, codec: codec, prober: prober, logger: logger, decoded: make(map[int]*beep.Buffer)}
}

// Clip декодирует клип реплики. Недоступный битрейт не ошибка: он нужен только у первого
// клипа, и это решает сборщик.
func (l *Library) Clip(index int) (timeline.Clip, error) {
	rc, err := l.store.Open(index)
	if err != nil {
		return timeline.Clip{}, fmt.Errorf("%w: %w", timeline.ErrMissingClip, err)
	}
	buf, err := l.codec.Decode(rc, l.store.Ext())
	if err != nil {
		return timeline.Clip{}, fmt.Errorf("clip %d: %w", index, err)
	}

	bitrate := 0
	if l.prober != nil {
		br, perr := l.prober.Bitrate(l.store.Path(index))
		if perr != nil {
			l.logger.Warnw("Clip bitrate unknown", "index", index, "error", perr)
		} else {
			bitrate = br
		}
	}

	l.decoded[index] = buf
	return timeline.Clip{Index: index, Duration: l.codec.Duration(buf.Len()), Bitrate: bitrate}, nil
}

// take отдаёт декодированный буфер ровно один раз.
func (l *Library) take(index int) (*beep.Buffer, bool) {
	buf, ok := l.decoded[index]
	delete(l.decoded, index)
	return buf, ok
}
