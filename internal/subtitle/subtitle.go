package subtitle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
)

// ErrNoCues — в файле субтитров нет ни одной реплики.
var ErrNoCues = errors.New("subtitle: no cues")

// Cue — одна реплика субтитров.
type Cue struct {
	Index int           // 1..N в порядке следования в файле
	Start time.Duration // смещение от начала, как в файле (монотонность не гарантируется)
	End   time.Duration
	Text  string
}

// Load читает файл субтитров (srt, vtt, ssa/ass, stl — по расширению) и возвращает реплики
// в порядке файла. Индексы перенумеровываются с 1, строки реплики склеиваются через перевод строки.
func Load(path string) ([]Cue, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("subtitle: open %s: %w", path, err)
	}
	cues := FromItems(subs.Items)
	if len(cues) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCues, path)
	}
	return cues, nil
}

// FromItems переводит элементы astisub в реплики. Порядок и тайминги не трогаем:
// кривые файлы с наложениями разбирает сборщик таймлайна.
func FromItems(items []*astisub.Item) []Cue {
	cues := make([]Cue, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		lines := make([]string, 0, len(it.Lines))
		for _, l := range it.Lines {
			lines = append(lines, strings.TrimSpace(l.String()))
		}
		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: it.StartAt,
			End:   it.EndAt,
			Text:  strings.Join(lines, "\n"),
		})
	}
	return cues
}
