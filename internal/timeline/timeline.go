package timeline

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrMissingClip — для реплики нет клипа (синтез не удался или файл не найден).
var ErrMissingClip = errors.New("timeline: clip missing")

// Cue — реплика субтитров в том виде, в каком её видит сборщик: индекс, желаемый старт и текст.
type Cue struct {
	Index int
	Start time.Duration
	Text  string
}

// Clip — измеренные параметры отрендеренного аудио одной реплики.
type Clip struct {
	Index    int
	Duration time.Duration // по декодированным сэмплам, а не по запросу
	Bitrate  int           // бит/с, 0 — измерить не удалось
}

// ClipSource отдаёт клип по индексу реплики.
type ClipSource interface {
	Clip(index int) (Clip, error)
}

// Track — накапливаемый аудиосигнал. Реализация владеет самими сэмплами.
type Track interface {
	AppendSilence(d time.Duration) error
	AppendClip(index int) error
}

// FatalAssemblyError прерывает сборку целиком, ничего не экспортируется.
type FatalAssemblyError struct {
	Reason string
	Err    error
}

func (e *FatalAssemblyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("timeline: %s: %v", e.Reason, e.Err)
	}
	return "timeline: " + e.Reason
}

func (e *FatalAssemblyError) Unwrap() error { return e.Err }

// TimingWarning — реплика не влезла: её старт раньше конца предыдущего клипа.
type TimingWarning struct {
	Index     int
	Text      string
	Intended  time.Duration
	Effective time.Duration
}

func (w TimingWarning) String() string {
	return fmt.Sprintf("subtitle %d (%q) wasn't able to fit, inserted at %s instead of %s",
		w.Index, w.Text, w.Effective, w.Intended)
}

// Placement — где фактически оказался клип.
type Placement struct {
	Index    int
	Intended time.Duration
	Start    time.Duration
	Gap      time.Duration // тишина, вставленная перед клипом
	Duration time.Duration
	Clamped  bool
}

// End возвращает конец клипа на таймлайне.
func (p Placement) End() time.Duration { return p.Start + p.Duration }

// Skip — реплика, пропущенная из-за отсутствующего клипа.
type Skip struct {
	Index int
	Err   error
}

// Result — итог сборки.
type Result struct {
	Bitrate    int
	Cursor     time.Duration
	Placements []Placement
	Warnings   []TimingWarning
	Skipped    []Skip
}

// Assembler раскладывает клипы на таймлайн за один последовательный проход.
type Assembler struct {
	logger *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) *Assembler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Assembler{logger: logger}
}

// Assemble укладывает клипы реплик в порядке следования cues.
//
// Клип никогда не ставится раньше курсора: если желаемый старт уже пройден,
// клип встаёт сразу за предыдущим и фиксируется TimingWarning. Иначе разрыв
// до старта заполняется тишиной. Реплика без клипа пропускается, курсор не
// двигается. Битрейт экспорта берётся у клипа первой реплики; если его нет,
// возвращается FatalAssemblyError.
func (a *Assembler) Assemble(cues []Cue, src ClipSource, track Track) (*Result, error) {
	if len(cues) == 0 {
		return nil, &FatalAssemblyError{Reason: "no cues to assemble"}
	}

	first, err := src.Clip(cues[0].Index)
	if err != nil {
		return nil, &FatalAssemblyError{
			Reason: fmt.Sprintf("no clip for first subtitle %d, cannot determine export bitrate", cues[0].Index),
			Err:    err,
		}
	}
	if first.Bitrate <= 0 {
		return nil, &FatalAssemblyError{
			Reason: fmt.Sprintf("bitrate of first subtitle %d is unknown", cues[0].Index),
		}
	}

	res := &Result{
		Bitrate:    first.Bitrate,
		Placements: make([]Placement, 0, len(cues)),
	}

	for i, cue := range cues {
		clip := first
		if i > 0 {
			clip, err = src.Clip(cue.Index)
			if err != nil {
				a.logger.Warnw("Subtitle skipped, clip unavailable", "index", cue.Index, "error", err)
				res.Skipped = append(res.Skipped, Skip{Index: cue.Index, Err: err})
				continue
			}
		}

		p := Placement{Index: cue.Index, Intended: cue.Start, Start: cue.Start, Duration: clip.Duration}
		if res.Cursor > cue.Start {
			p.Start = res.Cursor
			p.Clamped = true
			w := TimingWarning{Index: cue.Index, Text: cue.Text, Intended: cue.Start, Effective: res.Cursor}
			res.Warnings = append(res.Warnings, w)
			a.logger.Warnw("Subtitle wasn't able to fit, consider editing the subtitle file",
				"index", w.Index, "text", w.Text, "intended", w.Intended, "effective", w.Effective)
		} else if gap := cue.Start - res.Cursor; gap > 0 {
			if err := track.AppendSilence(gap); err != nil {
				return nil, fmt.Errorf("timeline: silence before subtitle %d: %w", cue.Index, err)
			}
			p.Gap = gap
		}

		if err := track.AppendClip(cue.Index); err != nil {
			return nil, fmt.Errorf("timeline: place subtitle %d: %w", cue.Index, err)
		}
		res.Cursor = p.End()
		res.Placements = append(res.Placements, p)
	}

	return res, nil
}
