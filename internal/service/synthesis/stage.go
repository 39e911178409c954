package synthesis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"srt2audio/internal/service/tts"
	"srt2audio/internal/subtitle"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNothingSynthesized — ни одна реплика не синтезирована, собирать нечего.
var ErrNothingSynthesized = errors.New("synthesis: no cue was synthesized")

var errTimeout = errors.New("synthesis request timeout")

// ClipWriter — хранилище клипов по индексу реплики.
type ClipWriter interface {
	Save(index int, data []byte) error
	Has(index int) bool
	Path(index int) string
}

// Options настройки стадии синтеза.
type Options struct {
	Voice        string
	Workers      int           // одновременных запросов к провайдеру
	Timeout      time.Duration // на один запрос
	SkipExisting bool          // не запрашивать клипы, которые уже лежат в хранилище
}

// Result — итог синтеза одной реплики.
type Result struct {
	Index  int
	Path   string
	Reused bool // клип уже был в хранилище
	Took   time.Duration
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// Report — результаты по всем репликам в порядке индексов.
type Report struct {
	Results []Result
}

func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Err возвращает ErrNothingSynthesized, если не удалось получить ни одного клипа.
func (r *Report) Err() error {
	if len(r.Results) > 0 && r.Succeeded() == 0 {
		return fmt.Errorf("%w (%d failed)", ErrNothingSynthesized, len(r.Results))
	}
	if len(r.Results) == 0 {
		return ErrNothingSynthesized
	}
	return nil
}

// Stage запрашивает синтез для каждой реплики и сохраняет клипы по индексу.
type Stage struct {
	synth  tts.Synthesizer
	store  ClipWriter
	opts   Options
	logger *zap.SugaredLogger
}

func New(synth tts.Synthesizer, store ClipWriter, opts Options, logger *zap.SugaredLogger) *Stage {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Stage{synth: synth, store: store, opts: opts, logger: logger}
}

// Run синтезирует все реплики пулом из opts.Workers воркеров и возвращается,
// только когда все записи клипов завершены. Ошибка одной реплики не прерывает пакет:
// она попадает в Report и в лог. Повторов нет.
func (s *Stage) Run(ctx context.Context, cues []subtitle.Cue) *Report {
	results := make([]Result, len(cues))

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, cue := range cues {
		results[i] = Result{Index: cue.Index, Path: s.store.Path(cue.Index)}

		if s.opts.SkipExisting && s.store.Has(cue.Index) {
			results[i].Reused = true
			s.logger.Debugw("Clip exists, synthesis skipped", "index", cue.Index)
			continue
		}
		if err := context.Cause(ctx); err != nil {
			results[i].Err = tts.Fail("synthesis", err)
			continue
		}

		i, cue := i, cue
		g.Go(func() error {
			s.logger.Infow("Requesting synthesis", "index", cue.Index, "total", len(cues))
			started := time.Now()
			err := s.one(ctx, cue)
			results[i].Took = time.Since(started)
			if err != nil {
				results[i].Err = err
				s.logger.Warnw("Synthesis failed", "index", cue.Index, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(a, b int) bool { return results[a].Index < results[b].Index })
	rep := &Report{Results: results}
	s.logger.Infow("Synthesis finished", "succeeded", rep.Succeeded(), "failed", len(rep.Failed()))
	return rep
}

func (s *Stage) one(ctx context.Context, cue subtitle.Cue) error {
	reqCtx, cancel := context.WithTimeoutCause(ctx, s.opts.Timeout, errTimeout)
	defer cancel()

	data, err := s.synth.Synthesize(reqCtx, cue.Text, s.opts.Voice)
	if err != nil {
		if cause := context.Cause(reqCtx); errors.Is(cause, errTimeout) {
			err = fmt.Errorf("%w after %s: %w", errTimeout, s.opts.Timeout, err)
		}
		return tts.Fail("synthesis", err)
	}
	if len(data) == 0 {
		return tts.Fail("synthesis", errors.New("provider returned no audio"))
	}
	return s.store.Save(cue.Index, data)
}
