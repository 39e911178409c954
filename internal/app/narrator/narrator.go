package narrator

import (
	"context"
	"fmt"
	"io"
	"time"

	"srt2audio/internal/service/clipstore"
	"srt2audio/internal/service/synthesis"
	"srt2audio/internal/subtitle"
	"srt2audio/internal/timeline"

	"go.uber.org/zap"
)

// ExportFunc сохраняет собранный трек в path с битрейтом первого клипа.
type ExportFunc func(ctx context.Context, path string, bitrate int) error

// PlayFunc проигрывает готовый файл.
type PlayFunc func(ctx context.Context, path string) error

// Options параметры одного прогона.
type Options struct {
	InputFile  string
	OutputPath string
	KeepClips  bool
}

// Deps — собранные в main компоненты пайплайна.
type Deps struct {
	Stage   *synthesis.Stage
	Store   *clipstore.Store
	Source  timeline.ClipSource
	Track   timeline.Track
	Export  ExportFunc
	Cleaner *clipstore.Cleaner
	Play    PlayFunc // nil — не проигрывать
	Report  io.Writer
	Logger  *zap.SugaredLogger
}

// Summary — всё, что известно после прогона.
type Summary struct {
	Cues      []subtitle.Cue
	Synthesis *synthesis.Report
	Timeline  *timeline.Result
	Output    string
}

type Narrator struct {
	opts Options
	deps Deps
}

func New(opts Options, deps Deps) *Narrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	if deps.Cleaner == nil {
		deps.Cleaner = clipstore.NewCleaner(deps.Logger)
	}
	return &Narrator{opts: opts, deps: deps}
}

// Run — субтитры → синтез всех реплик → сборка таймлайна → экспорт.
// Сборка начинается только после того, как стадия синтеза записала все клипы.
// Прерывают прогон только ErrNothingSynthesized и FatalAssemblyError (и ошибки ввода/экспорта);
// ошибки отдельных реплик попадают в отчёт.
func (n *Narrator) Run(ctx context.Context) (*Summary, error) {
	log := n.deps.Logger
	started := time.Now()

	cues, err := subtitle.Load(n.opts.InputFile)
	if err != nil {
		return nil, err
	}
	log.Infow("Subtitles loaded", "path", n.opts.InputFile, "cues", len(cues))
	sum := &Summary{Cues: cues, Output: n.opts.OutputPath}

	sum.Synthesis = n.deps.Stage.Run(ctx, cues)
	for _, f := range sum.Synthesis.Failed() {
		log.Errorw("Subtitle not synthesized", "index", f.Index, "error", f.Err)
	}
	if err := sum.Synthesis.Err(); err != nil {
		return sum, err
	}
	if err := context.Cause(ctx); err != nil {
		return sum, err
	}

	sum.Timeline, err = timeline.New(log).Assemble(timelineCues(cues), n.deps.Source, n.deps.Track)
	if err != nil {
		return sum, err
	}

	if err := n.deps.Export(ctx, n.opts.OutputPath, sum.Timeline.Bitrate); err != nil {
		return sum, fmt.Errorf("export: %w", err)
	}
	log.Infow("Narration ready",
		"path", n.opts.OutputPath,
		"duration", sum.Timeline.Cursor.String(),
		"bitrate", sum.Timeline.Bitrate,
		"warnings", len(sum.Timeline.Warnings),
		"skipped", len(sum.Timeline.Skipped),
		"took", time.Since(started).String(),
	)

	if n.deps.Report != nil {
		WriteReport(n.deps.Report, sum)
	}

	indices := make([]int, len(cues))
	for i, c := range cues {
		indices[i] = c.Index
	}
	n.deps.Cleaner.Clean(n.deps.Store, indices, n.opts.KeepClips)

	if n.deps.Play != nil {
		if err := n.deps.Play(ctx, n.opts.OutputPath); err != nil {
			log.Warnw("Playback failed", "path", n.opts.OutputPath, "error", err)
		}
	}
	return sum, nil
}

func timelineCues(cues []subtitle.Cue) []timeline.Cue {
	out := make([]timeline.Cue, len(cues))
	for i, c := range cues {
		out[i] = timeline.Cue{Index: c.Index, Start: c.Start, Text: c.Text}
	}
	return out
}
