package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"srt2audio/internal/app/narrator"
	"srt2audio/internal/audio"
	"srt2audio/internal/config"
	"srt2audio/internal/service/clipstore"
	"srt2audio/internal/service/synthesis"
	"srt2audio/internal/service/tts"
	"srt2audio/internal/service/tts/gemini"
	"srt2audio/internal/service/tts/google"
	"srt2audio/internal/service/tts/polly"
	"srt2audio/internal/service/tts/yandex"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}

	logger, err := newLogger(cfg.DebugMode)
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	sugar.Infow("Starting srt2audio",
		"input", cfg.InputFile,
		"service", cfg.TTSService,
		"voice", cfg.Voice(),
		"workers", cfg.SynthWorkers,
		"DebugMode", cfg.DebugMode,
	)

	// Ctrl+C / SIGTERM отменяют запросы синтеза и экспорт
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	synth, closeSynth, err := newSynthesizer(ctx, cfg, sugar)
	if err != nil {
		sugar.Errorw("Failed to init tts client", "service", cfg.TTSService, "error", err)
		return 1
	}
	defer closeSynth()

	store, err := clipstore.New(cfg.OutputDir, "mp3")
	if err != nil {
		sugar.Errorw("Failed to prepare output dir", "dir", cfg.OutputDir, "error", err)
		return 1
	}

	codec := audio.NewCodec(cfg.SampleRate)
	lib := audio.NewLibrary(store, codec, audio.FFProbe{}, sugar)
	track := audio.NewTrack(codec, lib)
	exporter := audio.NewExporter(sugar)

	deps := narrator.Deps{
		Stage: synthesis.New(synth, store, synthesis.Options{
			Voice:        cfg.Voice(),
			Workers:      cfg.SynthWorkers,
			Timeout:      cfg.SynthTimeout,
			SkipExisting: cfg.Resume,
		}, sugar),
		Store:  store,
		Source: lib,
		Track:  track,
		Export: func(ctx context.Context, path string, bitrate int) error {
			return exporter.Export(ctx, track.Buffer(), path, bitrate)
		},
		Cleaner: clipstore.NewCleaner(sugar),
		Report:  os.Stdout,
		Logger:  sugar,
	}
	if cfg.Play {
		deps.Play = audio.NewPlayer(0).PlayFile
	}

	n := narrator.New(narrator.Options{
		InputFile:  cfg.InputFile,
		OutputPath: filepath.Join(cfg.OutputDir, cfg.OutputFile),
		KeepClips:  cfg.KeepClips,
	}, deps)

	if _, err := n.Run(ctx); err != nil {
		sugar.Errorw("Narration aborted", "error", err)
		return 1
	}
	return 0
}

// newLogger: в терминале или в режиме дебага — человекочитаемый лог, иначе JSON.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug || isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newSynthesizer выбирает провайдера TTS по cfg.TTSService.
func newSynthesizer(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (tts.Synthesizer, func(), error) {
	noop := func() {}
	switch cfg.TTSService {
	case tts.ServicePolly:
		c, err := polly.New(ctx, cfg.Polly, logger)
		return c, noop, err
	case tts.ServiceGoogle:
		c, err := google.New(ctx, cfg.GoogleTTS, logger)
		if err != nil {
			return nil, noop, err
		}
		return c, func() {
			if err := c.Close(); err != nil {
				logger.Warnw("Failed to close google tts client", "error", err)
			}
		}, nil
	case tts.ServiceGemini:
		c, err := gemini.New(ctx, cfg.GeminiTTS, logger)
		return c, noop, err
	case tts.ServiceYandex:
		return yandex.New(&http.Client{Timeout: cfg.SynthTimeout}, cfg.YandexTTS), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown tts service %q", cfg.TTSService)
	}
}
