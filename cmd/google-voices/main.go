package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"srt2audio/internal/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

const voicesURL = "https://texttospeech.googleapis.com/v1/voices"

type voice struct {
	Name                   string   `json:"name"`
	LanguageCodes          []string `json:"languageCodes"`
	SsmlGender             string   `json:"ssmlGender"`
	NaturalSampleRateHertz int      `json:"naturalSampleRateHertz"`
}

// Небольшая утилита: список голосов Google TTS для языка, чтобы подобрать -voice-id.
// Учётные данные — ADC, путь к cred-файлу можно задать в .env.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	lang := flag.String("language", cfg.GoogleTTS.Language, "код языка, напр. en-US; пусто — все голоса")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	// Установим GOOGLE_APPLICATION_CREDENTIALS из конфига, если не задано в окружении.
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" && cfg.GoogleTTS.CredentialsPath != "" {
		_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cfg.GoogleTTS.CredentialsPath)
	}

	ctx, cancel := context.WithTimeoutCause(context.Background(), 15*time.Second, errors.New("google tts voices request timeout"))
	defer cancel()

	hc, err := google.DefaultClient(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		sugar.Errorw("не удалось найти учётные данные Google (ADC)", "error", err)
		os.Exit(1)
	}

	voices, err := listVoices(ctx, hc, voicesURL, *lang)
	if err != nil {
		sugar.Errorw("Failed to list voices", "language", *lang, "error", err)
		os.Exit(1)
	}
	render(os.Stdout, voices)
}

func listVoices(ctx context.Context, hc *http.Client, endpoint, lang string) ([]voice, error) {
	u := endpoint
	if lang != "" {
		u += "?languageCode=" + url.QueryEscape(lang)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status=%d, body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var payload struct {
		Voices []voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	return payload.Voices, nil
}

func render(w io.Writer, voices []voice) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Voice", "Languages", "Gender", "Sample rate"})
	for _, v := range voices {
		tw.AppendRow(table.Row{v.Name, strings.Join(v.LanguageCodes, ", "), v.SsmlGender, v.NaturalSampleRateHertz})
	}
	tw.SortBy([]table.SortBy{{Name: "Voice", Mode: table.Asc}})
	tw.Render()
}
