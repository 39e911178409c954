package google

import (
	"context"
	"errors"
	"strings"
	"time"

	"srt2audio/internal/config"
	"srt2audio/internal/service/tts"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
)

const provider = tts.ServiceGoogle

type api interface {
	SynthesizeSpeech(ctx context.Context, req *ttspb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*ttspb.SynthesizeSpeechResponse, error)
}

// Client реализует синтез речи через Google Cloud Text-to-Speech.
// Один SDK-клиент (gRPC-соединение) разделяется всеми воркерами.
type Client struct {
	api    api
	close  func() error
	cfg    config.GoogleTTSConfig
	logger *zap.SugaredLogger
}

var _ tts.Synthesizer = (*Client)(nil)

func New(ctx context.Context, cfg config.GoogleTTSConfig, logger *zap.SugaredLogger) (*Client, error) {
	sdk, err := gctts.NewClient(ctx)
	if err != nil {
		return nil, tts.Fail(provider, err)
	}
	return &Client{api: sdk, close: sdk.Close, cfg: cfg, logger: logger}, nil
}

// Close закрывает соединение SDK.
func (c *Client) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// Synthesize выполняет запрос к Google TTS и возвращает MP3.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if err := tts.CheckText(provider, text); err != nil {
		return nil, err
	}
	req := c.request(text, voice)

	started := time.Now()
	resp, err := c.api.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, tts.Fail(provider, err)
	}
	if len(resp.GetAudioContent()) == 0 {
		return nil, tts.Fail(provider, errors.New("empty audio content in response"))
	}
	if c.logger != nil {
		c.logger.Debugw("Google TTS synthesize completed", "took", time.Since(started).String())
	}
	return resp.GetAudioContent(), nil
}

func (c *Client) request(text, voice string) *ttspb.SynthesizeSpeechRequest {
	// Определяем тип входа (text|ssml)
	var input *ttspb.SynthesisInput
	it := strings.ToLower(strings.TrimSpace(c.cfg.InputType))
	if it == "ssml" || (it == "" && tts.IsSSML(text)) {
		input = &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Ssml{Ssml: text}}
	} else {
		input = &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}}
	}

	if strings.TrimSpace(voice) == "" {
		voice = c.cfg.Voice
	}
	lang := c.cfg.Language
	// Имя голоса начинается с кода языка: en-GB-Wavenet-B
	if parts := strings.SplitN(voice, "-", 3); len(parts) == 3 {
		lang = parts[0] + "-" + parts[1]
	}

	audio := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  c.cfg.SpeakingRate,
		Pitch:         c.cfg.Pitch,
		VolumeGainDb:  c.cfg.VolumeGainDb,
	}
	if ep := strings.TrimSpace(c.cfg.EffectsProfileID); ep != "" {
		audio.EffectsProfileId = []string{ep}
	}

	return &ttspb.SynthesizeSpeechRequest{
		Input:       input,
		Voice:       &ttspb.VoiceSelectionParams{LanguageCode: lang, Name: voice},
		AudioConfig: audio,
	}
}
