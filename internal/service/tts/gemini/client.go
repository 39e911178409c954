package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"srt2audio/internal/config"
	"srt2audio/internal/service/tts"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
)

const provider = tts.ServiceGemini

// По умолчанию используем Cloud TTS v1beta1 text:synthesize, совместимый с Generative AI TTS.
const defaultEndpoint = "https://texttospeech.googleapis.com/v1beta1/text:synthesize"

// Client реализует синтез речи через Cloud Text-to-Speech: Gemini-TTS.
type Client struct {
	http     *http.Client
	endpoint string
	cfg      config.GeminiTTSConfig
	logger   *zap.SugaredLogger
}

var _ tts.Synthesizer = (*Client)(nil)

// New создаёт OAuth2 HTTP-клиента только через ADC/metadata. API Key не используется.
func New(ctx context.Context, cfg config.GeminiTTSConfig, logger *zap.SugaredLogger) (*Client, error) {
	hc, err := google.DefaultClient(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, tts.Fail(provider, errors.New("ADC credentials not found. Set GOOGLE_APPLICATION_CREDENTIALS to a service account JSON or run in GCE/GKE with default credentials"))
	}
	return NewWithHTTPClient(hc, cfg, logger), nil
}

// NewWithHTTPClient — клиент поверх готового http.Client (авторизация на стороне вызывающего).
func NewWithHTTPClient(hc *http.Client, cfg config.GeminiTTSConfig, logger *zap.SugaredLogger) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{http: hc, endpoint: endpoint, cfg: cfg, logger: logger}
}

// requestPayload — структура, покрывающая input.prompt и voice.model_name.
type requestPayload struct {
	Input struct {
		Prompt string `json:"prompt,omitempty"`
		Text   string `json:"text,omitempty"`
		Ssml   string `json:"ssml,omitempty"`
	} `json:"input"`
	Voice struct {
		ModelName    string `json:"modelName,omitempty"`
		LanguageCode string `json:"languageCode,omitempty"`
		VoiceName    string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding,omitempty"`
		SpeakingRate  float64 `json:"speakingRate,omitempty"`
		Pitch         float64 `json:"pitch,omitempty"`
		VolumeGainDb  float64 `json:"volumeGainDb,omitempty"`
	} `json:"audioConfig"`
}

type jsonAudioResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize выполняет запрос к Gemini-TTS и возвращает MP3.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if err := tts.CheckText(provider, text); err != nil {
		return nil, err
	}

	var rp requestPayload
	switch strings.ToLower(strings.TrimSpace(c.cfg.InputType)) {
	case "ssml":
		rp.Input.Ssml = text
	default:
		rp.Input.Text = text
	}
	if p := strings.TrimSpace(c.cfg.Prompt); p != "" {
		rp.Input.Prompt = p
	}
	if strings.TrimSpace(voice) == "" {
		voice = c.cfg.VoiceName
	}
	rp.Voice.ModelName = strings.TrimSpace(c.cfg.ModelName)
	rp.Voice.LanguageCode = strings.TrimSpace(c.cfg.Language)
	rp.Voice.VoiceName = strings.TrimSpace(voice)
	rp.AudioConfig.AudioEncoding = "MP3"
	rp.AudioConfig.SpeakingRate = c.cfg.SpeakingRate
	rp.AudioConfig.Pitch = c.cfg.Pitch
	rp.AudioConfig.VolumeGainDb = c.cfg.VolumeGainDb

	body, err := json.Marshal(&rp)
	if err != nil {
		return nil, tts.Fail(provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, tts.Fail(provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, tts.Fail(provider, err)
	}
	defer resp.Body.Close()

	if c.logger != nil {
		c.logger.Debugw("Gemini TTS request completed", "status", resp.StatusCode, "took", time.Since(started).String())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return nil, tts.Fail(provider, fmt.Errorf("status=%d, body=%s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	var jr jsonAudioResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, 20<<20))
	if err := dec.Decode(&jr); err != nil {
		return nil, tts.Fail(provider, fmt.Errorf("decode json response: %w", err))
	}
	if strings.TrimSpace(jr.AudioContent) == "" {
		return nil, tts.Fail(provider, errors.New("empty audioContent in response"))
	}
	data, err := base64.StdEncoding.DecodeString(jr.AudioContent)
	if err != nil {
		return nil, tts.Fail(provider, fmt.Errorf("base64 decode: %w", err))
	}
	return data, nil
}
