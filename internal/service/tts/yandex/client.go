package yandex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"srt2audio/internal/config"
	"srt2audio/internal/service/tts"
)

const provider = tts.ServiceYandex

const defaultEndpoint = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"

// Client реализует синтез речи через Yandex SpeechKit REST v1 (mp3).
type Client struct {
	http     *http.Client
	endpoint string
	cfg      config.YandexTTSConfig
}

var _ tts.Synthesizer = (*Client)(nil)

func New(hc *http.Client, cfg config.YandexTTSConfig) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{http: hc, endpoint: endpoint, cfg: cfg}
}

// Synthesize выполняет запрос к Yandex TTS и возвращает mp3.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if err := tts.CheckText(provider, text); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, tts.Fail(provider, fmt.Errorf("empty API key (set YC_TTS_API_KEY in .env/ENV or pass via flag)"))
	}
	if strings.TrimSpace(voice) == "" {
		voice = c.cfg.Voice
	}

	form := url.Values{}
	if tts.IsSSML(text) {
		form.Set("ssml", text)
	} else {
		form.Set("text", text)
	}
	form.Set("voice", voice)
	form.Set("format", "mp3")
	if c.cfg.Lang != "" {
		form.Set("lang", c.cfg.Lang)
	}
	if c.cfg.Speed != "" {
		form.Set("speed", c.cfg.Speed)
	}
	if c.cfg.Emotion != "" {
		form.Set("emotion", strings.ToLower(c.cfg.Emotion))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, tts.Fail(provider, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, tts.Fail(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(b) == 0 {
			b = []byte(resp.Status)
		}
		return nil, tts.Fail(provider, fmt.Errorf("status=%d, body=%s", resp.StatusCode, bytes.TrimSpace(b)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.Fail(provider, fmt.Errorf("read body: %w", err))
	}
	return data, nil
}
