package polly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"srt2audio/internal/config"
	"srt2audio/internal/service/tts"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"go.uber.org/zap"
)

const provider = tts.ServicePolly

// api — часть клиента Polly, которой мы пользуемся. Нужна для подмены в тестах.
type api interface {
	SynthesizeSpeech(ctx context.Context, in *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Client реализует синтез речи через AWS Polly (MP3).
type Client struct {
	api    api
	engine types.Engine
	logger *zap.SugaredLogger
}

var _ tts.Synthesizer = (*Client)(nil)

// New создаёт клиента по стандартной цепочке учётных данных AWS.
func New(ctx context.Context, cfg config.PollyConfig, logger *zap.SugaredLogger) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if r := strings.TrimSpace(cfg.Region); r != "" {
		opts = append(opts, awsconfig.WithRegion(r))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("polly tts: load aws config: %w", err)
	}
	return newClient(polly.NewFromConfig(awsCfg), cfg, logger), nil
}

func newClient(a api, cfg config.PollyConfig, logger *zap.SugaredLogger) *Client {
	engine := types.Engine(strings.ToLower(strings.TrimSpace(cfg.Engine)))
	if engine == "" {
		engine = types.EngineNeural
	}
	return &Client{api: a, engine: engine, logger: logger}
}

// Synthesize запрашивает речь и читает AudioStream целиком. Поток закрывается в любом случае:
// Polly ограничивает число параллельных соединений.
func (c *Client) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if err := tts.CheckText(provider, text); err != nil {
		return nil, err
	}
	if strings.TrimSpace(voice) == "" {
		return nil, tts.Fail(provider, errors.New("empty voice id"))
	}

	in := &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: types.OutputFormatMp3,
		Engine:       c.engine,
		VoiceId:      types.VoiceId(voice),
	}
	if tts.IsSSML(text) {
		in.TextType = types.TextTypeSsml
	}

	started := time.Now()
	out, err := c.api.SynthesizeSpeech(ctx, in)
	if err != nil {
		return nil, tts.Fail(provider, err)
	}
	if out.AudioStream == nil {
		return nil, tts.Fail(provider, errors.New("response has no audio stream"))
	}
	defer out.AudioStream.Close()

	data, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, tts.Fail(provider, fmt.Errorf("read audio stream: %w", err))
	}
	if c.logger != nil {
		c.logger.Debugw("Polly synthesize completed", "took", time.Since(started).String(), "bytes", len(data))
	}
	return data, nil
}
