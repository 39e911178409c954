package polly

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"srt2audio/internal/config"
	"srt2audio/internal/service/tts"

	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
)

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type fakeAPI struct {
	in   *polly.SynthesizeSpeechInput
	body *trackedBody
	err  error
}

func (f *fakeAPI) SynthesizeSpeech(_ context.Context, in *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &polly.SynthesizeSpeechOutput{AudioStream: f.body}, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSynthesize(t *testing.T) {
	body := &trackedBody{Reader: strings.NewReader("ID3mp3")}
	api := &fakeAPI{body: body}
	c := newClient(api, config.PollyConfig{Engine: "neural"}, nil)

	data, err := c.Synthesize(context.Background(), "Hello world!", "Matthew")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(data) != "ID3mp3" {
		t.Errorf("data = %q", data)
	}
	if !body.closed {
		t.Error("audio stream was not closed")
	}
	if api.in.OutputFormat != types.OutputFormatMp3 || api.in.Engine != types.EngineNeural || api.in.VoiceId != "Matthew" {
		t.Errorf("request = %+v", api.in)
	}
	if api.in.TextType != "" {
		t.Errorf("TextType = %q, want default text", api.in.TextType)
	}
}

func TestSynthesizeSSML(t *testing.T) {
	api := &fakeAPI{body: &trackedBody{Reader: strings.NewReader("x")}}
	c := newClient(api, config.PollyConfig{}, nil)
	if _, err := c.Synthesize(context.Background(), "<speak>Hi</speak>", "Joanna"); err != nil {
		t.Fatal(err)
	}
	if api.in.TextType != types.TextTypeSsml {
		t.Errorf("TextType = %q, want ssml", api.in.TextType)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		api   *fakeAPI
		text  string
		voice string
	}{
		{name: "empty text", api: &fakeAPI{}, text: " ", voice: "Matthew"},
		{name: "empty voice", api: &fakeAPI{}, text: "hi"},
		{name: "request fails", api: &fakeAPI{err: errors.New("ThrottlingException")}, text: "hi", voice: "Matthew"},
		{name: "stream fails", api: &fakeAPI{body: &trackedBody{Reader: failingReader{}}}, text: "hi", voice: "Matthew"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(tt.api, config.PollyConfig{}, nil)
			_, err := c.Synthesize(context.Background(), tt.text, tt.voice)
			var pe *tts.ProviderError
			if !errors.As(err, &pe) || pe.Provider != "polly" {
				t.Fatalf("Synthesize() error = %v, want polly ProviderError", err)
			}
			if tt.api.body != nil && !tt.api.body.closed {
				t.Error("audio stream was not closed on failure")
			}
		})
	}
}
