package yandex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"srt2audio/internal/config"
	"srt2audio/internal/service/tts"
)

func TestSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Api-Key secret" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
			return
		}
		if r.PostForm.Get("text") != "Привет" || r.PostForm.Get("voice") != "jane" || r.PostForm.Get("format") != "mp3" {
			t.Errorf("form = %v", r.PostForm)
		}
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	c := New(srv.Client(), config.YandexTTSConfig{Endpoint: srv.URL, APIKey: "secret", Voice: "filipp"})
	data, err := c.Synthesize(context.Background(), "Привет", "jane")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(data) != "mp3" {
		t.Errorf("data = %q", data)
	}
}

func TestSynthesizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad voice", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.Client(), config.YandexTTSConfig{Endpoint: srv.URL, APIKey: "secret"})
	_, err := c.Synthesize(context.Background(), "hi", "nobody")
	var pe *tts.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Synthesize() error = %v, want ProviderError", err)
	}
	if !strings.Contains(err.Error(), "status=400") || !strings.Contains(err.Error(), "bad voice") {
		t.Errorf("error = %v", err)
	}
}

func TestSynthesizeNoKey(t *testing.T) {
	c := New(nil, config.YandexTTSConfig{})
	if _, err := c.Synthesize(context.Background(), "hi", "jane"); err == nil {
		t.Error("expected error without API key")
	}
}
