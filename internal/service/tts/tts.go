package tts

import (
	"context"
	"errors"
	"strings"
)

// Провайдеры синтеза.
const (
	ServicePolly  = "polly"
	ServiceGoogle = "google"
	ServiceGemini = "gemini"
	ServiceYandex = "yandex"
)

// ErrEmptyText — провайдеры отвечают 400 на пустой ввод, поэтому отсекаем его заранее.
var ErrEmptyText = errors.New("empty input text")

// Synthesizer абстракция TTS. Возвращает сжатое аудио (MP3) целиком.
// Сетевой поток провайдера должен быть закрыт до возврата, в том числе при ошибке.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice string) ([]byte, error)
}

// ProviderError — ошибка синтеза одной реплики (сеть, авторизация, троттлинг, неверный голос/текст).
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + " tts: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Fail оборачивает err в ProviderError. nil остаётся nil.
func Fail(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}

// CheckText проверяет текст перед отправкой провайдеру.
func CheckText(provider, text string) error {
	if strings.TrimSpace(text) == "" {
		return Fail(provider, ErrEmptyText)
	}
	return nil
}

// IsSSML — авто-определение типа входа по тегу <speak>.
func IsSSML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<speak")
}
