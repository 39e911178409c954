package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode bool `env:"DEBUG_MODE"` // Режим дебага: подробный лог в консоль

	InputFile  string `env:"INPUT_FILE"`  // Файл субтитров (обязателен)
	OutputDir  string `env:"OUTPUT_DIR"`  // Каталог для промежуточных клипов и итогового файла
	OutputFile string `env:"OUTPUT_FILE"` // Имя итогового файла внутри OutputDir
	VoiceID    string `env:"VOICE_ID"`    // Голос провайдера; пусто — голос по умолчанию для выбранного сервиса

	TTSService   string        `env:"TTS_SERVICE"`   // polly|google|gemini|yandex, по умолчанию polly
	SynthWorkers int           `env:"SYNTH_WORKERS"` // Сколько запросов к провайдеру держать одновременно
	SynthTimeout time.Duration `env:"SYNTH_TIMEOUT"` // Таймаут одного запроса синтеза

	SampleRate int  `env:"SAMPLE_RATE"` // Частота, к которой приводятся клипы и тишина при склейке
	KeepClips  bool `env:"KEEP_CLIPS"`  // Оставлять клипы 1.mp3, 2.mp3... после экспорта
	Resume     bool `env:"RESUME"`      // Не запрашивать синтез для уже существующих клипов
	Play       bool `env:"PLAY"`        // Проиграть результат после экспорта

	Polly     PollyConfig
	GoogleTTS GoogleTTSConfig
	GeminiTTS GeminiTTSConfig
	YandexTTS YandexTTSConfig
}

// PollyConfig конфигурация для синтеза речи через AWS Polly.
// Учётные данные берутся стандартной цепочкой AWS SDK (ENV, ~/.aws, роль).
type PollyConfig struct {
	Region string `env:"POLLY_REGION"` // Пусто — регион из окружения AWS
	Engine string `env:"POLLY_ENGINE"` // standard|neural|long-form|generative
	Voice  string `env:"POLLY_VOICE"`  // Голос по умолчанию
}

// GoogleTTSConfig конфигурация для синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Фактически читается из ENV GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsPath string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Language        string  `env:"GOOGLE_TTS_LANGUAGE"`
	Voice           string  `env:"GOOGLE_TTS_VOICE"`
	SpeakingRate    float64 `env:"GOOGLE_TTS_SPEAKING_RATE"`
	Pitch           float64 `env:"GOOGLE_TTS_PITCH"`
	VolumeGainDb    float64 `env:"GOOGLE_TTS_VOLUME_DB"`
	// Эффект профиля устройства воспроизведения, напр. headphone-class-device
	EffectsProfileID string `env:"GOOGLE_TTS_EFFECTS_PROFILE_ID"`
	// Тип входа: text|ssml. Пусто — auto (по наличию тега <speak> в тексте).
	InputType string `env:"GOOGLE_TTS_INPUT_TYPE"`
}

// GeminiTTSConfig конфигурация Cloud TTS v1beta1 (Gemini-TTS), авторизация только через ADC.
type GeminiTTSConfig struct {
	Endpoint     string  `env:"GEMINI_TTS_ENDPOINT"`
	ModelName    string  `env:"GEMINI_TTS_MODEL"`
	Language     string  `env:"GEMINI_TTS_LANGUAGE"`
	VoiceName    string  `env:"GEMINI_TTS_VOICE"`
	Prompt       string  `env:"GEMINI_TTS_PROMPT"` // Стилевой промпт, общий для всех реплик
	SpeakingRate float64 `env:"GEMINI_TTS_SPEAKING_RATE"`
	Pitch        float64 `env:"GEMINI_TTS_PITCH"`
	VolumeGainDb float64 `env:"GEMINI_TTS_VOLUME_DB"`
	InputType    string  `env:"GEMINI_TTS_INPUT_TYPE"`
}

// YandexTTSConfig конфигурация для синтеза речи через Yandex SpeechKit.
type YandexTTSConfig struct {
	Endpoint string `env:"YC_TTS_ENDPOINT"`
	APIKey   string `env:"YC_TTS_API_KEY"` // Ключ берём из .env/ENV. Если пуст — при использовании будет ошибка
	Voice    string `env:"YC_TTS_VOICE"`   // Голос, по умолчанию filipp
	Lang     string `env:"YC_TTS_LANG"`
	Speed    string `env:"YC_TTS_SPEED"`   // Скорость синтеза (1.0 по умолчанию в API)
	Emotion  string `env:"YC_TTS_EMOTION"` // neutral|good|evil
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		OutputDir:    "./",
		OutputFile:   "output.mp3",
		TTSService:   "polly",
		SynthWorkers: 4,
		SynthTimeout: 30 * time.Second,
		SampleRate:   24000,
		KeepClips:    true,
		Polly: PollyConfig{
			Engine: "neural",
			Voice:  "Matthew",
		},
		GoogleTTS: GoogleTTSConfig{
			CredentialsPath: "service-account.json",
			Language:        "en-US",
			Voice:           "en-US-Standard-D",
			SpeakingRate:    1.0,
		},
		GeminiTTS: GeminiTTSConfig{
			ModelName:    "gemini-2.5-flash-tts",
			Language:     "en-US",
			VoiceName:    "Charon",
			SpeakingRate: 1.0,
		},
		YandexTTS: YandexTTSConfig{
			Voice:   "filipp",
			Lang:    "ru-RU",
			Speed:   "1.0",
			Emotion: "neutral",
		},
	}
}

// FromEnv — дефолты, перекрытые .env и переменными окружения. Без флагов и без проверки.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// Load загружает конфигурацию: дефолты → .env → окружение → флаги из args.
func Load(args []string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("srt2audio", flag.ContinueOnError)
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "подробный лог в консоль")
	fs.StringVar(&cfg.InputFile, "input-file", cfg.InputFile, "файл субтитров (srt, vtt, ssa)")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "каталог для клипов и итогового файла")
	fs.StringVar(&cfg.OutputFile, "output-file", cfg.OutputFile, "имя итогового файла (mp3 или wav)")
	fs.StringVar(&cfg.VoiceID, "voice-id", cfg.VoiceID, "голос провайдера; пусто — голос сервиса по умолчанию")
	fs.StringVar(&cfg.TTSService, "tts-service", cfg.TTSService, "сервис TTS: polly|google|gemini|yandex")
	fs.IntVar(&cfg.SynthWorkers, "synth-workers", cfg.SynthWorkers, "число одновременных запросов синтеза")
	fs.DurationVar(&cfg.SynthTimeout, "synth-timeout", cfg.SynthTimeout, "таймаут одного запроса синтеза, напр. 30s")
	fs.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "частота дискретизации при склейке, Гц")
	fs.BoolVar(&cfg.KeepClips, "keep-clips", cfg.KeepClips, "оставить промежуточные клипы после экспорта")
	fs.BoolVar(&cfg.Resume, "resume", cfg.Resume, "не синтезировать заново уже существующие клипы")
	fs.BoolVar(&cfg.Play, "play", cfg.Play, "проиграть результат после экспорта")
	// Polly
	fs.StringVar(&cfg.Polly.Region, "polly-region", cfg.Polly.Region, "регион AWS для Polly")
	fs.StringVar(&cfg.Polly.Engine, "polly-engine", cfg.Polly.Engine, "движок Polly: standard|neural|long-form|generative")
	// Google TTS
	fs.StringVar(&cfg.GoogleTTS.CredentialsPath, "google-tts-credentials", cfg.GoogleTTS.CredentialsPath, "путь к service-account.json (также читается из ENV GOOGLE_APPLICATION_CREDENTIALS)")
	fs.StringVar(&cfg.GoogleTTS.Language, "google-tts-language", cfg.GoogleTTS.Language, "язык синтеза, напр. en-US")
	fs.Float64Var(&cfg.GoogleTTS.SpeakingRate, "google-tts-speaking-rate", cfg.GoogleTTS.SpeakingRate, "скорость речи (1.0 по умолчанию)")
	fs.Float64Var(&cfg.GoogleTTS.Pitch, "google-tts-pitch", cfg.GoogleTTS.Pitch, "тон (полутоны), может быть отрицательным")
	fs.StringVar(&cfg.GoogleTTS.InputType, "google-tts-input-type", cfg.GoogleTTS.InputType, "тип входа: text|ssml; пусто = авто по наличию <speak>")
	// Gemini TTS
	fs.StringVar(&cfg.GeminiTTS.ModelName, "gemini-tts-model", cfg.GeminiTTS.ModelName, "модель Gemini TTS")
	fs.StringVar(&cfg.GeminiTTS.Prompt, "gemini-tts-prompt", cfg.GeminiTTS.Prompt, "стилевой промпт для всех реплик")
	// Yandex TTS
	fs.StringVar(&cfg.YandexTTS.APIKey, "yc-tts-api-key", cfg.YandexTTS.APIKey, "API ключ Yandex SpeechKit TTS (перекрывает ENV)")
	fs.StringVar(&cfg.YandexTTS.Speed, "yc-tts-speed", cfg.YandexTTS.Speed, "скорость речи (1.0 по умолчанию)")
	fs.StringVar(&cfg.YandexTTS.Emotion, "yc-tts-emotion", cfg.YandexTTS.Emotion, "эмоциональная окраска (neutral|good|evil)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.TTSService = strings.ToLower(strings.TrimSpace(cfg.TTSService))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры и окружение выбранного провайдера.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.InputFile) == "" {
		errs = append(errs, errors.New("input file is required (-input-file or INPUT_FILE)"))
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		errs = append(errs, errors.New("output file name is empty"))
	}
	if c.SynthWorkers <= 0 {
		errs = append(errs, fmt.Errorf("synth workers must be positive, got %d", c.SynthWorkers))
	}
	if c.SynthTimeout <= 0 {
		errs = append(errs, fmt.Errorf("synth timeout must be positive, got %s", c.SynthTimeout))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", c.SampleRate))
	}

	switch c.TTSService {
	case "polly", "gemini":
	case "google":
		// Если ENV пуст, но в конфиге указан путь — устанавливаем ENV, SDK читает только его.
		cred := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
		if cred == "" {
			if cp := strings.TrimSpace(c.GoogleTTS.CredentialsPath); cp != "" {
				_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cp)
				cred = cp
			}
		}
		if _, err := os.Stat(cred); cred == "" || err != nil {
			errs = append(errs, fmt.Errorf("google tts: credentials file not found: %q", cred))
		}
	case "yandex":
		if strings.TrimSpace(c.YandexTTS.APIKey) == "" {
			errs = append(errs, errors.New("yandex tts: empty API key (set YC_TTS_API_KEY in .env/ENV or pass -yc-tts-api-key)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown tts service %q", c.TTSService))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Voice возвращает голос для выбранного сервиса: явный VoiceID или дефолт провайдера.
func (c *Config) Voice() string {
	if v := strings.TrimSpace(c.VoiceID); v != "" {
		return v
	}
	switch c.TTSService {
	case "google":
		return c.GoogleTTS.Voice
	case "gemini":
		return c.GeminiTTS.VoiceName
	case "yandex":
		return c.YandexTTS.Voice
	default:
		return c.Polly.Voice
	}
}
