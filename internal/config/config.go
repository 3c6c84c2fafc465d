package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendWhisper    = "whisper"
	BackendWhisperCLI = "whisper-cli"
	BackendOpenAI     = "openai"
)

type Config struct {
	JokesPath   string
	ContextPath string
	MusicPath   string

	Location string
	Weather  string

	STTBackend   string
	WhisperModel string
	WhisperBin   string
	OpenAIKey    string
	QAModel      string
	QATimeout    time.Duration

	HTTPTimeout   time.Duration
	GeocoderURL   string
	GeocoderAgent string

	ListenTimeout time.Duration
	CtlSocket     string
}

func Default() Config {
	return Config{
		JokesPath:     "jokes.txt",
		ContextPath:   "context.txt",
		MusicPath:     "sos.wav",
		Location:      "mulavoor, ernakulam, kerala",
		Weather:       "The weather is sunny with a temperature of 25°C.",
		STTBackend:    BackendWhisper,
		WhisperModel:  "third_party/whisper.cpp/models/ggml-base.en.bin",
		WhisperBin:    "whisper-cli",
		QAModel:       "gpt-5-nano",
		QATimeout:     30 * time.Second,
		HTTPTimeout:   20 * time.Second,
		GeocoderURL:   "https://nominatim.openstreetmap.org",
		GeocoderAgent: "voice_assistant",
		ListenTimeout: 5 * time.Second,
		CtlSocket:     "/tmp/minipro.sock",
	}
}

// Load reads envFile (a missing file is not an error) and then overlays
// the process environment on top of Default.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s: must be positive, got %s", key, v)
		}
		*dst = d
		return nil
	}

	str("JOKES_PATH", &cfg.JokesPath)
	str("CONTEXT_PATH", &cfg.ContextPath)
	str("MUSIC_PATH", &cfg.MusicPath)
	str("LOCATION", &cfg.Location)
	str("WEATHER", &cfg.Weather)
	str("STT_BACKEND", &cfg.STTBackend)
	str("WHISPER_MODEL", &cfg.WhisperModel)
	str("WHISPER_BIN", &cfg.WhisperBin)
	str("OPENAI_API_KEY", &cfg.OpenAIKey)
	str("QA_MODEL", &cfg.QAModel)
	str("GEOCODER_URL", &cfg.GeocoderURL)
	str("GEOCODER_AGENT", &cfg.GeocoderAgent)
	str("CTL_SOCKET", &cfg.CtlSocket)

	for key, dst := range map[string]*time.Duration{
		"QA_TIMEOUT":     &cfg.QATimeout,
		"HTTP_TIMEOUT":   &cfg.HTTPTimeout,
		"LISTEN_TIMEOUT": &cfg.ListenTimeout,
	} {
		if err := dur(key, dst); err != nil {
			return Config{}, err
		}
	}

	cfg.STTBackend = strings.ToLower(cfg.STTBackend)
	switch cfg.STTBackend {
	case BackendWhisper, BackendWhisperCLI, BackendOpenAI:
	default:
		return Config{}, fmt.Errorf("STT_BACKEND: unknown backend %q", cfg.STTBackend)
	}

	cfg.GeocoderURL = strings.TrimRight(cfg.GeocoderURL, "/")

	return cfg, nil
}
