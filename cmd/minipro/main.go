package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"minipro/internal/assistant"
	"minipro/internal/audio"
	"minipro/internal/config"
	"minipro/internal/content"
	"minipro/internal/ipc"
	"minipro/internal/jokes"
	"minipro/internal/nlu"
	"minipro/internal/probe"
	"minipro/internal/proxy"
	"minipro/internal/tts"
	"minipro/internal/voice"
	"minipro/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address (empty = direct)")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	source := cli.StringP("source", "s", "mic", "Input source: mic, socket or keyboard")
	espeakVoice := cli.String("voice", "en-us", "espeak voice")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Error("Bad configuration", "err", err)
		os.Exit(1)
	}

	store, err := content.Load(cfg.JokesPath, cfg.ContextPath)
	if err != nil {
		log.Error("Failed to load content", "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded content", "jokes", len(store.Jokes), "context_bytes", len(store.Context))

	if cfg.OpenAIKey == "" {
		log.Error("OPENAI_API_KEY not set")
		os.Exit(1)
	}

	httpClient, err := proxy.NewHTTPClient(*proxyAddr, cfg.HTTPTimeout)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
		os.Exit(1)
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIKey),
		option.WithHTTPClient(httpClient),
	)

	var src voice.Source
	switch *source {
	case "mic":
		rec := audio.NewRecorder(audio.DefaultRecorderConfig())
		if err := rec.Init(); err != nil {
			log.Error("Failed to init audio", "err", err)
			os.Exit(1)
		}
		defer rec.Close()
		src = voice.Mic{Rec: rec}
	case "socket":
		srv, err := ipc.Listen(cfg.CtlSocket, 16)
		if err != nil {
			log.Error("Failed ipc server", "err", err)
			os.Exit(1)
		}
		defer srv.Close()
		src = voice.NewSocket(srv)
	case "keyboard":
		src = voice.NewKeyboard(os.Stdin)
	default:
		log.Error("Unknown source", "source", *source)
		os.Exit(1)
	}

	log.Debug("Loaded source", "source", *source)

	var transcriber voice.Transcriber
	switch {
	case *source == "keyboard":
	case cfg.STTBackend == config.BackendOpenAI:
		transcriber = stt.NewOpenAI(client, "en")
	case cfg.STTBackend == config.BackendWhisperCLI:
		transcriber = &stt.WhisperCLI{ExecPath: cfg.WhisperBin, ModelPath: cfg.WhisperModel, Language: "en"}
	default:
		whisper, err := stt.NewWhisper(cfg.WhisperModel, stt.Options{Language: "en"})
		if err != nil {
			log.Error("Failed to init whisper", "model", cfg.WhisperModel, "err", err)
			os.Exit(1)
		}
		defer whisper.Close()
		transcriber = whisper
	}

	log.Debug("Loaded transcriber", "backend", cfg.STTBackend)

	gateway := voice.NewGateway(src, transcriber, tts.NewEspeak(*espeakVoice), cfg.ListenTimeout)

	dispatcher := nlu.NewDispatcher(nlu.Deps{
		Env: probe.New(cfg.Location, cfg.Weather,
			&probe.Nominatim{BaseURL: cfg.GeocoderURL, UserAgent: cfg.GeocoderAgent, Client: httpClient},
			probe.LatLong{},
		),
		Jokes:   jokes.NewDispenser(store.Jokes),
		Music:   audio.NewMusicPlayer(audio.NewBeepEngine(44100), cfg.MusicPath, gateway),
		QA:      nlu.NewAnswerer(nlu.NewOpenAIExtractor(client, cfg.QAModel), store.Context, cfg.QATimeout),
		Speaker: gateway,
	})

	log.Info("Boot up - successful")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := assistant.Run(ctx, gateway, gateway, dispatcher); err != nil {
		log.Warn("Assistant stopped", "err", err)
	}

	log.Info("Shutting down")
}
