package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"voice-form/config"
	"voice-form/internal/application"
	"voice-form/internal/infra/anthropic"
	"voice-form/internal/infra/audio"
	"voice-form/internal/infra/catalog"
	"voice-form/internal/infra/control"
	"voice-form/internal/infra/gemini"
	"voice-form/internal/infra/openai"
	"voice-form/internal/infra/pushover"
	"voice-form/internal/infra/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	templates := catalog.New(cfg.Templates.Dir, logger)
	if err := templates.LoadAll(); err != nil {
		logger.Warn("loading templates, using built-ins", "error", err)
	}

	stt := createSTT(cfg, templates.Vocabulary())
	if whisper, ok := stt.(*openai.WhisperClient); ok {
		templates.OnReload(func() {
			whisper.SetVocabulary(templates.Vocabulary())
		})
	}

	if cfg.Templates.Watch {
		go func() {
			if err := templates.WatchAndReload(ctx.Done()); err != nil {
				logger.Error("template watcher stopped", "error", err)
			}
		}()
	}

	audioSource := createAudioSource(cfg.Audio, logger)
	listener := application.NewListener(audioSource, stt, logger)

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	assistant := application.NewAssistant(
		listener,
		templates,
		store.New(cfg.Store.Dir, logger),
		createRefiner(cfg.Refiner),
		notifier,
		logger,
	)

	if err := assistant.SelectTemplate(cfg.Templates.Default); err != nil {
		logger.Warn("default template unavailable", "template", cfg.Templates.Default, "error", err)
	}

	ctrl := control.NewHandler(assistant, logger)
	if httpSource, ok := audioSource.(*audio.HTTPSource); ok {
		ctrl.Register(httpSource.Mount)
	} else if cfg.Control.Addr != "" {
		go func() {
			if err := ctrl.ListenAndServe(ctx, cfg.Control.Addr, cfg.Audio.AuthToken); err != nil {
				logger.Error("control API stopped", "error", err)
			}
		}()
	}

	logger.Info("starting voice form",
		"audio_source", cfg.Audio.Source,
		"refiner", cfg.Refiner.Provider,
		"templates", len(templates.Names()),
	)

	if err := assistant.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("assistant error", "error", err)
		os.Exit(1)
	}
}

func createAudioSource(cfg config.AudioConfig, logger *slog.Logger) application.AudioSource {
	switch cfg.Source {
	case "file":
		return audio.NewFileSource(cfg.FileDir)
	case "microphone":
		return audio.NewMicrophoneSource(cfg.SampleRate, logger)
	default:
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	}
}

// createSTT skips Whisper when no key is configured; text utterances still work.
func createSTT(cfg *config.Config, vocabulary []string) application.SpeechToText {
	if cfg.OpenAI.APIKey == "" {
		return &application.NoopSTT{}
	}
	if cfg.OpenAI.BaseURL != "" {
		return openai.NewWhisperClientWithURL(cfg.OpenAI.APIKey, cfg.OpenAI.Language, cfg.OpenAI.BaseURL).WithVocabulary(vocabulary)
	}
	return openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.Language).WithVocabulary(vocabulary)
}

func createRefiner(cfg config.RefinerConfig) application.Refiner {
	switch cfg.Provider {
	case "anthropic":
		if cfg.BaseURL != "" {
			return anthropic.NewClaudeClientWithURL(cfg.APIKey, cfg.Model, cfg.Prompt, cfg.BaseURL)
		}
		return anthropic.NewClaudeClient(cfg.APIKey, cfg.Model, cfg.Prompt)
	case "gemini":
		if cfg.BaseURL != "" {
			return gemini.NewClientWithURL(cfg.APIKey, cfg.Model, cfg.Prompt, cfg.BaseURL)
		}
		return gemini.NewClient(cfg.APIKey, cfg.Model, cfg.Prompt)
	default:
		return &application.NoopRefiner{}
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
