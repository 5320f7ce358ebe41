package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kalambet/talentscout/internal/config"
	"github.com/kalambet/talentscout/internal/engine"
	"github.com/kalambet/talentscout/internal/metrics"
	"github.com/kalambet/talentscout/internal/questions"
	"github.com/kalambet/talentscout/internal/responder"
	"github.com/kalambet/talentscout/internal/screening"
	"github.com/kalambet/talentscout/internal/sessions"
	"github.com/kalambet/talentscout/internal/storage"
)

// app is everything a command needs to run screenings in-process.
type app struct {
	cfg      config.Config
	engine   engine.Engine // nil in templated mode
	metrics  *metrics.Recorder
	store    *storage.Store
	sessions *sessions.Manager
}

// newApp wires the screening stack from cfg. An unreachable backend is a
// warning: the app falls back to templated replies and fixed questions.
// Readiness progress goes to progress.
func newApp(ctx context.Context, cfg config.Config, progress io.Writer) (*app, error) {
	policy, err := screening.LoadPolicy(cfg.Screening.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("loading screening policy: %w", err)
	}

	rec := metrics.New()
	eng, err := readyEngine(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}
	eng = engine.WithRecorder(eng, rec)

	var chatter engine.Chatter
	if eng != nil {
		chatter = eng
	}
	model := cfg.ChatModel()

	store, err := storage.Open()
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	deps := screening.Deps{
		Policy:    policy,
		Questions: questions.NewGenerator(chatter, model, cfg.Engine.Timeout),
		Renderer:  responder.New(chatter, model, cfg.Engine.Timeout),
		Observer:  rec,
	}
	return &app{
		cfg:      cfg,
		engine:   eng,
		metrics:  rec,
		store:    store,
		sessions: sessions.NewManager(store, deps, rec),
	}, nil
}

// readyEngine returns the configured backend, or nil when it is disabled or
// not ready.
func readyEngine(ctx context.Context, cfg config.Config, progress io.Writer) (engine.Engine, error) {
	eng, err := engine.Detect(engine.DetectConfig{
		Backend:       cfg.Engine.Backend,
		OllamaBaseURL: cfg.Ollama.BaseURL,
		OpenAIBaseURL: cfg.OpenAI.BaseURL,
		OpenAIAPIKey:  cfg.OpenAI.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("detecting text-generation backend: %w", err)
	}
	if eng == nil {
		slog.Info("text generation disabled, using templated replies")
		return nil, nil
	}

	if err := engine.EnsureReady(ctx, eng, cfg.ChatModel(), progress); err != nil {
		printWarning("%s backend not ready, using templated replies: %v", eng.Name(), err)
		slog.Warn("text-generation backend not ready", "backend", eng.Name(), "error", err)
		return nil, nil
	}
	slog.Info("text generation ready", "backend", eng.Name(), "model", cfg.ChatModel())
	return eng, nil
}

func (a *app) engineName() string {
	if a.engine == nil {
		return engine.BackendNone
	}
	return a.engine.Name()
}

func (a *app) Close() error {
	return a.store.Close()
}

// loadConfig loads configuration and installs the logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	setupLogging(cfg.Log.Level)
	return cfg, nil
}
