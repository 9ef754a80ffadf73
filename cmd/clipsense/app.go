package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/hrygo/clipsense/ai/cache"
	"github.com/hrygo/clipsense/ai/catalog"
	"github.com/hrygo/clipsense/ai/classifier"
	"github.com/hrygo/clipsense/ai/configloader"
	"github.com/hrygo/clipsense/ai/core/llm"
	"github.com/hrygo/clipsense/ai/enhance"
	"github.com/hrygo/clipsense/ai/metrics"
	"github.com/hrygo/clipsense/ai/prompt"
	"github.com/hrygo/clipsense/internal/profile"
	"github.com/hrygo/clipsense/store"
	"github.com/hrygo/clipsense/store/db/sqlite"
)

// app holds the objects built once per process.
type app struct {
	profile      *profile.Profile
	classifier   *classifier.Classifier
	orchestrator *enhance.Orchestrator
	exporter     *metrics.PrometheusExporter
	history      *store.Store // nil when history is disabled or unavailable
}

// newApp wires the pipeline. A nil provider is built from the profile.
func newApp(ctx context.Context, p *profile.Profile, provider llm.Provider) (*app, error) {
	if provider == nil {
		if err := p.EnsureCredentials(); err != nil {
			return nil, err
		}
		var err error
		provider, err = newProvider(p)
		if err != nil {
			return nil, err
		}
	}

	cls, err := newClassifier(p)
	if err != nil {
		return nil, err
	}

	a := &app{
		profile:    p,
		classifier: cls,
		exporter:   metrics.NewPrometheusExporter(metrics.DefaultConfig()),
	}

	cfg := enhance.Config{
		Provider:   provider,
		Classifier: cls,
		Composer:   prompt.NewComposer(prompt.NewFileTemplateStore(configloader.NewLoader(p.ConfigDir))),
		Cache: cache.New(cache.Config{
			Capacity: p.CacheCapacity,
			TTL:      time.Duration(p.CacheTTLMinutes) * time.Minute,
		}),
		Retry:    enhance.RetryPolicy{MaxAttempts: p.MaxAttempts},
		Recorder: a.exporter,
	}
	if p.RateLimit > 0 {
		cfg.Limiter = rate.NewLimiter(rate.Limit(p.RateLimit), p.RateBurst)
	}
	if p.HistoryEnabled {
		if s, err := openHistory(ctx, p); err != nil {
			slog.Warn("history disabled", "dsn", p.DSN, "error", err)
		} else {
			a.history = s
			cfg.History = store.NewRecorder(s)
		}
	}

	a.orchestrator, err = enhance.New(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}

func newProvider(p *profile.Profile) (llm.Provider, error) {
	temperature := float32(p.LLMTemperature)
	return llm.NewProvider(&llm.Config{
		Provider:    p.LLMProvider,
		Model:       p.LLMModel,
		APIKey:      p.LLMAPIKey,
		BaseURL:     p.LLMBaseURL,
		MaxTokens:   p.LLMMaxTokens,
		Temperature: &temperature,
		Timeout:     p.LLMTimeout,
	})
}

// newClassifier builds the default catalog and merges the override file when present.
func newClassifier(p *profile.Profile) (*classifier.Classifier, error) {
	c := catalog.Default()
	loader := configloader.NewLoader(p.ConfigDir)
	if p.CatalogFile != "" && loader.Exists(p.CatalogFile) {
		if err := catalog.LoadOverrides(c, loader, p.CatalogFile); err != nil {
			return nil, errors.Wrapf(err, "invalid catalog overrides in %s", p.CatalogFile)
		}
		slog.Debug("applied catalog overrides", "file", p.CatalogFile)
	}
	return classifier.New(c), nil
}

func openHistory(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := sqlite.NewDB(p)
	if err != nil {
		return nil, err
	}
	s := store.New(driver)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "failed to migrate history database")
	}
	return s, nil
}
