// Package bootstrap builds the runtime components described by a config.Config.
// Each constructor that opens a resource returns the function that releases it.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/ragchat/pkg/config"
	"github.com/papercomputeco/ragchat/pkg/docs"
	"github.com/papercomputeco/ragchat/pkg/llm"
	"github.com/papercomputeco/ragchat/pkg/transcript"
)

func nop() error { return nil }

// Client builds the model client with retry on stream opening.
func Client(ctx context.Context, cfg config.Config, log *zap.Logger) (llm.Client, error) {
	if cfg.Model.APIKey == "" && cfg.Model.Provider != "ollama" {
		log.Warn("model API key is empty, requests will fail", zap.String("env", cfg.Model.APIKeyEnv))
	}

	client, err := llm.New(ctx, llm.Config{
		Provider: cfg.Model.Provider,
		Model:    cfg.Model.Model,
		BaseURL:  cfg.Model.BaseURL,
		APIKey:   cfg.Model.APIKey,
		Timeout:  cfg.Model.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create model client: %w", err)
	}

	return llm.WithRetry(client, llm.RetryConfig{
		MaxTries:        cfg.Retry.MaxTries,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}, log), nil
}

// Documents builds the document source. With caching the collection is loaded
// now, so a bad file fails startup instead of the first RAG request.
func Documents(ctx context.Context, cfg config.DocumentsConfig, log *zap.Logger) (docs.Source, func() error, error) {
	file := docs.NewFileSource(cfg.Path, cfg.Fields)
	if !cfg.Cache {
		return file, nop, nil
	}

	cached, err := docs.NewCachedSource(ctx, file, log)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load documents: %w", err)
	}
	return cached, cached.Close, nil
}

// Recorder builds the transcript recorder, or returns nil when transcripts are
// disabled.
func Recorder(cfg config.TranscriptsConfig, log *zap.Logger) (*transcript.Recorder, func() error, error) {
	if !cfg.Enabled {
		return nil, nop, nil
	}

	store, err := Store(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info("recording transcripts", zap.String("backend", cfg.Backend))
	return transcript.NewRecorder(store, log), store.Close, nil
}

// Store opens the configured transcript backend.
func Store(cfg config.TranscriptsConfig) (transcript.Store, error) {
	if cfg.Backend == "sqlite" {
		store, err := transcript.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("could not open transcript database %s: %w", cfg.Path, err)
		}
		return store, nil
	}
	return transcript.NewMemoryStore(), nil
}
